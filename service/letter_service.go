package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"loanlens/domain"
	"loanlens/llm"
	"loanlens/metrics"
	"loanlens/repository"
)

// LetterFallback is returned whenever letter generation fails. The letter
// view must always have something to render, so failures never propagate.
const LetterFallback = "Error generating formal decision letter. Please review assessment manually."

// LetterEmptyReply is returned when the model call succeeds but comes back
// with no text, distinct from LetterFallback so callers can tell the two
// cases apart.
const LetterEmptyReply = "Failed to generate letter text."

// LetterService generates formal decision letters from stored assessments.
type LetterService struct {
	client llm.Client
	model  string
	cache  repository.CacheRepository
	logger *slog.Logger
}

// NewLetterService creates a LetterService. The cache keys letters by report
// and branding fingerprint so a lender-config edit re-brands future letters
// without touching stored reports.
func NewLetterService(client llm.Client, model string, cache repository.CacheRepository, logger *slog.Logger) *LetterService {
	if cache == nil {
		cache = repository.NewMockCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LetterService{
		client: client,
		model:  model,
		cache:  cache,
		logger: logger,
	}
}

// GenerateLetter returns the markdown letter text for a report. Failures
// resolve to LetterFallback and an empty reply to LetterEmptyReply; neither
// is cached.
func (s *LetterService) GenerateLetter(ctx context.Context, report domain.AssessmentReport, lender domain.LenderConfig) string {
	cacheKey := fmt.Sprintf("letter:%s:%s", report.ID, lender.Fingerprint())

	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		metrics.ObserveLetterCacheHit()
		return cached
	}

	req := llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			llm.TextMessage(llm.RoleUser, buildLetterPrompt(report, lender)),
		},
	}

	letter, err := s.client.ChatCompletion(ctx, req)
	if err != nil {
		metrics.ObserveLetter(metrics.OutcomeError)
		s.logger.Error("decision letter generation failed",
			slog.String("report_id", report.ID),
			slog.Any("error", err),
		)
		return LetterFallback
	}
	if letter == "" {
		metrics.ObserveLetter(metrics.OutcomeError)
		s.logger.Warn("decision letter reply was empty", slog.String("report_id", report.ID))
		return LetterEmptyReply
	}

	if err := s.cache.Set(ctx, cacheKey, letter); err != nil {
		s.logger.Warn("failed to cache decision letter", slog.Any("error", err))
	}

	metrics.ObserveLetter(metrics.OutcomeSuccess)
	return letter
}

func buildLetterPrompt(report domain.AssessmentReport, lender domain.LenderConfig) string {
	return fmt.Sprintf(`ACT AS A SENIOR COMPLIANCE OFFICER AT %s (%s BRANCH).
Generate a formal Decision Letter for a loan application.

CLIENT DATA:
- Name: %s
- Amount: $%.2f
- Purpose: %s
- Recommendation: %s
- Key Reason: %s
- Authorized Signatory: %s

REQUIREMENTS:
1. Professional, formal, and neutral tone.
2. Compliance-focused wording.
3. CLEAR status (Approved or Declined).
4. If Declined, provide a clear but concise reason without being emotional.
5. Mention the issuing branch: %s.
6. Include the authorized signatory name: %s.
7. Include placeholders for Date.
8. Output the letter text in Markdown format.`,
		strings.ToUpper(lender.OrganizationName), strings.ToUpper(lender.BranchName),
		report.ClientName, report.AmountRequested, report.LoanPurpose,
		report.Recommendation, report.AIReasoning, lender.AuthorizedSignatory,
		lender.BranchName, lender.AuthorizedSignatory)
}
