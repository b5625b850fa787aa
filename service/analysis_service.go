package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"loanlens/domain"
	"loanlens/llm"
	"loanlens/metrics"
)

// AnalysisService turns an uploaded financial document into an
// AssessmentReport through one schema-constrained model call.
type AnalysisService struct {
	client llm.Client
	model  string
	logger *slog.Logger
}

// NewAnalysisService creates an AnalysisService targeting the given model.
func NewAnalysisService(client llm.Client, model string, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		client: client,
		model:  model,
		logger: logger,
	}
}

// AnalyzeDocument submits the document and loan parameters for underwriting
// and returns a validated report with a fresh id and timestamp. Any failure
// (missing credential, transport, envelope, or non-conforming JSON) returns
// an error and no partial report.
func (s *AnalysisService) AnalyzeDocument(
	ctx context.Context,
	base64Data string,
	mimeType string,
	details domain.LoanDetails,
	lender domain.LenderConfig,
) (domain.AssessmentReport, error) {

	if base64Data == "" {
		return domain.AssessmentReport{}, errors.New("document payload is empty")
	}
	if err := details.Validate(); err != nil {
		return domain.AssessmentReport{}, err
	}
	if details.Amount > MaxLoanAmount {
		return domain.AssessmentReport{}, fmt.Errorf("loan amount exceeds the maximum of $%.2f", MaxLoanAmount)
	}

	start := time.Now()

	req := llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			llm.DocumentMessage(buildAnalysisPrompt(details, lender), llm.DataURI(mimeType, base64Data)),
		},
		Schema: assessmentResponseSchema(),
	}

	responseText, err := s.client.ChatCompletion(ctx, req)
	if err != nil {
		metrics.ObserveAnalysis(time.Since(start), metrics.OutcomeError)
		s.logger.Error("document analysis call failed", slog.Any("error", err))
		return domain.AssessmentReport{}, fmt.Errorf("document analysis failed: %w", err)
	}

	var report domain.AssessmentReport
	if err := decodeReport(responseText, &report); err != nil {
		metrics.ObserveAnalysis(time.Since(start), metrics.OutcomeError)
		s.logger.Error("analysis response does not conform to the schema", slog.Any("error", err))
		return domain.AssessmentReport{}, fmt.Errorf("parse analysis response: %w", err)
	}
	if err := report.Validate(); err != nil {
		metrics.ObserveAnalysis(time.Since(start), metrics.OutcomeError)
		s.logger.Error("analysis response failed validation", slog.Any("error", err))
		return domain.AssessmentReport{}, fmt.Errorf("parse analysis response: %w", err)
	}

	report.ID = uuid.NewString()
	report.Timestamp = time.Now().UTC()

	metrics.ObserveAnalysis(time.Since(start), metrics.OutcomeSuccess)
	s.logger.Info("document analysis completed",
		slog.String("report_id", report.ID),
		slog.String("recommendation", string(report.Recommendation)),
		slog.Duration("duration", time.Since(start)),
	)

	return report, nil
}

// decodeReport parses model output into a report. Unknown fields and absent
// required fields both fail: DisallowUnknownFields only catches extras, so
// presence of every schema-required key is checked against the raw object.
func decodeReport(text string, report *domain.AssessmentReport) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return err
	}
	for _, field := range requiredReportFields {
		if _, ok := raw[field]; !ok {
			return fmt.Errorf("missing required field %q", field)
		}
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.DisallowUnknownFields()
	return decoder.Decode(report)
}

func buildAnalysisPrompt(details domain.LoanDetails, lender domain.LenderConfig) string {
	strictCheck := "OFF"
	if lender.StrictEmploymentCheck {
		strictCheck = "ON"
	}

	return fmt.Sprintf(`ACT AS A SENIOR UNDERWRITER. Analyze the attached financial document for a micro-loan application.

LENDER PARAMETERS:
- Maximum Debt-to-Income (DTI) allowed: %d%%
- Minimum AI Confidence required: %d%%
- Strict Employment Stability Check: %s

LOAN CONTEXT:
- Purpose: %s
- Amount: $%.2f
- Term: %s

CRITICAL TASKS:
1. EXTRACT: Client name and exact monthly income.
2. FRAUD DETECTION: Look for inconsistent font sizes, suspicious rounding (e.g. exactly $5,000.00 every time), or lack of standard tax deductions.
3. AFFORDABILITY: Calculate DTI. Compare against lender's %d%% limit.
4. VERIFICATION SCORE: Assign 0-100 based on document clarity and data consistency.
5. MULTI-DIMENSIONAL RISK: Score 0-100 for Document Integrity, Employer Verification, Affordability, and Income Stability.`,
		lender.MaxDtiRatio, lender.MinConfidence, strictCheck,
		details.Purpose, details.Amount, details.Period,
		lender.MaxDtiRatio)
}
