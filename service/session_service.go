package service

import (
	"context"
	"errors"
	"sync"

	"loanlens/domain"
	"loanlens/repository"
)

var (
	// ErrAnalysisInFlight is returned when an analysis is submitted while
	// another one is still outstanding for the session.
	ErrAnalysisInFlight = errors.New("an analysis is already in progress")

	// ErrReportNotFound is returned when a report id is not in the history.
	ErrReportNotFound = errors.New("report not found")
)

// SessionService owns the mutable session state: the report history, the
// active report, the lender configuration, and the single-flight analysis
// flag. All derived values (statistics) are computed from the history on
// demand.
type SessionService struct {
	mu       sync.Mutex
	analysis *AnalysisService
	letters  *LetterService
	reports  repository.ReportRepository
	lender   domain.LenderConfig
	activeID string
	busy     bool
}

// NewSessionService creates a session with the given starting lender policy.
func NewSessionService(
	analysis *AnalysisService,
	letters *LetterService,
	reports repository.ReportRepository,
	lender domain.LenderConfig,
) *SessionService {
	return &SessionService{
		analysis: analysis,
		letters:  letters,
		reports:  reports,
		lender:   lender,
	}
}

// Analyze runs one document analysis and, on success, stores the report and
// makes it active. Only one analysis may be in flight at a time; concurrent
// submissions fail with ErrAnalysisInFlight. A failed analysis leaves the
// history untouched.
func (s *SessionService) Analyze(
	ctx context.Context,
	base64Data string,
	mimeType string,
	details domain.LoanDetails,
) (domain.AssessmentReport, error) {

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.AssessmentReport{}, ErrAnalysisInFlight
	}
	s.busy = true
	lender := s.lender
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	report, err := s.analysis.AnalyzeDocument(ctx, base64Data, mimeType, details, lender)
	if err != nil {
		return domain.AssessmentReport{}, err
	}

	if err := s.reports.Insert(report); err != nil {
		return domain.AssessmentReport{}, err
	}

	s.mu.Lock()
	s.activeID = report.ID
	s.mu.Unlock()

	return report, nil
}

// Letter generates (or serves from cache) the decision letter for a stored
// report under the current branding. Letter-generation failures resolve to
// the fallback text, never to an error.
func (s *SessionService) Letter(ctx context.Context, reportID string) (string, error) {
	report, ok := s.reports.Get(reportID)
	if !ok {
		return "", ErrReportNotFound
	}

	s.mu.Lock()
	lender := s.lender
	s.mu.Unlock()

	return s.letters.GenerateLetter(ctx, report, lender), nil
}

// History returns the stored reports, newest first.
func (s *SessionService) History() []domain.AssessmentReport {
	return s.reports.List()
}

// Report returns one stored report by id.
func (s *SessionService) Report(id string) (domain.AssessmentReport, error) {
	report, ok := s.reports.Get(id)
	if !ok {
		return domain.AssessmentReport{}, ErrReportNotFound
	}
	return report, nil
}

// ActiveReport returns the currently selected report, if any.
func (s *SessionService) ActiveReport() (domain.AssessmentReport, bool) {
	s.mu.Lock()
	id := s.activeID
	s.mu.Unlock()

	if id == "" {
		return domain.AssessmentReport{}, false
	}
	return s.reports.Get(id)
}

// SelectReport makes a stored report the active one.
func (s *SessionService) SelectReport(id string) error {
	if _, ok := s.reports.Get(id); !ok {
		return ErrReportNotFound
	}

	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
	return nil
}

// LenderConfig returns the current lender policy.
func (s *SessionService) LenderConfig() domain.LenderConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lender
}

// UpdateLenderConfig replaces the lender policy. The change applies to future
// analysis and letter requests only; stored reports are never rewritten.
func (s *SessionService) UpdateLenderConfig(cfg domain.LenderConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.lender = cfg
	s.mu.Unlock()
	return nil
}

// Stats computes portfolio statistics over the current history.
func (s *SessionService) Stats() domain.PortfolioStats {
	return domain.ComputeStats(s.reports.List())
}

// Busy reports whether an analysis is currently in flight.
func (s *SessionService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}
