package service

import (
	"context"
	"errors"
	"testing"

	"loanlens/llm"
	"loanlens/repository"
)

func newTestSession(client llm.Client) *SessionService {
	analysis := NewAnalysisService(client, "google/gemini-2.5-flash", nil)
	letters := NewLetterService(client, "google/gemini-2.5-flash", repository.NewMockCache(), nil)
	return NewSessionService(analysis, letters, repository.NewReportRepositoryMemory(), testLenderConfig())
}

func TestSessionAnalyze_AppendsNewestFirst(t *testing.T) {
	mock := &mockLLMClient{response: modelOutput}
	session := newTestSession(mock)

	first, err := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(history))
	}
	if history[0].ID != second.ID || history[1].ID != first.ID {
		t.Errorf("expected newest-first ordering")
	}

	active, ok := session.ActiveReport()
	if !ok || active.ID != second.ID {
		t.Errorf("expected the latest report to be active")
	}
}

func TestSessionAnalyze_FailureLeavesHistoryUnchanged(t *testing.T) {
	mock := &mockLLMClient{response: modelOutput}
	session := newTestSession(mock)

	if _, err := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := len(session.History())
	mock.response = "not json at all"

	if _, err := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails()); err == nil {
		t.Fatalf("expected analysis failure")
	}

	if after := len(session.History()); after != before {
		t.Errorf("history length changed on failure: %d -> %d", before, after)
	}
}

type blockingLLMClient struct {
	entered  chan struct{}
	release  chan struct{}
	response string
}

func (c *blockingLLMClient) ChatCompletion(ctx context.Context, _ llm.Request) (string, error) {
	c.entered <- struct{}{}
	select {
	case <-c.release:
		return c.response, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSessionAnalyze_SingleFlight(t *testing.T) {
	blocking := &blockingLLMClient{
		entered:  make(chan struct{}, 1),
		release:  make(chan struct{}),
		response: modelOutput,
	}
	session := newTestSession(blocking)

	done := make(chan error, 1)
	go func() {
		_, err := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails())
		done <- err
	}()

	<-blocking.entered
	if !session.Busy() {
		t.Errorf("expected session to report busy during analysis")
	}

	_, err := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails())
	if !errors.Is(err, ErrAnalysisInFlight) {
		t.Errorf("expected ErrAnalysisInFlight, got %v", err)
	}

	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("first analysis failed: %v", err)
	}

	if session.Busy() {
		t.Errorf("expected busy flag reset after completion")
	}
	if len(session.History()) != 1 {
		t.Errorf("expected exactly one stored report")
	}
}

func TestSessionUpdateLenderConfig_DoesNotMutateReports(t *testing.T) {
	mock := &mockLLMClient{response: modelOutput}
	session := newTestSession(mock)

	report, err := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := testLenderConfig()
	updated.OrganizationName = "Thorne Finance"
	updated.MaxDtiRatio = 50
	if err := session.UpdateLenderConfig(updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := session.Report(report.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ClientName != report.ClientName || stored.AmountRequested != report.AmountRequested {
		t.Errorf("stored report changed after config update")
	}

	if got := session.LenderConfig().OrganizationName; got != "Thorne Finance" {
		t.Errorf("expected updated organization name, got %q", got)
	}
}

func TestSessionUpdateLenderConfig_RejectsOutOfRange(t *testing.T) {
	session := newTestSession(&mockLLMClient{response: modelOutput})

	bad := testLenderConfig()
	bad.MaxDtiRatio = 90
	if err := session.UpdateLenderConfig(bad); err == nil {
		t.Errorf("expected validation error for out-of-range DTI")
	}
}

func TestSessionSelectReport(t *testing.T) {
	mock := &mockLLMClient{response: modelOutput}
	session := newTestSession(mock)

	first, _ := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails())
	second, _ := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails())

	if active, ok := session.ActiveReport(); !ok || active.ID != second.ID {
		t.Fatalf("expected the newest report to start active")
	}

	if err := session.SelectReport(first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	active, ok := session.ActiveReport()
	if !ok || active.ID != first.ID {
		t.Errorf("expected first report active, got %v", active.ID)
	}

	if err := session.SelectReport("missing"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestSessionLetter_UnknownReport(t *testing.T) {
	session := newTestSession(&mockLLMClient{response: modelOutput})

	if _, err := session.Letter(context.Background(), "missing"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestSessionStats(t *testing.T) {
	mock := &mockLLMClient{response: modelOutput}
	session := newTestSession(mock)

	if _, err := session.Analyze(context.Background(), "aGVsbG8=", "image/png", testLoanDetails()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := session.Stats()
	if stats.Total != 1 || stats.Approved != 1 || stats.ApprovalRate != 100 {
		t.Errorf("unexpected stats %+v", stats)
	}
	// The fixture's 0.92 confidence must surface as 92 percent.
	if stats.AvgConfidence != 92 {
		t.Errorf("expected avg confidence 92, got %d", stats.AvgConfidence)
	}
	if stats.GrossExposure != 5000 {
		t.Errorf("expected exposure 5000, got %v", stats.GrossExposure)
	}
}
