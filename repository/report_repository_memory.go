package repository

import (
	"fmt"
	"sync"

	"loanlens/domain"
)

// ReportRepositoryMemory is an in-memory implementation of ReportRepository.
// Reports are prepended so List returns newest first.
type ReportRepositoryMemory struct {
	mu      sync.RWMutex
	reports []domain.AssessmentReport
}

// NewReportRepositoryMemory creates a new in-memory report repository.
func NewReportRepositoryMemory() *ReportRepositoryMemory {
	return &ReportRepositoryMemory{
		reports: []domain.AssessmentReport{},
	}
}

// Insert prepends the report to the history. IDs must be unique.
func (r *ReportRepositoryMemory) Insert(report domain.AssessmentReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reports {
		if existing.ID == report.ID {
			return fmt.Errorf("report %s already stored", report.ID)
		}
	}

	r.reports = append([]domain.AssessmentReport{report}, r.reports...)
	return nil
}

// Get returns the report with the given id, if present.
func (r *ReportRepositoryMemory) Get(id string) (domain.AssessmentReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, report := range r.reports {
		if report.ID == id {
			return report, true
		}
	}
	return domain.AssessmentReport{}, false
}

// List returns a copy of the history, newest first.
func (r *ReportRepositoryMemory) List() []domain.AssessmentReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.AssessmentReport, len(r.reports))
	copy(out, r.reports)
	return out
}

// Len returns the number of stored reports.
func (r *ReportRepositoryMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reports)
}
