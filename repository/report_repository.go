package repository

import "loanlens/domain"

// ReportRepository stores the append-only assessment history, newest first.
type ReportRepository interface {
	Insert(report domain.AssessmentReport) error
	Get(id string) (domain.AssessmentReport, bool)
	List() []domain.AssessmentReport
	Len() int
}
