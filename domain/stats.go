package domain

import "math"

// PortfolioStats aggregates the session history for the dashboard.
type PortfolioStats struct {
	Total         int     `json:"total"`
	Approved      int     `json:"approved"`
	ApprovalRate  int     `json:"approvalRate"`  // percentage, rounded
	GrossExposure float64 `json:"grossExposure"` // sum of approved amounts only
	AvgConfidence int     `json:"avgConfidence"` // percentage, rounded
}

// ComputeStats derives portfolio statistics from a report history. Confidence
// scores are normalized onto the 0-100 scale before averaging.
func ComputeStats(history []AssessmentReport) PortfolioStats {
	stats := PortfolioStats{Total: len(history)}
	if stats.Total == 0 {
		return stats
	}

	var confidenceSum float64
	for _, report := range history {
		if report.Recommendation == RecommendationApprove {
			stats.Approved++
			stats.GrossExposure += report.AmountRequested
		}
		confidenceSum += NormalizeConfidence(report.ConfidenceScore)
	}

	stats.ApprovalRate = int(math.Round(float64(stats.Approved) / float64(stats.Total) * 100))
	stats.AvgConfidence = int(math.Round(confidenceSum / float64(stats.Total)))
	return stats
}
