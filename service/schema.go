package service

import (
	"loanlens/domain"
	"loanlens/llm"
)

// requiredReportFields are the top-level keys the model must emit. The
// response parser rejects output missing any of them.
var requiredReportFields = []string{
	"clientName", "loanPurpose", "amountRequested", "repaymentPeriod",
	"recommendation", "riskLevel", "confidenceScore", "verificationScore",
	"fraudFlags", "affordability", "suggestedPaymentPlans", "riskFactors",
	"aiReasoning", "radarMetrics",
}

// assessmentResponseSchema declares the exact JSON shape the model must
// return: every AssessmentReport field except id and timestamp, which are
// attached locally after parsing.
func assessmentResponseSchema() *llm.ResponseSchema {
	number := map[string]any{"type": "number"}
	str := map[string]any{"type": "string"}

	return &llm.ResponseSchema{
		Name: "assessment_report",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"clientName":      str,
				"loanPurpose":     str,
				"amountRequested": number,
				"repaymentPeriod": str,
				"recommendation": map[string]any{
					"type": "string",
					"enum": []string{
						string(domain.RecommendationApprove),
						string(domain.RecommendationDecline),
						string(domain.RecommendationConditional),
					},
				},
				"riskLevel": map[string]any{
					"type": "string",
					"enum": []string{
						string(domain.RiskLow),
						string(domain.RiskModerate),
						string(domain.RiskHigh),
					},
				},
				"confidenceScore":   number,
				"verificationScore": number,
				"fraudFlags": map[string]any{
					"type":  "array",
					"items": str,
				},
				"radarMetrics": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"documentIntegrity":    number,
						"employerVerification": number,
						"affordability":        number,
						"incomeStability":      number,
					},
					"required":             []string{"documentIntegrity", "employerVerification", "affordability", "incomeStability"},
					"additionalProperties": false,
				},
				"affordability": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"monthlyIncome":           number,
						"existingObligations":     number,
						"estimatedExpenses":       number,
						"availableForRepayment":   number,
						"paymentToAvailableRatio": number,
					},
					"required":             []string{"monthlyIncome", "existingObligations", "estimatedExpenses", "availableForRepayment", "paymentToAvailableRatio"},
					"additionalProperties": false,
				},
				"suggestedPaymentPlans": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"term":          str,
							"monthlyAmount": number,
							"risk":          str,
						},
						"required":             []string{"term", "monthlyAmount", "risk"},
						"additionalProperties": false,
					},
				},
				"riskFactors": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"text": str,
							"type": map[string]any{
								"type": "string",
								"enum": []string{
									string(domain.FactorPositive),
									string(domain.FactorNegative),
									string(domain.FactorNeutral),
								},
							},
						},
						"required":             []string{"text", "type"},
						"additionalProperties": false,
					},
				},
				"aiReasoning": str,
			},
			"required":             requiredReportFields,
			"additionalProperties": false,
		},
	}
}
