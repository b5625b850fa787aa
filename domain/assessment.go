package domain

import (
	"errors"
	"fmt"
	"time"
)

// Recommendation is the underwriting decision for an application.
type Recommendation string

const (
	RecommendationApprove     Recommendation = "APPROVE"
	RecommendationDecline     Recommendation = "DECLINE"
	RecommendationConditional Recommendation = "CONDITIONAL"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendationApprove, RecommendationDecline, RecommendationConditional:
		return true
	}
	return false
}

// RiskLevel classifies overall applicant risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskModerate, RiskHigh:
		return true
	}
	return false
}

// FactorType tags a risk factor as helping, hurting, or neutral to the decision.
type FactorType string

const (
	FactorPositive FactorType = "POSITIVE"
	FactorNegative FactorType = "NEGATIVE"
	FactorNeutral  FactorType = "NEUTRAL"
)

func (t FactorType) Valid() bool {
	switch t {
	case FactorPositive, FactorNegative, FactorNeutral:
		return true
	}
	return false
}

type RiskFactor struct {
	Text string     `json:"text"`
	Type FactorType `json:"type"`
}

type PaymentPlanOption struct {
	Term          string  `json:"term"`
	MonthlyAmount float64 `json:"monthlyAmount"`
	Risk          string  `json:"risk"`
}

type AffordabilityData struct {
	MonthlyIncome           float64 `json:"monthlyIncome"`
	ExistingObligations     float64 `json:"existingObligations"`
	EstimatedExpenses       float64 `json:"estimatedExpenses"`
	AvailableForRepayment   float64 `json:"availableForRepayment"`
	PaymentToAvailableRatio float64 `json:"paymentToAvailableRatio"`
}

// RadarMetrics holds the four independent 0-100 risk-dimension scores.
type RadarMetrics struct {
	DocumentIntegrity    float64 `json:"documentIntegrity"`
	EmployerVerification float64 `json:"employerVerification"`
	Affordability        float64 `json:"affordability"`
	IncomeStability      float64 `json:"incomeStability"`
}

// AssessmentReport is the immutable result of one document analysis.
// ID and Timestamp are attached locally; everything else comes from the model.
type AssessmentReport struct {
	ID                    string              `json:"id"`
	Timestamp             time.Time           `json:"timestamp"`
	ClientName            string              `json:"clientName"`
	LoanPurpose           string              `json:"loanPurpose"`
	AmountRequested       float64             `json:"amountRequested"`
	RepaymentPeriod       string              `json:"repaymentPeriod"`
	Recommendation        Recommendation      `json:"recommendation"`
	RiskLevel             RiskLevel           `json:"riskLevel"`
	ConfidenceScore       float64             `json:"confidenceScore"`
	VerificationScore     float64             `json:"verificationScore"`
	FraudFlags            []string            `json:"fraudFlags"`
	Affordability         AffordabilityData   `json:"affordability"`
	SuggestedPaymentPlans []PaymentPlanOption `json:"suggestedPaymentPlans"`
	RiskFactors           []RiskFactor        `json:"riskFactors"`
	AIReasoning           string              `json:"aiReasoning"`
	RadarMetrics          RadarMetrics        `json:"radarMetrics"`
}

var ErrInvalidReport = errors.New("invalid assessment report")

// Validate rejects model output that does not satisfy the declared schema:
// empty required strings, out-of-enum values, or negative amounts. Absent
// fields are caught earlier, at decode time.
func (r *AssessmentReport) Validate() error {
	if r.ClientName == "" {
		return fmt.Errorf("%w: clientName is required", ErrInvalidReport)
	}
	if r.LoanPurpose == "" {
		return fmt.Errorf("%w: loanPurpose is required", ErrInvalidReport)
	}
	if r.RepaymentPeriod == "" {
		return fmt.Errorf("%w: repaymentPeriod is required", ErrInvalidReport)
	}
	if r.AmountRequested < 0 {
		return fmt.Errorf("%w: amountRequested must not be negative", ErrInvalidReport)
	}
	if !r.Recommendation.Valid() {
		return fmt.Errorf("%w: recommendation %q not in {APPROVE, DECLINE, CONDITIONAL}", ErrInvalidReport, r.Recommendation)
	}
	if !r.RiskLevel.Valid() {
		return fmt.Errorf("%w: riskLevel %q not in {LOW, MODERATE, HIGH}", ErrInvalidReport, r.RiskLevel)
	}
	if r.AIReasoning == "" {
		return fmt.Errorf("%w: aiReasoning is required", ErrInvalidReport)
	}
	for i, factor := range r.RiskFactors {
		if factor.Text == "" {
			return fmt.Errorf("%w: riskFactors[%d].text is required", ErrInvalidReport, i)
		}
		if !factor.Type.Valid() {
			return fmt.Errorf("%w: riskFactors[%d].type %q not in {POSITIVE, NEGATIVE, NEUTRAL}", ErrInvalidReport, i, factor.Type)
		}
	}
	for i, plan := range r.SuggestedPaymentPlans {
		if plan.Term == "" {
			return fmt.Errorf("%w: suggestedPaymentPlans[%d].term is required", ErrInvalidReport, i)
		}
	}
	return nil
}

// NormalizeConfidence maps a confidence value onto the 0-100 scale. Upstream
// models return the score either as a 0-1 fraction or as a percentage; values
// at or below 1 are treated as fractions. Already-percentage values pass
// through unchanged.
func NormalizeConfidence(score float64) float64 {
	if score <= 1 {
		return score * 100
	}
	return score
}
