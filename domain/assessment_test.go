package domain

import (
	"errors"
	"testing"
)

func validReport() AssessmentReport {
	return AssessmentReport{
		ClientName:      "Amina Hassan",
		LoanPurpose:     "Furniture",
		AmountRequested: 5000,
		RepaymentPeriod: "12 months",
		Recommendation:  RecommendationApprove,
		RiskLevel:       RiskLow,
		ConfidenceScore: 92,
		RiskFactors: []RiskFactor{
			{Text: "Stable employment history", Type: FactorPositive},
		},
		SuggestedPaymentPlans: []PaymentPlanOption{
			{Term: "12 months", MonthlyAmount: 450, Risk: "LOW"},
		},
		AIReasoning: "Income comfortably covers the requested installment.",
		RadarMetrics: RadarMetrics{
			DocumentIntegrity:    90,
			EmployerVerification: 85,
			Affordability:        88,
			IncomeStability:      92,
		},
	}
}

func TestReportValidate_OK(t *testing.T) {
	report := validReport()
	if err := report.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReportValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AssessmentReport)
	}{
		{"missing client name", func(r *AssessmentReport) { r.ClientName = "" }},
		{"missing purpose", func(r *AssessmentReport) { r.LoanPurpose = "" }},
		{"missing period", func(r *AssessmentReport) { r.RepaymentPeriod = "" }},
		{"negative amount", func(r *AssessmentReport) { r.AmountRequested = -1 }},
		{"unknown recommendation", func(r *AssessmentReport) { r.Recommendation = "MAYBE" }},
		{"unknown risk level", func(r *AssessmentReport) { r.RiskLevel = "EXTREME" }},
		{"unknown factor type", func(r *AssessmentReport) { r.RiskFactors[0].Type = "GOOD" }},
		{"empty factor text", func(r *AssessmentReport) { r.RiskFactors[0].Text = "" }},
		{"empty plan term", func(r *AssessmentReport) { r.SuggestedPaymentPlans[0].Term = "" }},
		{"empty reasoning", func(r *AssessmentReport) { r.AIReasoning = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := validReport()
			tc.mutate(&report)

			err := report.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !errors.Is(err, ErrInvalidReport) {
				t.Errorf("expected ErrInvalidReport, got %v", err)
			}
		})
	}
}

func TestNormalizeConfidence(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.92, 92},
		{92, 92},
		{1, 100},
		{0, 0},
		{100, 100},
	}

	for _, tc := range cases {
		if got := NormalizeConfidence(tc.in); got != tc.want {
			t.Errorf("NormalizeConfidence(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLenderConfigValidate(t *testing.T) {
	valid := LenderConfig{
		MaxDtiRatio:         35,
		MinConfidence:       85,
		OrganizationName:    "LoanLens Capital",
		BranchName:          "Dubai Central",
		AuthorizedSignatory: "Elias Thorne",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tooLowDti := valid
	tooLowDti.MaxDtiRatio = 5
	if err := tooLowDti.Validate(); err == nil {
		t.Errorf("expected error for DTI below range")
	}

	tooHighConfidence := valid
	tooHighConfidence.MinConfidence = 99
	if err := tooHighConfidence.Validate(); err == nil {
		t.Errorf("expected error for confidence above range")
	}

	noOrg := valid
	noOrg.OrganizationName = ""
	if err := noOrg.Validate(); err == nil {
		t.Errorf("expected error for missing organization name")
	}
}

func TestLenderConfigFingerprint(t *testing.T) {
	a := LenderConfig{OrganizationName: "LoanLens Capital", BranchName: "Dubai Central", AuthorizedSignatory: "Elias Thorne"}
	b := a
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("identical configs should share a fingerprint")
	}

	b.OrganizationName = "Other Capital"
	if a.Fingerprint() == b.Fingerprint() {
		t.Errorf("branding change should change the fingerprint")
	}

	// Threshold changes do not affect letter branding.
	c := a
	c.MaxDtiRatio = 50
	if a.Fingerprint() != c.Fingerprint() {
		t.Errorf("threshold change should not change the fingerprint")
	}
}
