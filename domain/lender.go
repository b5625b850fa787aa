package domain

import (
	"errors"
	"fmt"
	"hash/fnv"
)

// DTI and confidence thresholds accepted from a lender.
const (
	MinDtiRatio      = 10
	MaxDtiRatio      = 60
	MinConfidence    = 50
	MaxConfidenceCap = 95
)

// LoanDetails carries the request parameters entered for one application.
type LoanDetails struct {
	Purpose string  `json:"purpose"`
	Amount  float64 `json:"amount"`
	Period  string  `json:"period"`
}

func (d LoanDetails) Validate() error {
	if d.Purpose == "" {
		return errors.New("loan purpose is required")
	}
	if d.Amount <= 0 {
		return errors.New("loan amount must be positive")
	}
	if d.Period == "" {
		return errors.New("repayment period is required")
	}
	return nil
}

// LenderConfig holds institution policy thresholds and branding. Changes apply
// to future analysis and letter requests only; stored reports keep the values
// they were produced under.
type LenderConfig struct {
	MaxDtiRatio           int    `json:"maxDtiRatio"`
	MinConfidence         int    `json:"minConfidence"`
	StrictEmploymentCheck bool   `json:"strictEmploymentCheck"`
	OrganizationName      string `json:"organizationName"`
	BranchName            string `json:"branchName"`
	AuthorizedSignatory   string `json:"authorizedSignatory"`
}

func (c LenderConfig) Validate() error {
	if c.MaxDtiRatio < MinDtiRatio || c.MaxDtiRatio > MaxDtiRatio {
		return fmt.Errorf("maxDtiRatio must be between %d and %d", MinDtiRatio, MaxDtiRatio)
	}
	if c.MinConfidence < MinConfidence || c.MinConfidence > MaxConfidenceCap {
		return fmt.Errorf("minConfidence must be between %d and %d", MinConfidence, MaxConfidenceCap)
	}
	if c.OrganizationName == "" {
		return errors.New("organizationName is required")
	}
	if c.AuthorizedSignatory == "" {
		return errors.New("authorizedSignatory is required")
	}
	return nil
}

// Fingerprint returns a stable hash of the branding fields that influence
// letter text. Used to key the letter cache so a config edit invalidates
// previously cached letters.
func (c LenderConfig) Fingerprint() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", c.OrganizationName, c.BranchName, c.AuthorizedSignatory)
	return fmt.Sprintf("%x", h.Sum64())
}
