package model

import (
	"fmt"
	"strings"
)

// RiskLevel grades the inherent risk of a mapped product.
type RiskLevel string

// Risk level constants.
const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ParseRiskLevel converts a case-insensitive name into a RiskLevel.
// An empty string yields RiskLow.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "low":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	default:
		return "", fmt.Errorf("unknown risk level %q", s)
	}
}

// NoRegulatoryCode is used when no regulatory code applies to a category.
const NoRegulatoryCode = "N/A"

// ProductMapping is the regulatory treatment of a single ledger product code.
type ProductMapping struct {
	Category       string    `yaml:"category" json:"category"`
	RegulatoryCode string    `yaml:"regulatory_code" json:"regulatory_code"`
	RiskLevel      RiskLevel `yaml:"risk_level" json:"risk_level"`
}

// CategoryMapping maps ledger product codes to their regulatory treatment.
// It is read-only once loaded; a missing key means Tier 1 cannot resolve the record.
type CategoryMapping map[string]ProductMapping

// Lookup returns the mapping for a product code. Codes are matched exactly
// after trimming surrounding whitespace.
func (m CategoryMapping) Lookup(productCode string) (ProductMapping, bool) {
	code := strings.TrimSpace(productCode)
	if code == "" {
		return ProductMapping{}, false
	}
	pm, ok := m[code]
	return pm, ok
}

// Validate ensures every entry names a category and a known risk level.
func (m CategoryMapping) Validate() error {
	for code, pm := range m {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("product mapping has an empty code")
		}
		if strings.TrimSpace(pm.Category) == "" {
			return fmt.Errorf("product code %s has no category", code)
		}
		if _, err := ParseRiskLevel(string(pm.RiskLevel)); err != nil {
			return fmt.Errorf("product code %s: %w", code, err)
		}
	}
	return nil
}

// DefaultCategoryMapping returns the built-in core banking product map.
func DefaultCategoryMapping() CategoryMapping {
	return CategoryMapping{
		"INT_CR":  {Category: "Interest Income", RegulatoryCode: NoRegulatoryCode, RiskLevel: RiskLow},
		"CHG_SMS": {Category: "Bank Charges", RegulatoryCode: NoRegulatoryCode, RiskLevel: RiskLow},
		"LN_PMT":  {Category: "Loan Repayment", RegulatoryCode: NoRegulatoryCode, RiskLevel: RiskLow},
		"TAX_WHT": {Category: "Withholding Tax", RegulatoryCode: NoRegulatoryCode, RiskLevel: RiskLow},
	}
}
