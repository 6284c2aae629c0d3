package pattern

import "github.com/Veraticus/finnet/internal/model"

// DefaultRules returns the built-in keyword rule table, highest priority first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "ATM Withdrawal",
			AllOf:     []string{"ATM", "WITHDRAWAL"},
			Category:  "Cash Withdrawal",
			RiskLevel: model.RiskLow,
		},
		{
			Name:      "Cash Deposit",
			AllOf:     []string{"CASH", "DEPOSIT"},
			Category:  "Cash Deposit",
			RiskLevel: model.RiskMedium,
		},
		{
			Name:      "Salary Credit",
			AnyOf:     []string{"SALARY", "PAYROLL"},
			Category:  "Salary Credit",
			RiskLevel: model.RiskLow,
		},
		{
			Name:      "Utility Bill",
			AnyOf:     []string{"ELECTRICITY", "WATER BILL", "TELECOM", "UTILITY"},
			Category:  "Utility Payment",
			RiskLevel: model.RiskLow,
		},
		{
			Name:           "Cloud Services",
			Pattern:        `\b(AWS|AZURE|GOOGLE CLOUD|DIGITALOCEAN)\b`,
			Category:       "Software/IT Services",
			RegulatoryCode: "1215",
			RiskLevel:      model.RiskMedium,
		},
		{
			Name:           "Hospital",
			AnyOf:          []string{"HOSPITAL", "MEDICAL CENTRE", "MEDICAL CENTER"},
			Category:       "Medical Expenses",
			RegulatoryCode: "2250",
			RiskLevel:      model.RiskLow,
		},
	}
}
