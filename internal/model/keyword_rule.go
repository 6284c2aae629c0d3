package model

// KeywordRule is a declarative Tier 2 rule. All non-empty predicates must hold
// for the rule to match:
//   - every AllOf keyword appears in the description,
//   - at least one AnyOf keyword appears in the description,
//   - Pattern, a regular expression, matches the description.
//
// Keywords are compared against the upper-cased description.
type KeywordRule struct {
	Name           string    `yaml:"name" json:"name"`
	Pattern        string    `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Category       string    `yaml:"category" json:"category"`
	RegulatoryCode string    `yaml:"regulatory_code,omitempty" json:"regulatory_code,omitempty"`
	RiskLevel      RiskLevel `yaml:"risk_level,omitempty" json:"risk_level,omitempty"`
	AllOf          []string  `yaml:"all_of,omitempty" json:"all_of,omitempty"`
	AnyOf          []string  `yaml:"any_of,omitempty" json:"any_of,omitempty"`
}

// Code returns the rule's regulatory code, or NoRegulatoryCode if the rule does not carry one.
func (r KeywordRule) Code() string {
	if r.RegulatoryCode == "" {
		return NoRegulatoryCode
	}
	return r.RegulatoryCode
}

// HasPredicate reports whether the rule constrains the description at all.
func (r KeywordRule) HasPredicate() bool {
	return len(r.AllOf) > 0 || len(r.AnyOf) > 0 || r.Pattern != ""
}
