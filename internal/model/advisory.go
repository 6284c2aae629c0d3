package model

import (
	"github.com/shopspring/decimal"
)

// AdvisoryCategory is one entry of the fixed enumeration offered to the advisory classifier.
type AdvisoryCategory struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

// DefaultAdvisoryCategories returns the ITRS purpose codes offered to the advisory classifier.
func DefaultAdvisoryCategories() []AdvisoryCategory {
	return []AdvisoryCategory{
		{Code: "4010", Name: "Family Maintenance"},
		{Code: "1215", Name: "Software/IT Services"},
		{Code: "2210", Name: "Education Fees"},
		{Code: "2250", Name: "Medical Expenses"},
		{Code: "1000", Name: "Merchandise Import"},
	}
}

// AdvisoryRequest is what the waterfall sends to the advisory classifier.
type AdvisoryRequest struct {
	Amount      decimal.Decimal
	Description string
}

// AdvisoryFailure names why the advisory classifier could not produce a category.
type AdvisoryFailure string

// Advisory failure kinds. FailureNone means the call succeeded.
const (
	FailureNone        AdvisoryFailure = ""
	FailureTimeout     AdvisoryFailure = "timeout"
	FailureNetwork     AdvisoryFailure = "network"
	FailureBadResponse AdvisoryFailure = "bad_response"
	FailureRateLimited AdvisoryFailure = "rate_limited"
	FailureDisabled    AdvisoryFailure = "disabled"
)

// AdvisoryResult is the outcome of one advisory call. Exactly one of Category
// or Failure is meaningful.
type AdvisoryResult struct {
	Err      error
	Category AdvisoryCategory
	Failure  AdvisoryFailure
	Raw      string // Raw response text, kept for logging
	Cached   bool
}

// OK reports whether the advisory call produced a usable category.
func (r AdvisoryResult) OK() bool {
	return r.Failure == FailureNone && r.Category.Code != ""
}

// AdvisoryFailed builds a failed result of the given kind.
func AdvisoryFailed(kind AdvisoryFailure, err error, raw string) AdvisoryResult {
	return AdvisoryResult{Failure: kind, Err: err, Raw: raw}
}
