package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResolutionTier names the waterfall tier that resolved a record.
type ResolutionTier string

// Resolution tier constants, in waterfall order.
const (
	TierProductMap         ResolutionTier = "ProductMap"
	TierKeywordRule        ResolutionTier = "KeywordRule"
	TierAdvisoryClassifier ResolutionTier = "AdvisoryClassifier"
)

// ReviewStatus indicates whether a result needs a human reviewer.
type ReviewStatus string

// Review status constants.
const (
	StatusAutoCleared          ReviewStatus = "AutoCleared"
	StatusManualReviewRequired ReviewStatus = "ManualReviewRequired"
)

// Statuses reported once a reviewer has decided. The engine never assigns them.
const (
	StatusReviewApproved  ReviewStatus = "ReviewApproved"
	StatusReviewCorrected ReviewStatus = "ReviewCorrected"
	StatusReviewRejected  ReviewStatus = "ReviewRejected"
)

// Sentinel categories and codes.
const (
	CategoryUnclassified     = "Unclassified"
	CategoryCustomerTransfer = "Customer Transfer"
	CodeManualReview         = "MANUAL_REVIEW"
)

// ClassificationResult is produced exactly once per TransactionRecord and is
// not modified by the engine afterwards.
type ClassificationResult struct {
	Date                time.Time
	Amount              decimal.Decimal
	TransactionID       string
	AccountID           string
	Currency            string
	ProductCode         string
	OriginalDescription string
	Category            string
	RegulatoryCode      string
	RiskLevel           RiskLevel
	ResolutionTier      ResolutionTier
	ReviewStatus        ReviewStatus
	AdvisoryFailure     AdvisoryFailure
	RiskFlag            bool
}

// NeedsReview reports whether the result must go to a human reviewer.
func (r ClassificationResult) NeedsReview() bool {
	return r.ReviewStatus == StatusManualReviewRequired
}

// ReviewDecision is a reviewer's verdict on a result that required manual review.
type ReviewDecision struct {
	ReviewedAt     time.Time `json:"reviewed_at"`
	BatchID        string    `json:"batch_id"`
	TransactionID  string    `json:"transaction_id"`
	Reviewer       string    `json:"reviewer"`
	Category       string    `json:"category,omitempty"`
	RegulatoryCode string    `json:"regulatory_code,omitempty"`
	Note           string    `json:"note,omitempty"`
	Approved       bool      `json:"approved"`
}

// StoredResult is a persisted result with its batch and review state.
type StoredResult struct {
	Review  *ReviewDecision
	BatchID string
	ClassificationResult
}

// Batch describes one classification run.
type Batch struct {
	CreatedAt         time.Time `json:"created_at"`
	ID                string    `json:"id"`
	Source            string    `json:"source"`
	RecordCount       int       `json:"record_count"`
	ManualReviewCount int       `json:"manual_review_count"`
}

// Effective returns the result as it should be reported: a reviewer's
// corrected category and code replace the classified ones, and the review
// status records the reviewer's outcome.
func (r StoredResult) Effective() ClassificationResult {
	out := r.ClassificationResult
	if r.Review == nil {
		return out
	}

	corrected := false
	if r.Review.Category != "" {
		out.Category = r.Review.Category
		corrected = true
	}
	if r.Review.RegulatoryCode != "" {
		out.RegulatoryCode = r.Review.RegulatoryCode
		corrected = true
	}

	switch {
	case r.Review.Approved:
		out.ReviewStatus = StatusReviewApproved
	case corrected:
		out.ReviewStatus = StatusReviewCorrected
	default:
		out.ReviewStatus = StatusReviewRejected
	}
	return out
}
