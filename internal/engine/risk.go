package engine

import "github.com/Veraticus/finnet/internal/model"

// evaluateRisk applies the AML threshold independently of the resolving tier.
// The threshold is inclusive. Below it, results stay AutoCleared unless the
// waterfall could not produce a trustworthy category.
func (w *Waterfall) evaluateRisk(result *model.ClassificationResult) {
	result.RiskFlag = result.Amount.GreaterThanOrEqual(w.threshold)

	switch {
	case result.RiskFlag:
		result.ReviewStatus = model.StatusManualReviewRequired
	case result.Category == model.CategoryUnclassified:
		result.ReviewStatus = model.StatusManualReviewRequired
	case result.RegulatoryCode == model.CodeManualReview:
		result.ReviewStatus = model.StatusManualReviewRequired
	default:
		result.ReviewStatus = model.StatusAutoCleared
	}
}
