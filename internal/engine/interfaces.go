package engine

import (
	"context"

	"github.com/Veraticus/finnet/internal/model"
)

// Advisor defines the contract for the Tier 3 advisory classifier.
// Implementations must not panic and must report failures in the result
// rather than returning an error.
type Advisor interface {
	Advise(ctx context.Context, req model.AdvisoryRequest) model.AdvisoryResult
}

// RuleMatcher finds the first Tier 2 keyword rule matching a description.
type RuleMatcher interface {
	Match(description string) (model.KeywordRule, bool)
}
