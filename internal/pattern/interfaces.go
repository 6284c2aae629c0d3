// Package pattern provides the ordered keyword rule table used by the second
// tier of the classification waterfall.
package pattern

import (
	"github.com/Veraticus/finnet/internal/model"
)

// RuleMatcher finds the first keyword rule matching a transaction description.
type RuleMatcher interface {
	// Match returns the first rule, in listed order, whose predicates all hold.
	Match(description string) (Rule, bool)
}

// Rule is an alias to the model.KeywordRule type for convenience.
type Rule = model.KeywordRule
