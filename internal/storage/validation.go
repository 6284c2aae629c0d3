// Package storage persists classification batches and reviewer decisions in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidResult     = errors.New("invalid classification result")
	ErrInvalidReview     = errors.New("invalid review decision")
	ErrReviewNotRequired = errors.New("result does not require manual review")
)

// ErrNotFound is returned when a batch or result does not exist.
var ErrNotFound = common.ErrNotFound

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateResults checks results before they are written as a batch.
func validateResults(results []model.ClassificationResult) error {
	if results == nil {
		return fmt.Errorf("%w: results", ErrNilParameter)
	}

	seen := make(map[string]struct{}, len(results))
	for i, r := range results {
		if strings.TrimSpace(r.TransactionID) == "" {
			return fmt.Errorf("%w: result at index %d has no transaction id", ErrInvalidResult, i)
		}
		if _, dup := seen[r.TransactionID]; dup {
			return fmt.Errorf("%w: transaction %s", common.ErrDuplicateEntry, r.TransactionID)
		}
		seen[r.TransactionID] = struct{}{}

		if r.ResolutionTier == "" {
			return fmt.Errorf("%w: transaction %s has no resolution tier", ErrInvalidResult, r.TransactionID)
		}
		if r.ReviewStatus != model.StatusAutoCleared && r.ReviewStatus != model.StatusManualReviewRequired {
			return fmt.Errorf("%w: transaction %s has review status %q", ErrInvalidResult, r.TransactionID, r.ReviewStatus)
		}
	}
	return nil
}

// validateDecision validates a reviewer decision.
func validateDecision(d *model.ReviewDecision) error {
	if d == nil {
		return fmt.Errorf("%w: decision", ErrNilParameter)
	}
	if strings.TrimSpace(d.BatchID) == "" {
		return fmt.Errorf("%w: missing batch id", ErrInvalidReview)
	}
	if strings.TrimSpace(d.TransactionID) == "" {
		return fmt.Errorf("%w: missing transaction id", ErrInvalidReview)
	}
	if strings.TrimSpace(d.Reviewer) == "" {
		return fmt.Errorf("%w: missing reviewer", ErrInvalidReview)
	}
	if !d.Approved && strings.TrimSpace(d.Category) == "" && strings.TrimSpace(d.Note) == "" {
		return fmt.Errorf("%w: a rejection needs a corrected category or a note", ErrInvalidReview)
	}
	return nil
}
