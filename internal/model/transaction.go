// Package model defines the core domain models used throughout the application.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRecord is returned when a transaction record violates the input contract.
var ErrInvalidRecord = errors.New("invalid transaction record")

// TransactionRecord is a single ledger entry awaiting regulatory classification.
// Records are treated as immutable while they are being classified.
type TransactionRecord struct {
	Date        time.Time
	Amount      decimal.Decimal
	ID          string
	AccountID   string
	ProductCode string // Ledger system code, empty if the entry was not system-tagged
	Description string // Free-text narration
	Currency    string
}

// Validate checks the caller-side contract: every record needs an id and a
// non-negative amount. The waterfall refuses records that fail it.
func (r TransactionRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("%w: transaction %s has negative amount %s", ErrInvalidRecord, r.ID, r.Amount.String())
	}
	return nil
}

// HasProductCode reports whether the ledger tagged this record with a product code.
func (r TransactionRecord) HasProductCode() bool {
	return strings.TrimSpace(r.ProductCode) != ""
}
