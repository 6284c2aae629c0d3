// Package report renders classification results for regulators and reviewers.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Veraticus/finnet/internal/model"
)

// DateLayout is the date format used in every export.
const DateLayout = "2006-01-02"

// FinNetHeader lists the FinNet return columns. The first six are the
// regulator's format; the rest carry the audit trail.
var FinNetHeader = []string{
	"AccountNo", "Date", "Currency", "Amount", "ITRSCode", "Description",
	"TxnID", "Category", "Tier", "RiskFlag", "ReviewStatus",
}

// FinNetFileName returns the daily return file name for the given date.
func FinNetFileName(date time.Time) string {
	return fmt.Sprintf("FinNet_Return_%s.csv", date.Format("20060102"))
}

// WriteFinNetCSV writes results as a FinNet return, one row per result, in order.
func WriteFinNetCSV(w io.Writer, results []model.ClassificationResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(FinNetHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range results {
		if err := writer.Write(finNetRow(r)); err != nil {
			return fmt.Errorf("failed to write transaction %s: %w", r.TransactionID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush FinNet return: %w", err)
	}
	return nil
}

func finNetRow(r model.ClassificationResult) []string {
	return []string{
		r.AccountID,
		formatDate(r.Date),
		r.Currency,
		r.Amount.StringFixed(2),
		r.RegulatoryCode,
		r.OriginalDescription,
		r.TransactionID,
		r.Category,
		string(r.ResolutionTier),
		strconv.FormatBool(r.RiskFlag),
		string(r.ReviewStatus),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
