// Package ingest turns core-banking extracts into transaction records for the waterfall.
package ingest

import (
	"time"

	"github.com/Veraticus/finnet/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when an extract does not carry a currency.
const DefaultCurrency = "LKR"

// SampleBatch returns the built-in daily batch used for dry runs and demos.
// Every record is dated on the given day.
func SampleBatch(day time.Time) []model.TransactionRecord {
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	return []model.TransactionRecord{
		{
			ID:          "1",
			AccountID:   "1001-0001-01",
			Date:        date,
			ProductCode: "INT_CR",
			Description: "SAVINGS INTEREST",
			Amount:      decimal.RequireFromString("540.00"),
			Currency:    DefaultCurrency,
		},
		{
			ID:          "2",
			AccountID:   "1001-0002-01",
			Date:        date,
			ProductCode: "TRF_IB",
			Description: "Payment for web design course",
			Amount:      decimal.RequireFromString("25000.00"),
			Currency:    DefaultCurrency,
		},
		{
			ID:          "3",
			AccountID:   "1001-0003-01",
			Date:        date,
			ProductCode: "LN_PMT",
			Description: "AUTO LOAN 40404",
			Amount:      decimal.RequireFromString("15000.00"),
			Currency:    DefaultCurrency,
		},
		{
			ID:          "4",
			AccountID:   "1001-0004-01",
			Date:        date,
			ProductCode: "TRF_OT",
			Description: "family support monthly",
			Amount:      decimal.RequireFromString("150000.00"),
			Currency:    DefaultCurrency,
		},
	}
}
