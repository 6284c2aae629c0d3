package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/finnet/internal/model"
	"github.com/shopspring/decimal"
)

// DateLayout is the date format used by CSV extracts.
const DateLayout = "2006-01-02"

// CSV column names. Columns may appear in any order; currency is optional.
const (
	colTxnID       = "txn_id"
	colAccountNo   = "account_no"
	colDate        = "date"
	colTranCode    = "tran_code"
	colDescription = "description"
	colAmount      = "amount"
	colCurrency    = "currency"
)

var requiredColumns = []string{colTxnID, colAccountNo, colDate, colTranCode, colDescription, colAmount}

// ErrMissingColumn is returned when a CSV extract lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ReadCSV parses a core-banking CSV extract.
// Amounts are parsed as exact decimals; a blank currency falls back to DefaultCurrency.
func ReadCSV(r io.Reader) ([]model.TransactionRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read CSV header: empty file")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var records []model.TransactionRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		record, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func parseRow(row []string, index map[string]int) (model.TransactionRecord, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := time.Parse(DateLayout, field(colDate))
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("invalid date %q: %w", field(colDate), err)
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(field(colAmount), ",", ""))
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("invalid amount %q: %w", field(colAmount), err)
	}

	currency := strings.ToUpper(field(colCurrency))
	if currency == "" {
		currency = DefaultCurrency
	}

	return model.TransactionRecord{
		ID:          field(colTxnID),
		AccountID:   field(colAccountNo),
		Date:        date,
		ProductCode: strings.ToUpper(field(colTranCode)),
		Description: field(colDescription),
		Amount:      amount,
		Currency:    currency,
	}, nil
}
