package report

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/finnet/internal/engine"
	"github.com/Veraticus/finnet/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testDate = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func sampleResults() []model.ClassificationResult {
	return []model.ClassificationResult{
		{
			TransactionID:       "1",
			AccountID:           "1001-0001-01",
			Date:                testDate,
			Currency:            "LKR",
			Amount:              decimal.RequireFromString("540"),
			ProductCode:         "INT_CR",
			OriginalDescription: "SAVINGS INTEREST",
			Category:            "Interest Income",
			RegulatoryCode:      model.NoRegulatoryCode,
			RiskLevel:           model.RiskLow,
			ResolutionTier:      model.TierProductMap,
			ReviewStatus:        model.StatusAutoCleared,
		},
		{
			TransactionID:       "4",
			AccountID:           "1001-0004-01",
			Date:                testDate,
			Currency:            "LKR",
			Amount:              decimal.RequireFromString("1500000"),
			OriginalDescription: "family support monthly",
			Category:            "Family Maintenance",
			RegulatoryCode:      "4010",
			ResolutionTier:      model.TierAdvisoryClassifier,
			ReviewStatus:        model.StatusManualReviewRequired,
			RiskFlag:            true,
		},
		{
			TransactionID:       "5",
			AccountID:           "1001-0005-01",
			Date:                testDate,
			Currency:            "LKR",
			Amount:              decimal.RequireFromString("20000"),
			OriginalDescription: "transfer, misc",
			Category:            model.CategoryCustomerTransfer,
			RegulatoryCode:      model.CodeManualReview,
			ResolutionTier:      model.TierAdvisoryClassifier,
			ReviewStatus:        model.StatusManualReviewRequired,
			AdvisoryFailure:     model.FailureTimeout,
		},
	}
}

func TestFinNetFileName(t *testing.T) {
	assert.Equal(t, "FinNet_Return_20250314.csv", FinNetFileName(testDate))
}

func TestWriteFinNetCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFinNetCSV(&buf, sampleResults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, FinNetHeader, rows[0])
	assert.Equal(t, []string{
		"1001-0001-01", "2025-03-14", "LKR", "540.00", "N/A", "SAVINGS INTEREST",
		"1", "Interest Income", "ProductMap", "false", "AutoCleared",
	}, rows[1])
	assert.Equal(t, "4010", rows[2][4])
	assert.Equal(t, "true", rows[2][9])
	assert.Equal(t, "transfer, misc", rows[3][5])
	assert.Equal(t, "MANUAL_REVIEW", rows[3][4])
}

func TestWriteFinNetCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFinNetCSV(&buf, nil))
	assert.Equal(t, strings.Join(FinNetHeader, ",")+"\n", buf.String())
}

func TestWriteXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, "batch-1", testDate, sampleResults()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, xml.Header))

	var doc xmlReturn
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "batch-1", doc.BatchID)
	assert.Equal(t, 3, doc.RecordCount)
	require.Len(t, doc.Transactions, 3)
	assert.Equal(t, "1500000.00", doc.Transactions[1].Amount)
	assert.True(t, doc.Transactions[1].RiskFlag)
	assert.Equal(t, "timeout", doc.Transactions[2].AdvisoryFailure)
	assert.Empty(t, doc.Transactions[0].AdvisoryFailure)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, FinNetHeader, rows[0])
	assert.Equal(t, "SAVINGS INTEREST", rows[1][5])
	assert.Equal(t, "4010", rows[2][4])

	plain, err := f.GetCellStyle(SheetName, "A2")
	require.NoError(t, err)
	flagged, err := f.GetCellStyle(SheetName, "A3")
	require.NoError(t, err)
	review, err := f.GetCellStyle(SheetName, "K4")
	require.NoError(t, err)

	assert.NotEqual(t, plain, flagged)
	assert.NotEqual(t, plain, review)
	assert.NotEqual(t, flagged, review)
}

func TestWriteXLSX_ExactAmounts(t *testing.T) {
	results := []model.ClassificationResult{{
		TransactionID:  "big",
		Amount:         decimal.RequireFromString("12345678901234567.89"),
		RegulatoryCode: model.NoRegulatoryCode,
		ReviewStatus:   model.StatusAutoCleared,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, results))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	amount, err := f.GetCellValue(SheetName, "D2")
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567.89", amount)
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sampleResults())

	for _, want := range []string{"TXN", "SAVINGS INTEREST", "Family Maintenance", "MANUAL_REVIEW", "1500000.00"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderSummary(t *testing.T) {
	summary := engine.Summarize(sampleResults(), 1500*time.Millisecond)
	out := RenderSummary(summary)

	assert.Contains(t, out, "Batch Summary")
	assert.Contains(t, out, "Advisory failures")
	assert.Contains(t, out, "timeout:")
	assert.Contains(t, out, "1.5s")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
