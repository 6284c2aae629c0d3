package report

import (
	"fmt"
	"io"

	"github.com/Veraticus/finnet/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the review workbook rows.
const SheetName = "FinNet"

// WriteXLSX writes a review workbook. Rows that need manual review are
// highlighted; AML-flagged rows use a stronger fill.
func WriteXLSX(w io.Writer, results []model.ClassificationResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	header := make([]any, len(FinNetHeader))
	for i, h := range FinNetHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	reviewStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFE66D"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create review style: %w", err)
	}
	flagStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FF6B6B"}},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create flag style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(FinNetHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range results {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}

		// Amounts are written as fixed-point text so they match the FinNet CSV exactly.
		row := []any{
			r.AccountID,
			formatDate(r.Date),
			r.Currency,
			r.Amount.StringFixed(2),
			r.RegulatoryCode,
			r.OriginalDescription,
			r.TransactionID,
			r.Category,
			string(r.ResolutionTier),
			r.RiskFlag,
			string(r.ReviewStatus),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write transaction %s: %w", r.TransactionID, err)
		}

		style := 0
		switch {
		case r.RiskFlag:
			style = flagStyle
		case r.NeedsReview():
			style = reviewStyle
		}
		if style != 0 {
			end := fmt.Sprintf("%s%d", lastCol, rowNum)
			if err := f.SetCellStyle(SheetName, cell, end, style); err != nil {
				return fmt.Errorf("failed to highlight transaction %s: %w", r.TransactionID, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
