package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finnet/internal/cli"
	"github.com/Veraticus/finnet/internal/engine"
	"github.com/Veraticus/finnet/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const maxDescriptionWidth = 40

// RenderTable renders results as the reviewer table shown in the terminal.
func RenderTable(results []model.ClassificationResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		flag := ""
		if r.RiskFlag {
			flag = cli.FlagIcon
		}
		rows = append(rows, []string{
			r.TransactionID,
			r.AccountID,
			r.Amount.StringFixed(2),
			truncate(r.OriginalDescription, maxDescriptionWidth),
			r.Category,
			r.RegulatoryCode,
			string(r.ResolutionTier),
			flag,
			string(r.ReviewStatus),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(cli.SubtleStyle).
		Headers("TXN", "ACCOUNT", "AMOUNT", "DESCRIPTION", "CATEGORY", "CODE", "TIER", "AML", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return cli.TableHeaderStyle
			}
			if row < 0 || row >= len(results) {
				return cli.TableCellStyle
			}
			switch {
			case results[row].RiskFlag:
				return cli.TableCellStyle.Foreground(cli.ErrorColor)
			case results[row].NeedsReview():
				return cli.TableCellStyle.Foreground(cli.WarningColor)
			default:
				return cli.TableCellStyle
			}
		})

	return t.String()
}

// RenderSummary renders batch statistics in a box.
func RenderSummary(s engine.BatchSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Transactions:        %d\n", s.Total)
	fmt.Fprintf(&b, "  Product map:       %d\n", s.ByTier[model.TierProductMap])
	fmt.Fprintf(&b, "  Keyword rules:     %d\n", s.ByTier[model.TierKeywordRule])
	fmt.Fprintf(&b, "  Advisory:          %d\n", s.ByTier[model.TierAdvisoryClassifier])
	b.WriteString(cli.SuccessStyle.Render(fmt.Sprintf("Auto cleared:        %d", s.AutoCleared)) + "\n")
	b.WriteString(cli.WarningStyle.Render(fmt.Sprintf("Manual review:       %d", s.ManualReview)) + "\n")
	b.WriteString(cli.ErrorStyle.Render(fmt.Sprintf("AML flagged:         %d", s.RiskFlagged)))

	if s.AdvisoryFailures > 0 {
		fmt.Fprintf(&b, "\nAdvisory failures:   %d", s.AdvisoryFailures)
		for _, kind := range []model.AdvisoryFailure{
			model.FailureTimeout,
			model.FailureNetwork,
			model.FailureBadResponse,
			model.FailureRateLimited,
			model.FailureDisabled,
		} {
			if n := s.ByFailure[kind]; n > 0 {
				fmt.Fprintf(&b, "\n  %-18s %d", string(kind)+":", n)
			}
		}
	}

	if s.Duration > 0 {
		fmt.Fprintf(&b, "\nDuration:            %s", s.Duration.Round(time.Millisecond))
	}

	return cli.RenderBox("Batch Summary", b.String())
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
