package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Veraticus/finnet/internal/cli"
	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/config"
	"github.com/Veraticus/finnet/internal/engine"
	"github.com/Veraticus/finnet/internal/model"
	"github.com/Veraticus/finnet/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a batch of transactions",
		Long: `Classify a day's transactions through the waterfall and show the review table.

Input comes from the built-in sample batch, a core-banking CSV extract or an
OFX/QFX statement. Results are saved for review and, with --export, written as
a FinNet return.`,
		Example: `  finnet classify --dry-run
  finnet classify --file extract.csv --export
  finnet classify --file statement.ofx --format xlsx --export`,
		RunE: runClassify,
	}

	cmd.Flags().String("input", "", "input type: sample, csv, ofx (default: from file extension, sample without --file)")
	cmd.Flags().String("file", "", "input file")
	cmd.Flags().String("date", "", "business date YYYY-MM-DD (default: today)")
	cmd.Flags().Bool("dry-run", false, "use the offline advisory classifier instead of the configured provider")
	cmd.Flags().Bool("no-advisory", false, "skip the advisory classifier; unresolved transactions go to manual review")
	cmd.Flags().Bool("no-save", false, "do not save the batch to the review database")
	cmd.Flags().Bool("export", false, "write the FinNet return to the export directory")
	cmd.Flags().String("format", formatCSV, "export format: csv, xml, xlsx")
	cmd.Flags().Bool("quiet", false, "do not print the review table")
	cmd.Flags().Int("workers", 0, "parallel classifications (default: engine.workers)")

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	file, _ := cmd.Flags().GetString("file")
	dateStr, _ := cmd.Flags().GetString("date")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noAdvisory, _ := cmd.Flags().GetBool("no-advisory")
	noSave, _ := cmd.Flags().GetBool("no-save")
	export, _ := cmd.Flags().GetBool("export")
	format, _ := cmd.Flags().GetString("format")
	quiet, _ := cmd.Flags().GetBool("quiet")
	workers, _ := cmd.Flags().GetInt("workers")

	day, err := parseBusinessDate(dateStr)
	if err != nil {
		return err
	}

	cfg, ref, err := loadConfig()
	if err != nil {
		return err
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Classification interrupted, the batch was not saved.")
	ctx, stop := interrupts.HandleInterrupts(cmd.Context())
	defer stop()

	records, source, err := readRecords(input, file, day)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return common.NewUserError("Nothing to classify", common.ErrNoTransactions)
	}

	waterfall, err := buildWaterfall(cfg, ref, advisorOptions{DryRun: dryRun, Disabled: noAdvisory})
	if err != nil {
		return err
	}

	slog.Info("Classifying batch",
		"source", source,
		"records", len(records),
		"aml_threshold", waterfall.Threshold().StringFixed(2))

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Classifying transactions...[reset]"),
		progressbar.OptionClearOnFinish(),
	)

	start := time.Now()
	results, err := waterfall.ClassifyBatch(ctx, records, engine.BatchOptions{
		Workers: workers,
		Progress: func(model.ClassificationResult) {
			_ = bar.Add(1)
		},
	})
	_ = bar.Finish()
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		return common.NewUserError("Classification failed", err)
	}

	summary := engine.Summarize(results, time.Since(start))
	engine.LogSummary(slog.Default(), summary)

	out := cmd.OutOrStdout()
	if !quiet {
		fmt.Fprintln(out, report.RenderTable(results))
	}
	fmt.Fprintln(out, report.RenderSummary(summary))

	batchID := ""
	if !noSave {
		batchID, err = saveBatch(cmd, cfg, source, results)
		if err != nil {
			return err
		}
	}

	if export {
		path := filepath.Join(cfg.Export.Dir, exportFileName(day, format))
		if err := writeExport(path, format, batchID, time.Now(), results); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess("FinNet return written to "+path))
	}

	if summary.RiskFlagged > 0 {
		fmt.Fprintln(out, cli.ErrorStyle.Render(fmt.Sprintf("%s %d transaction(s) at or above the AML threshold", cli.FlagIcon, summary.RiskFlagged)))
	}
	return nil
}

func saveBatch(cmd *cobra.Command, cfg *config.Config, source string, results []model.ClassificationResult) (string, error) {
	store, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	batch, err := store.SaveBatch(cmd.Context(), source, time.Now(), results)
	if err != nil {
		return "", fmt.Errorf("failed to save batch: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Saved batch %s (%d awaiting review)", batch.ID, batch.ManualReviewCount)))
	return batch.ID, nil
}

func parseBusinessDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	day, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("Invalid --date %q (use YYYY-MM-DD)", s), err)
	}
	return day, nil
}
