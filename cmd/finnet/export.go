package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Veraticus/finnet/internal/cli"
	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/model"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved batch as a FinNet return",
		Long: `Export a saved batch. Reviewer corrections replace the classified category
and ITRS code unless --raw is given. Without --batch the most recent batch is used.`,
		RunE: runExport,
	}

	cmd.Flags().String("batch", "", "batch id (default: latest)")
	cmd.Flags().String("format", formatCSV, "export format: csv, xml, xlsx")
	cmd.Flags().String("output", "", "output file (default: FinNet_Return_YYYYMMDD in the export directory)")
	cmd.Flags().Bool("raw", false, "export results as classified, ignoring reviewer corrections")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	batchID, _ := cmd.Flags().GetString("batch")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	raw, _ := cmd.Flags().GetBool("raw")

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if batchID == "" {
		batches, err := store.ListBatches(ctx, 1)
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			return common.NewUserError("No saved batches; run 'finnet classify' first", common.ErrNotFound)
		}
		batchID = batches[0].ID
	}

	batch, err := store.GetBatch(ctx, batchID)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("Batch %s not found", batchID), err)
	}

	stored, err := store.GetBatchResults(ctx, batchID)
	if err != nil {
		return err
	}

	results := make([]model.ClassificationResult, 0, len(stored))
	for _, r := range stored {
		if raw {
			results = append(results, r.ClassificationResult)
		} else {
			results = append(results, r.Effective())
		}
	}

	if output == "" {
		output = filepath.Join(cfg.Export.Dir, exportFileName(batch.CreatedAt, format))
	}

	if err := writeExport(output, format, batch.ID, time.Now(), results); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions from batch %s to %s", len(results), batch.ID, output)))
	return nil
}
