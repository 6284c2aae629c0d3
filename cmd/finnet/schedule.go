package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Veraticus/finnet/internal/cli"
	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/engine"
	"github.com/Veraticus/finnet/internal/model"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily FinNet return on a cron schedule",
		Long: `Classify the day's extract, save it for review and write the FinNet return
on the schedule given by schedule.cron (standard 5-field cron expression).

The extract is read from schedule.input; without one the sample batch is used.`,
		RunE: runSchedule,
	}

	cmd.Flags().String("cron", "", "cron expression (default: schedule.cron)")
	cmd.Flags().Bool("once", false, "run the job once now and exit")
	cmd.Flags().Bool("dry-run", false, "use the offline advisory classifier")

	return cmd
}

// dailyJob classifies one extract, saves it and writes the FinNet return.
type dailyJob struct {
	waterfall *engine.Waterfall
	store     batchSaver
	now       func() time.Time
	logger    *slog.Logger
	input     string
	exportDir string
}

type batchSaver interface {
	SaveBatch(ctx context.Context, source string, createdAt time.Time, results []model.ClassificationResult) (model.Batch, error)
}

func (j *dailyJob) run(ctx context.Context) (model.Batch, string, error) {
	now := j.now()

	records, source, err := readRecords("", j.input, now)
	if err != nil {
		return model.Batch{}, "", err
	}
	if len(records) == 0 {
		return model.Batch{}, "", common.ErrNoTransactions
	}

	start := time.Now()
	results, err := j.waterfall.ClassifyBatch(ctx, records, engine.BatchOptions{})
	if err != nil {
		return model.Batch{}, "", fmt.Errorf("failed to classify batch: %w", err)
	}
	engine.LogSummary(j.logger, engine.Summarize(results, time.Since(start)))

	batch, err := j.store.SaveBatch(ctx, "schedule:"+source, now, results)
	if err != nil {
		return model.Batch{}, "", fmt.Errorf("failed to save batch: %w", err)
	}

	path := filepath.Join(j.exportDir, exportFileName(now, formatCSV))
	if err := writeExport(path, formatCSV, batch.ID, now, results); err != nil {
		return batch, "", err
	}

	j.logger.Info("Daily FinNet return written",
		"batch_id", batch.ID,
		"path", path,
		"manual_review", batch.ManualReviewCount)
	return batch, path, nil
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	spec, _ := cmd.Flags().GetString("cron")
	once, _ := cmd.Flags().GetBool("once")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, ref, err := loadConfig()
	if err != nil {
		return err
	}
	if spec == "" {
		spec = cfg.Schedule.Cron
	}

	waterfall, err := buildWaterfall(cfg, ref, advisorOptions{DryRun: dryRun})
	if err != nil {
		return err
	}

	store, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	job := &dailyJob{
		waterfall: waterfall,
		store:     store,
		now:       time.Now,
		logger:    slog.Default(),
		input:     cfg.Schedule.Input,
		exportDir: cfg.Export.Dir,
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Scheduler stopped.")
	ctx, stop := interrupts.HandleInterrupts(cmd.Context())
	defer stop()

	if once {
		_, path, err := job.run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("FinNet return written to "+path))
		return nil
	}

	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("Invalid cron expression %q", spec), err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	c.Schedule(sched, cron.FuncJob(func() {
		if _, _, err := job.run(ctx); err != nil {
			slog.Error("Scheduled run failed", "error", err)
		}
	}))
	c.Start()

	slog.Info("Scheduler started", "cron", spec, "next", sched.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
