package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/config"
	"github.com/Veraticus/finnet/internal/engine"
	"github.com/Veraticus/finnet/internal/ingest"
	"github.com/Veraticus/finnet/internal/model"
	"github.com/Veraticus/finnet/internal/report"
	"github.com/Veraticus/finnet/internal/storage"
	"github.com/spf13/viper"
)

// envKeyReplacer maps nested keys such as advisory.api_key to FINNET_ADVISORY_API_KEY.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Input sources accepted by --input.
const (
	inputSample = "sample"
	inputCSV    = "csv"
	inputOFX    = "ofx"
)

// Export formats accepted by --format.
const (
	formatCSV  = "csv"
	formatXML  = "xml"
	formatXLSX = "xlsx"
)

// loadConfig resolves runtime configuration and reference data.
func loadConfig() (*config.Config, *config.ReferenceData, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, common.NewUserError("Invalid configuration", err)
	}

	ref, err := config.LoadReferenceData(cfg.Compliance.ReferenceData)
	if err != nil {
		return nil, nil, common.NewUserError("Invalid reference data", err)
	}

	return cfg, ref, nil
}

// openStorage opens and migrates the review database.
func openStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// buildWaterfall assembles the classification engine from configuration.
func buildWaterfall(cfg *config.Config, ref *config.ReferenceData, opts advisorOptions) (*engine.Waterfall, error) {
	advisor, err := createAdvisor(cfg, ref, opts)
	if err != nil {
		return nil, err
	}

	w, err := engine.New(cfg.WaterfallConfig(ref), advisor, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create classification engine: %w", err)
	}
	return w, nil
}

// readRecords loads a batch from the given source. The source is inferred
// from the file extension when empty.
func readRecords(source, path string, day time.Time) ([]model.TransactionRecord, string, error) {
	if source == "" {
		source = inferSource(path)
	}

	switch source {
	case inputSample:
		return ingest.SampleBatch(day), inputSample, nil
	case inputCSV, inputOFX:
		if path == "" {
			return nil, "", common.NewUserError(fmt.Sprintf("--file is required for %s input", source), nil)
		}
		f, err := os.Open(path) // #nosec G304 -- operator-supplied extract
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()

		var records []model.TransactionRecord
		if source == inputCSV {
			records, err = ingest.ReadCSV(f)
		} else {
			records, err = ingest.ReadOFX(f, slog.Default())
		}
		if err != nil {
			return nil, "", common.NewUserError(fmt.Sprintf("Could not read %s", path), err)
		}
		return records, source + ":" + filepath.Base(path), nil
	default:
		return nil, "", common.NewUserError(fmt.Sprintf("Unknown input %q (use sample, csv or ofx)", source), nil)
	}
}

func inferSource(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		return inputSample
	case ".ofx", ".qfx":
		return inputOFX
	default:
		return inputCSV
	}
}

// writeExport writes results in the given format to path.
func writeExport(path, format, batchID string, generatedAt time.Time, results []model.ClassificationResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- operator-chosen output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	switch format {
	case formatCSV:
		err = report.WriteFinNetCSV(f, results)
	case formatXML:
		err = report.WriteXML(f, batchID, generatedAt, results)
	case formatXLSX:
		err = report.WriteXLSX(f, results)
	default:
		err = common.NewUserError(fmt.Sprintf("Unknown format %q (use csv, xml or xlsx)", format), nil)
	}

	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// defaultReviewer names the operator for review decisions.
func defaultReviewer() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// exportFileName names an export file for the given day and format.
func exportFileName(day time.Time, format string) string {
	name := report.FinNetFileName(day)
	if format == formatCSV {
		return name
	}
	return strings.TrimSuffix(name, ".csv") + "." + format
}
