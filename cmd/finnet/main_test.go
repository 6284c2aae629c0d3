package main

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/finnet/internal/engine"
	"github.com/Veraticus/finnet/internal/pattern"
	"github.com/Veraticus/finnet/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSource(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "", want: inputSample},
		{path: "extract.csv", want: inputCSV},
		{path: "statement.OFX", want: inputOFX},
		{path: "statement.qfx", want: inputOFX},
		{path: "extract.txt", want: inputCSV},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, inferSource(tt.path))
		})
	}
}

func TestExportFileName(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "FinNet_Return_20250314.csv", exportFileName(day, formatCSV))
	assert.Equal(t, "FinNet_Return_20250314.xlsx", exportFileName(day, formatXLSX))
	assert.Equal(t, "FinNet_Return_20250314.xml", exportFileName(day, formatXML))
}

func TestParseBusinessDate(t *testing.T) {
	day, err := parseBusinessDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, 14, day.Day())

	_, err = parseBusinessDate("14/03/2025")
	assert.Error(t, err)
}

func TestReadRecords(t *testing.T) {
	records, source, err := readRecords("", "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, inputSample, source)
	assert.Len(t, records, 4)

	_, _, err = readRecords(inputCSV, "", time.Now())
	assert.Error(t, err)

	_, _, err = readRecords("parquet", "x.parquet", time.Now())
	assert.Error(t, err)
}

func TestWriteExport_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")

	err := writeExport(path, "pdf", "", time.Now(), nil)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "failed export must not leave a partial file")
}

func TestDailyJob(t *testing.T) {
	store, err := storage.NewSQLiteStorage(storage.MemoryPath, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate(context.Background()))

	waterfall, err := engine.New(engine.DefaultConfig(), engine.NewMockAdvisor(), nil)
	require.NoError(t, err)

	dir := t.TempDir()
	day := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	job := &dailyJob{
		waterfall: waterfall,
		store:     store,
		now:       func() time.Time { return day },
		logger:    testLogger(),
		exportDir: dir,
	}

	batch, path, err := job.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, batch.RecordCount)
	assert.Equal(t, "schedule:sample", batch.Source)
	assert.Equal(t, filepath.Join(dir, "FinNet_Return_20250314.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	codes := []string{rows[1][4], rows[2][4], rows[3][4], rows[4][4]}
	assert.Equal(t, []string{"N/A", "2210", "N/A", "4010"}, codes)

	stored, err := store.GetBatchResults(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRuleRows(t *testing.T) {
	m, err := pattern.NewMatcher([]pattern.Rule{
		{Name: "atm", AllOf: []string{"atm", " withdrawal "}, Category: "Cash Withdrawal"},
		{Name: "cloud", AnyOf: []string{"aws"}, Pattern: `\bINVOICE\b`, Category: "Software/IT Services", RegulatoryCode: "1215"},
	})
	require.NoError(t, err)

	rows := ruleRows(m)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "atm", "all of ATM, WITHDRAWAL", "Cash Withdrawal", "N/A", ""}, rows[0])
	assert.Equal(t, "any of AWS; /\\bINVOICE\\b/", rows[1][2])
	assert.Equal(t, "1215", rows[1][4])
}
