package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"driftbacktest/internal/app"
	"driftbacktest/internal/calculator"
	"driftbacktest/internal/logger"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

type capitalHistoryRow struct {
	Year         int             `csv:"year"`
	CapitalStart decimal.Decimal `csv:"capital_start"`
	CapitalEnd   decimal.Decimal `csv:"capital_end"`
}

// ExportResults writes the run's capital history, per-year drift reports,
// and metrics summary into dir. Returns the paths written.
func ExportResults(
	ctx context.Context,
	dir string,
	result *app.SimulationResult,
	summary *calculator.MetricsSummary,
) ([]string, error) {
	log := logger.FromContext(ctx)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create results dir: %w", err)
	}

	written := []string{}

	historyRows := []capitalHistoryRow{}
	for _, record := range result.History {
		historyRows = append(historyRows, capitalHistoryRow{
			Year:         record.Year,
			CapitalStart: decimal.NewFromFloat(record.CapitalStart).Round(2),
			CapitalEnd:   decimal.NewFromFloat(record.CapitalEnd).Round(2),
		})
	}
	historyPath := filepath.Join(dir, "capital_history.csv")
	if err := writeCsv(historyPath, &historyRows); err != nil {
		return nil, err
	}
	written = append(written, historyPath)

	years := []int{}
	for year := range result.ReportsByYear {
		years = append(years, year)
	}
	sort.Ints(years)
	for _, year := range years {
		report := result.ReportsByYear[year]
		reportPath := filepath.Join(dir, fmt.Sprintf("drift_report_%d.csv", year))
		if err := writeCsv(reportPath, &report); err != nil {
			return nil, err
		}
		written = append(written, reportPath)
	}

	metricsPath := filepath.Join(dir, "metrics.json")
	metricsBytes, err := json.MarshalIndent(summary, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	if err := os.WriteFile(metricsPath, metricsBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write metrics: %w", err)
	}
	written = append(written, metricsPath)

	log.Infow("results exported",
		"dir", dir,
		"files", len(written),
	)
	return written, nil
}

func writeCsv(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
