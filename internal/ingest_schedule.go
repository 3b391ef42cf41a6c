package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"driftbacktest/internal/domain"
	"driftbacktest/internal/logger"
	"driftbacktest/internal/repository"

	"github.com/gocarina/gocsv"
)

// DataValidationError means the schedule file is missing required fields or
// carries malformed values. It aborts the run before simulation starts.
type DataValidationError struct {
	Reason string
}

func (e DataValidationError) Error() string {
	return fmt.Sprintf("invalid schedule: %s", e.Reason)
}

type scheduleRow struct {
	Ticker string `csv:"ticker"`
	Date   string `csv:"date"`
	Weight string `csv:"weight"`
}

// LoadSchedule reads a rebalance schedule CSV (columns ticker, date, weight),
// validates it, normalizes weights per date cohort, and sorts rows by
// (date, ticker).
func LoadSchedule(ctx context.Context, path string) (domain.Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open schedule file: %w", err)
	}
	defer f.Close()

	rows := []scheduleRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, DataValidationError{Reason: err.Error()}
	}
	if len(rows) == 0 {
		return nil, DataValidationError{Reason: "schedule has no rows"}
	}

	schedule := domain.Schedule{}
	for i, row := range rows {
		if row.Ticker == "" {
			return nil, DataValidationError{Reason: fmt.Sprintf("row %d has no ticker", i+1)}
		}
		date, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			return nil, DataValidationError{Reason: fmt.Sprintf("row %d has unparseable date %q", i+1, row.Date)}
		}
		var weight float64
		if _, err := fmt.Sscanf(row.Weight, "%f", &weight); err != nil {
			return nil, DataValidationError{Reason: fmt.Sprintf("row %d has unparseable weight %q", i+1, row.Weight)}
		}
		if weight < 0 {
			return nil, DataValidationError{Reason: fmt.Sprintf("row %d has negative weight %f", i+1, weight)}
		}
		schedule = append(schedule, domain.ScheduleEntry{
			Ticker: row.Ticker,
			Date:   date,
			Weight: weight,
		})
	}

	sumByDate := map[time.Time]float64{}
	for _, entry := range schedule {
		sumByDate[entry.Date] += entry.Weight
	}
	for date, sum := range sumByDate {
		if sum == 0 {
			return nil, DataValidationError{
				Reason: fmt.Sprintf("weights for %s sum to zero", date.Format(time.DateOnly)),
			}
		}
	}

	schedule = schedule.NormalizeWeights().Sorted()
	logger.FromContext(ctx).Infow("schedule loaded",
		"path", path,
		"rows", len(schedule),
		"years", schedule.Years(),
	)
	return schedule, nil
}

// RemoveDelistedTickers screens out tickers the price store knows nothing
// about at their first scheduled date, before simulation starts. Weights are
// re-normalized per date afterwards.
func RemoveDelistedTickers(
	ctx context.Context,
	schedule domain.Schedule,
	priceRepository repository.PriceRepository,
) domain.Schedule {
	log := logger.FromContext(ctx)

	firstDateByTicker := map[string]time.Time{}
	for _, entry := range schedule {
		if first, ok := firstDateByTicker[entry.Ticker]; !ok || entry.Date.Before(first) {
			firstDateByTicker[entry.Ticker] = entry.Date
		}
	}

	delisted := map[string]bool{}
	for ticker, firstDate := range firstDateByTicker {
		_, err := priceRepository.Get(ticker, firstDate)
		if errors.Is(err, repository.ErrPriceUnavailable) {
			log.Warnw("ticker removed (delisted or no data)", "ticker", ticker)
			delisted[ticker] = true
		}
	}
	if len(delisted) == 0 {
		return schedule
	}

	filtered := domain.Schedule{}
	for _, entry := range schedule {
		if !delisted[entry.Ticker] {
			filtered = append(filtered, entry)
		}
	}
	log.Infow("delisted tickers removed",
		"removed", len(delisted),
		"remainingRows", len(filtered),
	)
	return filtered.NormalizeWeights()
}
