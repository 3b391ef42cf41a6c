package app

import (
	"context"
	"fmt"

	"driftbacktest/internal/domain"
	"driftbacktest/internal/logger"
	l1_service "driftbacktest/internal/service/l1"
	l2_service "driftbacktest/internal/service/l2"
	"driftbacktest/internal/util"

	"github.com/google/uuid"
)

// SimulationAbortedError terminates the entire run: a year whose working set
// was emptied by price drops leaves nothing to carry capital forward with.
type SimulationAbortedError struct {
	Year int
}

func (e SimulationAbortedError) Error() string {
	return fmt.Sprintf("no valid assets to simulate in year %d after removing missing prices", e.Year)
}

type SimulationHandler struct {
	PositionService  l1_service.PositionService
	ValuationService l1_service.ValuationService
	DriftService     l2_service.DriftService
}

type SimulationInput struct {
	// Schedule must carry per-date normalized weights; ingestion owns that.
	Schedule       domain.Schedule
	InitialCapital float64
}

type SimulationResult struct {
	RunID           uuid.UUID                       `json:"runId"`
	History         domain.CapitalHistory           `json:"capitalHistory"`
	ReportsByYear   map[int][]domain.DriftReportRow `json:"reportsByYear"`
	PositionsByYear map[int]domain.Positions        `json:"positionsByYear"`
}

// Simulate drives the year-by-year loop: build positions, report drift,
// value the portfolio, roll capital forward. Years run strictly in order;
// year N+1 cannot begin until year N's ending value is known.
func (h SimulationHandler) Simulate(ctx context.Context, in SimulationInput) (*SimulationResult, error) {
	log := logger.FromContext(ctx)
	profile := domain.GetProfile(ctx)

	if len(in.Schedule) == 0 {
		return nil, fmt.Errorf("cannot simulate an empty schedule")
	}
	if in.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %f", in.InitialCapital)
	}

	years := in.Schedule.Years()
	log.Infow("starting simulation",
		"years", years,
		"initialCapital", in.InitialCapital,
	)

	result := &SimulationResult{
		RunID:           uuid.New(),
		History:         domain.CapitalHistory{},
		ReportsByYear:   map[int][]domain.DriftReportRow{},
		PositionsByYear: map[int]domain.Positions{},
	}

	capital := in.InitialCapital
	for i, year := range years {
		entries := in.Schedule.ForYear(year)

		positions, dropped, err := h.PositionService.BuildPositions(ctx, entries, capital)
		if err != nil {
			return nil, fmt.Errorf("failed to build positions for year %d: %w", year, err)
		}
		if dropped > 0 {
			log.Warnw("dropped tickers with missing start prices",
				"year", year,
				"dropped", dropped,
			)
		}
		if len(positions) == 0 {
			return nil, SimulationAbortedError{Year: year}
		}
		positions = positions.RenormalizeWeights()
		profile.Add(fmt.Sprintf("positions built %d", year))

		nextYearTickers := map[string]bool{}
		if i < len(years)-1 {
			nextYearTickers = in.Schedule.ForYear(years[i+1]).TickerSet()
		}

		// the forward valuation date is fixed policy, not derived from the
		// schedule: first of July of the following year
		valuationDate := util.NewDate(year+1, 7, 1)

		report, err := h.DriftService.YearlyDriftReport(ctx, l2_service.YearlyDriftReportInput{
			Positions:       positions,
			Capital:         capital,
			Year:            year,
			ValuationDate:   valuationDate,
			NextYearTickers: nextYearTickers,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to report drift for year %d: %w", year, err)
		}
		profile.Add(fmt.Sprintf("drift reported %d", year))

		totalValue, err := h.ValuationService.PortfolioValue(ctx, positions, valuationDate)
		if err != nil {
			return nil, fmt.Errorf("failed to value portfolio for year %d: %w", year, err)
		}
		profile.Add(fmt.Sprintf("portfolio valued %d", year))

		result.ReportsByYear[year] = report
		result.PositionsByYear[year] = positions
		result.History = append(result.History, domain.CapitalRecord{
			Year:         year,
			CapitalStart: capital,
			CapitalEnd:   totalValue,
		})

		log.Infow("year simulated",
			"year", year,
			"capitalStart", capital,
			"capitalEnd", totalValue,
		)
		capital = totalValue
	}

	log.Infow("simulation completed",
		"finalCapital", capital,
		"years", len(years),
	)
	return result, nil
}
