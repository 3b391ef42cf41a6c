package app

import (
	"context"
	"testing"

	"driftbacktest/internal/domain"
	"driftbacktest/internal/repository"
	l1_service "driftbacktest/internal/service/l1"
	l2_service "driftbacktest/internal/service/l2"
	"driftbacktest/internal/util"

	"github.com/stretchr/testify/require"
)

func newSimulationHandler(priceRepository repository.PriceRepository) SimulationHandler {
	return SimulationHandler{
		PositionService:  l1_service.NewPositionService(priceRepository),
		ValuationService: l1_service.NewValuationService(priceRepository),
		DriftService:     l2_service.NewDriftService(priceRepository),
	}
}

func Test_Simulate(t *testing.T) {
	ctx := context.Background()

	t.Run("chains capital across years", func(t *testing.T) {
		priceRepository := repository.NewMemoryPriceRepository()
		priceRepository.Set("A", util.NewDate(2020, 1, 1), 100)
		priceRepository.Set("B", util.NewDate(2020, 1, 1), 50)
		priceRepository.Set("A", util.NewDate(2021, 1, 1), 150)
		priceRepository.Set("A", util.NewDate(2021, 7, 1), 150)
		priceRepository.Set("B", util.NewDate(2021, 7, 1), 40)
		priceRepository.Set("A", util.NewDate(2022, 7, 1), 180)

		handler := newSimulationHandler(priceRepository)
		result, err := handler.Simulate(ctx, SimulationInput{
			Schedule: domain.Schedule{
				{Ticker: "A", Date: util.NewDate(2020, 1, 1), Weight: 0.6},
				{Ticker: "B", Date: util.NewDate(2020, 1, 1), Weight: 0.4},
				{Ticker: "A", Date: util.NewDate(2021, 1, 1), Weight: 1.0},
			},
			InitialCapital: 10000,
		})
		require.NoError(t, err)

		require.Len(t, result.History, 2)
		require.Equal(t, domain.CapitalRecord{
			Year:         2020,
			CapitalStart: 10000,
			CapitalEnd:   12200,
		}, result.History[0])

		// chain integrity: year N+1 starts with year N's ending value
		require.Equal(t, result.History[0].CapitalEnd, result.History[1].CapitalStart)
		require.InDelta(t, 14640, result.History[1].CapitalEnd, 1e-6)

		// ticker absent from the next rebalance is sold, present is rebought
		report2020 := result.ReportsByYear[2020]
		require.Len(t, report2020, 2)
		require.Equal(t, domain.RebalanceAction_Rebought, report2020[0].Action)
		require.Equal(t, domain.RebalanceAction_Sold, report2020[1].Action)

		// final year has no next rebalance: everything is sold
		report2021 := result.ReportsByYear[2021]
		require.Len(t, report2021, 1)
		require.Equal(t, domain.RebalanceAction_Sold, report2021[0].Action)
	})

	t.Run("renormalizes surviving weights after drops", func(t *testing.T) {
		priceRepository := repository.NewMemoryPriceRepository()
		priceRepository.Set("A", util.NewDate(2020, 1, 1), 100)
		priceRepository.Set("A", util.NewDate(2021, 7, 1), 110)

		handler := newSimulationHandler(priceRepository)
		result, err := handler.Simulate(ctx, SimulationInput{
			Schedule: domain.Schedule{
				{Ticker: "A", Date: util.NewDate(2020, 1, 1), Weight: 0.6},
				{Ticker: "B", Date: util.NewDate(2020, 1, 1), Weight: 0.4},
			},
			InitialCapital: 10000,
		})
		require.NoError(t, err)

		positions := result.PositionsByYear[2020]
		require.Len(t, positions, 1)
		require.InDelta(t, 1.0, positions.WeightSum(), 1e-9)
		// shares were bought with the pre-drop weight; the dropped ticker's
		// allocation is not redistributed
		require.Equal(t, 60.0, positions[0].Shares)
	})

	t.Run("aborts when a year's working set empties", func(t *testing.T) {
		priceRepository := repository.NewMemoryPriceRepository()
		priceRepository.Set("A", util.NewDate(2020, 1, 1), 100)
		priceRepository.Set("A", util.NewDate(2021, 7, 1), 110)

		handler := newSimulationHandler(priceRepository)
		result, err := handler.Simulate(ctx, SimulationInput{
			Schedule: domain.Schedule{
				{Ticker: "A", Date: util.NewDate(2020, 1, 1), Weight: 1.0},
				{Ticker: "Z", Date: util.NewDate(2021, 1, 1), Weight: 1.0},
			},
			InitialCapital: 10000,
		})

		var aborted SimulationAbortedError
		require.ErrorAs(t, err, &aborted)
		require.Equal(t, 2021, aborted.Year)
		// no partial results survive the abort
		require.Nil(t, result)
	})

	t.Run("rejects empty schedule and non-positive capital", func(t *testing.T) {
		handler := newSimulationHandler(repository.NewMemoryPriceRepository())

		_, err := handler.Simulate(ctx, SimulationInput{InitialCapital: 100})
		require.Error(t, err)

		_, err = handler.Simulate(ctx, SimulationInput{
			Schedule: domain.Schedule{
				{Ticker: "A", Date: util.NewDate(2020, 1, 1), Weight: 1.0},
			},
			InitialCapital: 0,
		})
		require.Error(t, err)
	})
}
