package calculator

import (
	"testing"

	"driftbacktest/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_CalculateMetrics(t *testing.T) {
	t.Run("single year reduces to simple return", func(t *testing.T) {
		summary, err := CalculateMetrics(domain.CapitalHistory{
			{Year: 2020, CapitalStart: 10000, CapitalEnd: 12200},
		})
		require.NoError(t, err)

		require.Equal(t, 22.0, summary.YearlyCAGR[2020])
		require.Equal(t, 22.0, summary.OverallGrowth)
		require.Equal(t, 2200.0, summary.TotalProfit)
		require.Equal(t, 0.0, summary.MaxDrawdown)
		require.Nil(t, summary.SharpeRatio)
	})

	t.Run("drawdown over running peak", func(t *testing.T) {
		summary, err := CalculateMetrics(domain.CapitalHistory{
			{Year: 2020, CapitalStart: 80000, CapitalEnd: 100000},
			{Year: 2021, CapitalStart: 100000, CapitalEnd: 120000},
			{Year: 2022, CapitalStart: 120000, CapitalEnd: 90000},
		})
		require.NoError(t, err)

		require.Equal(t, 25.0, summary.MaxDrawdown)
		require.Equal(t, 2022, summary.MaxDrawdownYear)
	})

	t.Run("drawdown tie keeps the first year", func(t *testing.T) {
		summary, err := CalculateMetrics(domain.CapitalHistory{
			{Year: 2020, CapitalStart: 100, CapitalEnd: 100},
			{Year: 2021, CapitalStart: 100, CapitalEnd: 50},
			{Year: 2022, CapitalStart: 50, CapitalEnd: 50},
		})
		require.NoError(t, err)

		require.Equal(t, 50.0, summary.MaxDrawdown)
		require.Equal(t, 2021, summary.MaxDrawdownYear)
	})

	t.Run("sharpe from year-over-year changes of ending capital", func(t *testing.T) {
		summary, err := CalculateMetrics(domain.CapitalHistory{
			{Year: 2020, CapitalStart: 80000, CapitalEnd: 100000},
			{Year: 2021, CapitalStart: 100000, CapitalEnd: 120000},
			{Year: 2022, CapitalStart: 120000, CapitalEnd: 90000},
		})
		require.NoError(t, err)

		// returns are [0.2, -0.25]: mean -0.025, sample stdev ~0.3182
		require.NotNil(t, summary.SharpeRatio)
		require.Equal(t, -0.08, *summary.SharpeRatio)
	})

	t.Run("sharpe under-determined below three records", func(t *testing.T) {
		summary, err := CalculateMetrics(domain.CapitalHistory{
			{Year: 2020, CapitalStart: 100, CapitalEnd: 110},
			{Year: 2021, CapitalStart: 110, CapitalEnd: 121},
		})
		require.NoError(t, err)
		require.Nil(t, summary.SharpeRatio)
	})

	t.Run("empty history errors", func(t *testing.T) {
		_, err := CalculateMetrics(domain.CapitalHistory{})
		require.Error(t, err)
	})
}
