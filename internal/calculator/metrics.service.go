package calculator

import (
	"fmt"
	"math"

	"driftbacktest/internal/domain"
	"driftbacktest/internal/util"

	"github.com/montanaflynn/stats"
)

// MetricsSummary holds the risk/return numbers derived from a finished
// capital history. SharpeRatio is nil when fewer than 2 return observations
// exist to compute it from.
type MetricsSummary struct {
	YearlyCAGR      map[int]float64 `json:"yearlyCagrPercent"`
	OverallGrowth   float64         `json:"overallGrowthPercent"`
	MaxDrawdown     float64         `json:"maxDrawdownPercent"`
	MaxDrawdownYear int             `json:"maxDrawdownYear"`
	SharpeRatio     *float64        `json:"sharpeRatio"`
	TotalProfit     float64         `json:"totalProfit"`
}

// CalculateMetrics consumes the completed capital history, in chronological
// order. Since each record spans exactly one year, CAGR reduces to the
// simple annual return and the Sharpe ratio needs no annualization.
func CalculateMetrics(history domain.CapitalHistory) (*MetricsSummary, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("cannot calculate metrics on empty capital history")
	}

	yearlyCAGR := map[int]float64{}
	for _, record := range history {
		yearlyCAGR[record.Year] = round2((record.CapitalEnd/record.CapitalStart - 1) * 100)
	}

	first := history[0]
	last := history[len(history)-1]
	overallGrowth := round2((last.CapitalEnd/first.CapitalStart - 1) * 100)
	totalProfit := round2(last.CapitalEnd - first.CapitalStart)

	maxDrawdown, maxDrawdownYear := maxDrawdownOverPeak(history)

	summary := &MetricsSummary{
		YearlyCAGR:      yearlyCAGR,
		OverallGrowth:   overallGrowth,
		MaxDrawdown:     round2(maxDrawdown * 100),
		MaxDrawdownYear: maxDrawdownYear,
		TotalProfit:     totalProfit,
	}

	returns := capitalReturns(history)
	if len(returns) >= 2 {
		mean, err := stats.Mean(returns)
		if err != nil {
			return nil, fmt.Errorf("failed to compute mean return: %w", err)
		}
		stdev, err := stats.StandardDeviationSample(returns)
		if err != nil {
			return nil, fmt.Errorf("failed to compute return stdev: %w", err)
		}
		if stdev != 0 && !math.IsNaN(stdev) {
			summary.SharpeRatio = util.Float64Pointer(round2(mean / stdev))
		}
	}

	return summary, nil
}

// maxDrawdownOverPeak walks the running peak of year-end capital and returns
// the largest fractional decline plus the year it occurred in (first
// occurrence on ties).
func maxDrawdownOverPeak(history domain.CapitalHistory) (float64, int) {
	peak := history[0].CapitalEnd
	maxDrawdown := 0.0
	maxDrawdownYear := history[0].Year
	for _, record := range history {
		if record.CapitalEnd > peak {
			peak = record.CapitalEnd
		}
		drawdown := (peak - record.CapitalEnd) / peak
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
			maxDrawdownYear = record.Year
		}
	}
	return maxDrawdown, maxDrawdownYear
}

// capitalReturns is the year-over-year percent change of ending capital.
func capitalReturns(history domain.CapitalHistory) []float64 {
	returns := []float64{}
	for i := 1; i < len(history); i++ {
		prev := history[i-1].CapitalEnd
		returns = append(returns, (history[i].CapitalEnd-prev)/prev)
	}
	return returns
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
