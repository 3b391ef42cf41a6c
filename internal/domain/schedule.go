package domain

import (
	"sort"
	"time"
)

// ScheduleEntry is one row of the rebalance schedule: allocate Weight of the
// portfolio to Ticker at the rebalance date. Weights within a date cohort are
// expected to sum to 1 after normalization.
type ScheduleEntry struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

type Schedule []ScheduleEntry

// Years returns the distinct rebalance years, ascending.
func (s Schedule) Years() []int {
	seen := map[int]bool{}
	years := []int{}
	for _, entry := range s {
		if !seen[entry.Date.Year()] {
			seen[entry.Date.Year()] = true
			years = append(years, entry.Date.Year())
		}
	}
	sort.Ints(years)
	return years
}

// ForYear returns the entries whose rebalance date falls in the given year,
// preserving order.
func (s Schedule) ForYear(year int) Schedule {
	out := Schedule{}
	for _, entry := range s {
		if entry.Date.Year() == year {
			out = append(out, entry)
		}
	}
	return out
}

// TickerSet returns the set of tickers present in the schedule.
func (s Schedule) TickerSet() map[string]bool {
	set := map[string]bool{}
	for _, entry := range s {
		set[entry.Ticker] = true
	}
	return set
}

// NormalizeWeights scales each date cohort's weights to sum to 1. It returns
// a new schedule and leaves the receiver untouched. Cohorts with a zero
// weight sum are left as-is; callers validate those upstream.
func (s Schedule) NormalizeWeights() Schedule {
	sumByDate := map[time.Time]float64{}
	for _, entry := range s {
		sumByDate[entry.Date] += entry.Weight
	}

	out := make(Schedule, 0, len(s))
	for _, entry := range s {
		normalized := entry
		if sum := sumByDate[entry.Date]; sum != 0 {
			normalized.Weight = entry.Weight / sum
		}
		out = append(out, normalized)
	}
	return out
}

// Sorted returns a new schedule ordered by (date, ticker).
func (s Schedule) Sorted() Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out
}
