package repository

import (
	"fmt"
	"sync"
	"time"

	"driftbacktest/internal/domain"
)

// MemoryPriceRepository keeps prices in process memory. It backs tests and
// ad-hoc runs where no price database is attached, with the same on-or-after
// window semantics as the SQL-backed repository.
type MemoryPriceRepository struct {
	mu     sync.RWMutex
	prices map[string]map[string]float64
}

func NewMemoryPriceRepository() *MemoryPriceRepository {
	return &MemoryPriceRepository{
		prices: map[string]map[string]float64{},
	}
}

func (r *MemoryPriceRepository) Set(symbol string, date time.Time, price float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prices[symbol]; !ok {
		r.prices[symbol] = map[string]float64{}
	}
	r.prices[symbol][date.Format(time.DateOnly)] = price
}

func (r *MemoryPriceRepository) Add(prices []domain.AssetPrice) error {
	for _, p := range prices {
		r.Set(p.Symbol, p.Date, p.Price)
	}
	return nil
}

func (r *MemoryPriceRepository) Get(symbol string, date time.Time) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bySymbol, ok := r.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no prices loaded for %s: %w", symbol, ErrPriceUnavailable)
	}
	for i := 0; i <= PriceLookaheadDays; i++ {
		if price, ok := bySymbol[date.AddDate(0, 0, i).Format(time.DateOnly)]; ok {
			return price, nil
		}
	}
	return 0, fmt.Errorf("no close for %s on or after %s: %w", symbol, date.Format(time.DateOnly), ErrPriceUnavailable)
}
