package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"driftbacktest/internal/domain"
)

// ErrPriceUnavailable signals that no close exists for the symbol within the
// lookup window. Callers recover by dropping the affected row, never by
// retrying the same call.
var ErrPriceUnavailable = errors.New("price unavailable")

// PriceLookaheadDays bounds the on-or-after lookup window, in calendar days.
const PriceLookaheadDays = 7

// PriceRepository resolves a symbol and anchor date to the first close on or
// after the anchor, within the lookahead window. Lookups are read-only and
// idempotent, so callers are free to cache, batch, or retry them.
type PriceRepository interface {
	Get(symbol string, date time.Time) (float64, error)
	Add(prices []domain.AssetPrice) error
}

type PriceCache map[string]map[string]float64

type priceRepositoryHandler struct {
	Db        *sql.DB
	Cache     PriceCache
	ReadMutex *sync.RWMutex
}

const createPriceTableQuery = `CREATE TABLE IF NOT EXISTS adjusted_price (
	symbol TEXT NOT NULL,
	date TEXT NOT NULL,
	price REAL NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (symbol, date)
)`

func NewPriceRepository(db *sql.DB) (PriceRepository, error) {
	if _, err := db.Exec(createPriceTableQuery); err != nil {
		return nil, fmt.Errorf("failed to create price table: %w", err)
	}
	return &priceRepositoryHandler{
		Db:        db,
		Cache:     make(PriceCache),
		ReadMutex: &sync.RWMutex{},
	}, nil
}

func (h *priceRepositoryHandler) getFromCache(symbol string, date time.Time) *float64 {
	h.ReadMutex.RLock()
	defer h.ReadMutex.RUnlock()
	if _, ok := h.Cache[symbol]; ok {
		if price, ok := h.Cache[symbol][date.Format(time.DateOnly)]; ok {
			return &price
		}
	}
	return nil
}

func (h *priceRepositoryHandler) addToCache(symbol string, date time.Time, price float64) {
	h.ReadMutex.Lock()
	defer h.ReadMutex.Unlock()
	if _, ok := h.Cache[symbol]; !ok {
		h.Cache[symbol] = map[string]float64{}
	}
	h.Cache[symbol][date.Format(time.DateOnly)] = price
}

func (h *priceRepositoryHandler) Get(symbol string, date time.Time) (float64, error) {
	if cached := h.getFromCache(symbol, date); cached != nil {
		return *cached, nil
	}

	// range forward so weekends and holidays resolve to the next close
	minDate := date.Format(time.DateOnly)
	maxDate := date.AddDate(0, 0, PriceLookaheadDays).Format(time.DateOnly)

	row := h.Db.QueryRow(
		`SELECT price FROM adjusted_price
		WHERE symbol = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC LIMIT 1`,
		symbol, minDate, maxDate,
	)

	var price float64
	err := row.Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no close for %s between %s and %s: %w", symbol, minDate, maxDate, ErrPriceUnavailable)
	} else if err != nil {
		return 0, fmt.Errorf("failed to query price for %s on %s: %w", symbol, minDate, err)
	}

	h.addToCache(symbol, date, price)
	return price, nil
}

func (h *priceRepositoryHandler) Add(prices []domain.AssetPrice) error {
	tx, err := h.Db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin price insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO adjusted_price (symbol, date, price, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET price = excluded.price`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare price insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		_, err = stmt.Exec(
			p.Symbol,
			p.Date.Format(time.DateOnly),
			p.Price,
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert price for %s on %v: %w", p.Symbol, p.Date, err)
		}
	}

	return tx.Commit()
}
