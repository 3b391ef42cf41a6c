package l1_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"driftbacktest/internal/domain"
	"driftbacktest/internal/logger"
	"driftbacktest/internal/repository"

	"github.com/shopspring/decimal"
)

// PositionService converts schedule entries plus capital into concrete share
// lots. Entries whose buy price cannot be resolved are dropped, not fatal
// here; weights of dropped entries are NOT redistributed at this layer -
// callers renormalize the survivors if they want redistribution.
type PositionService interface {
	BuildPositions(ctx context.Context, entries domain.Schedule, capital float64) (domain.Positions, int, error)
}

func NewPositionService(priceRepository repository.PriceRepository) PositionService {
	return positionServiceHandler{
		PriceRepository: priceRepository,
	}
}

type positionServiceHandler struct {
	PriceRepository repository.PriceRepository
}

func (h positionServiceHandler) BuildPositions(ctx context.Context, entries domain.Schedule, capital float64) (domain.Positions, int, error) {
	log := logger.FromContext(ctx)

	if capital <= 0 {
		return nil, 0, fmt.Errorf("cannot build positions with capital %f", capital)
	}

	positions := domain.Positions{}
	dropped := 0
	for _, entry := range entries {
		price, err := h.PriceRepository.Get(entry.Ticker, entry.Date)
		if errors.Is(err, repository.ErrPriceUnavailable) {
			log.Warnw("dropping ticker with no buy price",
				"ticker", entry.Ticker,
				"date", entry.Date.Format(time.DateOnly),
			)
			dropped++
			continue
		} else if err != nil {
			return nil, 0, fmt.Errorf("failed to resolve buy price for %s: %w", entry.Ticker, err)
		}
		if price <= 0 {
			log.Warnw("dropping ticker with non-positive buy price",
				"ticker", entry.Ticker,
				"price", price,
			)
			dropped++
			continue
		}

		allocation := entry.Weight * capital
		positions = append(positions, domain.Position{
			Ticker:      entry.Ticker,
			BuyDate:     entry.Date,
			BuyPrice:    price,
			Shares:      allocation / price,
			ExactShares: decimal.NewFromFloat(allocation).Div(decimal.NewFromFloat(price)),
			WeightAtBuy: entry.Weight,
		})
	}

	log.Infow("built positions",
		"bought", len(positions),
		"dropped", dropped,
	)
	return positions, dropped, nil
}
