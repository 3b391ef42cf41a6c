package l1_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"driftbacktest/internal/domain"
	"driftbacktest/internal/logger"
	"driftbacktest/internal/repository"
)

// ValuationService revalues existing share lots at a later date. Positions
// whose price cannot be resolved are excluded from the sum with a warning -
// their value is lost from the total, not redistributed to survivors.
type ValuationService interface {
	PortfolioValue(ctx context.Context, positions domain.Positions, date time.Time) (float64, error)
}

func NewValuationService(priceRepository repository.PriceRepository) ValuationService {
	return valuationServiceHandler{
		PriceRepository: priceRepository,
	}
}

type valuationServiceHandler struct {
	PriceRepository repository.PriceRepository
}

func (h valuationServiceHandler) PortfolioValue(ctx context.Context, positions domain.Positions, date time.Time) (float64, error) {
	log := logger.FromContext(ctx)

	totalValue := 0.0
	valued := 0
	for _, position := range positions {
		price, err := h.PriceRepository.Get(position.Ticker, date)
		if errors.Is(err, repository.ErrPriceUnavailable) {
			log.Warnw("excluding position with no price at valuation date",
				"ticker", position.Ticker,
				"date", date.Format(time.DateOnly),
			)
			continue
		} else if err != nil {
			return 0, fmt.Errorf("failed to resolve valuation price for %s: %w", position.Ticker, err)
		}
		totalValue += position.ValueAt(price)
		valued++
	}

	log.Infow("portfolio valued",
		"date", date.Format(time.DateOnly),
		"totalValue", totalValue,
		"positions", valued,
	)
	return totalValue, nil
}
