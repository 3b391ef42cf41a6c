package l2_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"driftbacktest/internal/domain"
	"driftbacktest/internal/logger"
	"driftbacktest/internal/repository"
)

type YearlyDriftReportInput struct {
	Positions domain.Positions
	// Capital is the amount the positions were bought with; start weights are
	// restated against it.
	Capital       float64
	Year          int
	ValuationDate time.Time
	// NextYearTickers decides each ticker's fate at the rebalance: present
	// means rebought, absent means sold. Empty on the final simulated year.
	NextYearTickers map[string]bool
}

// DriftService compares start-of-period and end-of-period position values
// and classifies each ticker's fate at the next rebalance. Rows keep the
// position order they were bought in.
type DriftService interface {
	YearlyDriftReport(ctx context.Context, in YearlyDriftReportInput) ([]domain.DriftReportRow, error)
}

func NewDriftService(priceRepository repository.PriceRepository) DriftService {
	return driftServiceHandler{
		PriceRepository: priceRepository,
	}
}

type driftServiceHandler struct {
	PriceRepository repository.PriceRepository
}

func (h driftServiceHandler) YearlyDriftReport(ctx context.Context, in YearlyDriftReportInput) ([]domain.DriftReportRow, error) {
	log := logger.FromContext(ctx)

	if in.Capital <= 0 {
		return nil, fmt.Errorf("cannot report drift against capital %f", in.Capital)
	}

	// resolve end prices first; rows without one drop before any arithmetic
	retained := domain.Positions{}
	endPrices := []float64{}
	totalEndValue := 0.0
	for _, position := range in.Positions {
		price, err := h.PriceRepository.Get(position.Ticker, in.ValuationDate)
		if errors.Is(err, repository.ErrPriceUnavailable) {
			log.Warnw("dropping drift row with no price at valuation date",
				"ticker", position.Ticker,
				"date", in.ValuationDate.Format(time.DateOnly),
			)
			continue
		} else if err != nil {
			return nil, fmt.Errorf("failed to resolve drift price for %s: %w", position.Ticker, err)
		}
		retained = append(retained, position)
		endPrices = append(endPrices, price)
		totalEndValue += position.ValueAt(price)
	}

	rows := []domain.DriftReportRow{}
	for i, position := range retained {
		endPrice := endPrices[i]
		weightStart := position.ValueAtBuy() / in.Capital

		weightEnd := 0.0
		if totalEndValue > 0 {
			weightEnd = position.ValueAt(endPrice) / totalEndValue
		}

		row := domain.DriftReportRow{
			Ticker:        position.Ticker,
			BuyPrice:      position.BuyPrice,
			Shares:        position.Shares,
			WeightAtBuy:   weightStart,
			PriceAfter1y:  endPrice,
			WeightAfter1y: weightEnd,
			WeightChange:  weightEnd - weightStart,
			Action:        domain.RebalanceAction_Sold,
			SoldInProfit:  domain.SoldInProfit_NotApplicable,
		}
		if in.NextYearTickers[position.Ticker] {
			row.Action = domain.RebalanceAction_Rebought
		} else {
			sellPrice := endPrice
			row.SellPrice = &sellPrice
			if endPrice > position.BuyPrice {
				row.SoldInProfit = domain.SoldInProfit_Yes
			} else {
				row.SoldInProfit = domain.SoldInProfit_No
			}
		}
		rows = append(rows, row)
	}

	log.Infow("drift report prepared",
		"year", in.Year,
		"capitalStart", in.Capital,
		"totalEndValue", totalEndValue,
		"rows", len(rows),
	)
	return rows, nil
}
