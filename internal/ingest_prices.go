package internal

import (
	"context"
	"fmt"
	"time"

	"driftbacktest/internal/domain"
	"driftbacktest/internal/logger"
	"driftbacktest/internal/repository"
	"driftbacktest/internal/util"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// IngestPrices pulls daily adjusted closes for one symbol from Yahoo and
// upserts them into the price store.
func IngestPrices(
	ctx context.Context,
	symbol string,
	start, end time.Time,
	priceRepository repository.PriceRepository,
) error {
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	prices := []domain.AssetPrice{}
	for iter.Next() {
		prices = append(prices, domain.AssetPrice{
			Symbol: symbol,
			Date:   time.Unix(int64(iter.Bar().Timestamp), 0).UTC(),
			Price:  iter.Bar().AdjClose.InexactFloat64(),
		})
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}

	if err := priceRepository.Add(prices); err != nil {
		return err
	}

	logger.FromContext(ctx).Infow("ingested prices",
		"symbol", symbol,
		"bars", len(prices),
	)
	return nil
}

// IngestSchedulePrices fetches history for every ticker the schedule touches,
// spanning the first rebalance date through the last forward valuation date
// plus the lookup window. Per-symbol failures are collected, not fatal, so a
// single delisted ticker does not block the rest of the store.
func IngestSchedulePrices(
	ctx context.Context,
	schedule domain.Schedule,
	priceRepository repository.PriceRepository,
) error {
	log := logger.FromContext(ctx)

	years := schedule.Years()
	if len(years) == 0 {
		return fmt.Errorf("no symbols to ingest prices for")
	}
	start := util.NewDate(years[0], 1, 1)
	end := util.NewDate(years[len(years)-1]+1, 7, 1).AddDate(0, 0, repository.PriceLookaheadDays)

	errors := []error{}
	symbols := 0
	for symbol := range schedule.TickerSet() {
		symbols++
		err := IngestPrices(ctx, symbol, start, end, priceRepository)
		if err != nil {
			err = fmt.Errorf("failed to ingest historical prices for %s: %w", symbol, err)
			log.Warn(err)
			errors = append(errors, err)
		}
	}

	if len(errors) == symbols {
		return fmt.Errorf("failed to ingest prices for all %d symbols. first err: %w", symbols, errors[0])
	}
	return nil
}
