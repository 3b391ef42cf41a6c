package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a concrete share lot bought at a rebalance date.
type Position struct {
	Ticker   string    `json:"ticker"`
	BuyDate  time.Time `json:"buyDate"`
	BuyPrice float64   `json:"buyPrice"`
	Shares   float64   `json:"shares"`
	// ExactShares carries the allocation arithmetic without float error, for
	// exports and reconciliation. Shares is what the simulation math uses.
	ExactShares decimal.Decimal `json:"exactShares"`
	WeightAtBuy float64         `json:"weightAtBuy"`
}

// ValueAtBuy reproduces the capital allocated to the position.
func (p Position) ValueAtBuy() float64 {
	return p.Shares * p.BuyPrice
}

// ValueAt revalues the lot at the given price.
func (p Position) ValueAt(price float64) float64 {
	return p.Shares * price
}

type Positions []Position

func (ps Positions) Tickers() []string {
	tickers := []string{}
	for _, p := range ps {
		tickers = append(tickers, p.Ticker)
	}
	return tickers
}

func (ps Positions) WeightSum() float64 {
	sum := 0.0
	for _, p := range ps {
		sum += p.WeightAtBuy
	}
	return sum
}

// RenormalizeWeights returns a copy of the positions with WeightAtBuy scaled
// to sum to 1. Share quantities are untouched: shares were bought with the
// pre-drop weights and renormalization only restates the weights of the
// survivors.
func (ps Positions) RenormalizeWeights() Positions {
	sum := ps.WeightSum()
	out := make(Positions, 0, len(ps))
	for _, p := range ps {
		renormalized := p
		if sum != 0 {
			renormalized.WeightAtBuy = p.WeightAtBuy / sum
		}
		out = append(out, renormalized)
	}
	return out
}
