package domain

type RebalanceAction string

const (
	RebalanceAction_Rebought RebalanceAction = "Rebought"
	RebalanceAction_Sold     RebalanceAction = "Sold"
)

type SoldInProfit string

const (
	SoldInProfit_Yes           SoldInProfit = "Yes"
	SoldInProfit_No            SoldInProfit = "No"
	SoldInProfit_NotApplicable SoldInProfit = "NotApplicable"
)

// DriftReportRow describes how one held ticker moved from purchase to one
// year later, and its fate at the next rebalance. Rows are regenerated each
// simulated year.
type DriftReportRow struct {
	Ticker        string          `json:"ticker" csv:"ticker"`
	BuyPrice      float64         `json:"buyPrice" csv:"buy_price"`
	Shares        float64         `json:"shares" csv:"shares"`
	WeightAtBuy   float64         `json:"weightAtBuy" csv:"weight_at_buy"`
	PriceAfter1y  float64         `json:"priceAfter1y" csv:"price_after_1y"`
	WeightAfter1y float64         `json:"weightAfter1y" csv:"weight_after_1y"`
	WeightChange  float64         `json:"weightChange" csv:"weight_change"`
	Action        RebalanceAction `json:"rebalanceAction" csv:"rebalance_action"`
	SoldInProfit  SoldInProfit    `json:"soldInProfit" csv:"sold_in_profit"`
	// SellPrice is set only when the ticker is sold at the next rebalance.
	SellPrice *float64 `json:"sellPrice,omitempty" csv:"sell_price"`
}
