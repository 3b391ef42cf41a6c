package util

import "github.com/shopspring/decimal"

func Float64Pointer(f float64) *float64 {
	return &f
}

func DecimalPointer(d decimal.Decimal) *decimal.Decimal {
	return &d
}
