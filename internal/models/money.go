package models

import "github.com/shopspring/decimal"

const CurrencySymbol = "฿"

// FormatMoney renders whole currency units with two decimals, e.g. ฿1250.00.
func FormatMoney(amount int64) string {
	return CurrencySymbol + decimal.NewFromInt(amount).StringFixed(2)
}
