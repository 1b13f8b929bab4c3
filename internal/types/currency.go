package types

import "strings"

// CurrencyConfig holds display and rounding configuration for a currency
type CurrencyConfig struct {
	Symbol    string
	Precision int32
}

var currencyConfigs = map[string]CurrencyConfig{
	"usd": {Symbol: "$", Precision: 2},
	"eur": {Symbol: "€", Precision: 2},
	"gbp": {Symbol: "£", Precision: 2},
	"inr": {Symbol: "₹", Precision: 2},
	"jpy": {Symbol: "¥", Precision: 0},
	"krw": {Symbol: "₩", Precision: 0},
	"bhd": {Symbol: ".د.ب", Precision: 3},
	"kwd": {Symbol: "د.ك", Precision: 3},
}

var defaultCurrencyConfig = CurrencyConfig{Symbol: "$", Precision: 2}

// GetCurrencyConfig returns the config for a currency code, falling back to
// a two decimal default for unknown codes
func GetCurrencyConfig(currency string) CurrencyConfig {
	if config, ok := currencyConfigs[strings.ToLower(currency)]; ok {
		return config
	}
	return defaultCurrencyConfig
}

// GetCurrencyPrecision returns the rounding precision for a currency code
func GetCurrencyPrecision(currency string) int32 {
	return GetCurrencyConfig(currency).Precision
}

// GetCurrencySymbol returns the display symbol for a currency code
func GetCurrencySymbol(currency string) string {
	return GetCurrencyConfig(currency).Symbol
}

// IsMatchingCurrency compares two currency codes case insensitively
func IsMatchingCurrency(a, b string) bool {
	return strings.EqualFold(a, b)
}
