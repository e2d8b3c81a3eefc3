package models

// currencySymbols maps supported currency codes to display symbols.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"AUD": "$",
	"CAD": "$",
}

// DefaultCurrency is the currency used until a parent changes it.
const DefaultCurrency = "USD"

// CurrencySymbol returns the display symbol for a currency code,
// falling back to "$" for unknown codes.
func CurrencySymbol(code string) string {
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return "$"
}

// ValidCurrency reports whether code is a supported currency.
func ValidCurrency(code string) bool {
	_, ok := currencySymbols[code]
	return ok
}

// CurrencyCodes returns the supported currency codes.
func CurrencyCodes() []string {
	return []string{"USD", "EUR", "GBP", "JPY", "AUD", "CAD"}
}
