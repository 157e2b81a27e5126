package currency

import (
	"context"

	"github.com/piresc/kasbot/internal/pkg/models"
)

// Converter defines the interface for currency conversion
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) (models.ConversionResult, error)
}

// RateCache defines the interface for cached exchange rates
type RateCache interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
	SetRate(ctx context.Context, from, to string, rate float64) error
	// GetLastRate returns the last rate ever stored for the pair,
	// regardless of cache expiry.
	GetLastRate(ctx context.Context, from, to string) (float64, error)
}

// RateProvider defines the interface for an external exchange rate source
type RateProvider interface {
	Name() string
	FetchRate(ctx context.Context, from, to string) (float64, error)
}

// SupportedCurrencies is the set of ISO codes the bot understands
var SupportedCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
	"BRL": true,
	"IDR": true,
	"JPY": true,
	"CNY": true,
	"INR": true,
	"KRW": true,
	"RUB": true,
	"CAD": true,
	"AUD": true,
	"CHF": true,
	"SGD": true,
	"MXN": true,
}

// IsSupported reports whether code is a known ISO currency code
func IsSupported(code string) bool {
	return SupportedCurrencies[code]
}

// CurrencySymbol maps a textual symbol to its ISO code. Multi-rune
// symbols come first so prefix matching picks the longest cue.
type CurrencySymbol struct {
	Symbol string
	Code   string
}

// Symbols lists currency cues in match-priority order ("R$" must win
// over "$").
var Symbols = []CurrencySymbol{
	{Symbol: "R$", Code: "BRL"},
	{Symbol: "Rp", Code: "IDR"},
	{Symbol: "US$", Code: "USD"},
	{Symbol: "S$", Code: "SGD"},
	{Symbol: "$", Code: "USD"},
	{Symbol: "€", Code: "EUR"},
	{Symbol: "£", Code: "GBP"},
	{Symbol: "¥", Code: "JPY"},
	{Symbol: "₹", Code: "INR"},
	{Symbol: "₩", Code: "KRW"},
	{Symbol: "₽", Code: "RUB"},
}
