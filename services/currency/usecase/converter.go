package usecase

import (
	"context"
	"math"
	"strings"

	"github.com/piresc/kasbot/internal/pkg/logger"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/currency"
)

// ConverterUC implements currency conversion with a cached rate table
// and a provider fallback ladder. A conversion never fails outright:
// when no rate has ever been obtained the identity rate is used so the
// message pipeline is not blocked by currency trouble.
type ConverterUC struct {
	cache     currency.RateCache
	providers []currency.RateProvider
}

// NewConverterUC creates a new currency converter
func NewConverterUC(cache currency.RateCache, providers ...currency.RateProvider) *ConverterUC {
	return &ConverterUC{
		cache:     cache,
		providers: providers,
	}
}

// Convert converts amount between currencies, recording provenance
func (uc *ConverterUC) Convert(ctx context.Context, amount float64, from, to string) (models.ConversionResult, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	result := models.ConversionResult{
		OriginalAmount:   amount,
		OriginalCurrency: from,
	}

	// Same currency never touches a rate source
	if from == to || from == "" || to == "" {
		result.ConvertedAmount = round2(amount)
		result.ExchangeRate = 1.0
		return result, nil
	}

	rate := uc.lookupRate(ctx, from, to)
	result.ExchangeRate = rate
	result.ConvertedAmount = round2(amount * rate)

	return result, nil
}

// lookupRate walks the rate ladder: fresh cache, providers in order,
// stale cache, identity.
func (uc *ConverterUC) lookupRate(ctx context.Context, from, to string) float64 {
	if rate, err := uc.cache.GetRate(ctx, from, to); err == nil {
		return rate
	}

	for _, provider := range uc.providers {
		rate, err := provider.FetchRate(ctx, from, to)
		if err != nil {
			logger.Warn("Rate provider failed",
				logger.String("provider", provider.Name()),
				logger.String("from", from),
				logger.String("to", to),
				logger.Err(err))
			continue
		}
		if rate <= 0 {
			logger.Warn("Rate provider returned non-positive rate",
				logger.String("provider", provider.Name()),
				logger.Float64("rate", rate))
			continue
		}

		if err := uc.cache.SetRate(ctx, from, to, rate); err != nil {
			logger.Warn("Failed to cache exchange rate", logger.Err(err))
		}
		return rate
	}

	// Every provider failed; a stale rate beats no rate
	if rate, err := uc.cache.GetLastRate(ctx, from, to); err == nil {
		logger.Warn("Using stale exchange rate",
			logger.String("from", from),
			logger.String("to", to),
			logger.Float64("rate", rate))
		return rate
	}

	logger.Error("No exchange rate available, using identity",
		logger.String("from", from),
		logger.String("to", to))
	return 1.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
