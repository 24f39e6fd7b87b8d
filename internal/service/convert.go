// Package service provides the business logic layer (use cases):
// transaction posting, budget evaluation, goal accrual, reporting and
// the single-entity CRUD around them.
package service

import (
	"context"
	"fmt"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/infra/observability"
	"github.com/fintrackhq/fintrack-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var convertTracer = otel.Tracer("service/convert")

// Converter normalizes arbitrary-currency amounts to the ledger's base
// currency. Identity conversions never touch the rate source.
type Converter struct {
	rates        port.RateSource
	cache        port.Cache[float64]
	baseCurrency string
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewConverter creates a currency converter.
func NewConverter(rates port.RateSource, cache port.Cache[float64], baseCurrency string, metrics *observability.Metrics, logger *zap.Logger) *Converter {
	return &Converter{
		rates:        rates,
		cache:        cache,
		baseCurrency: baseCurrency,
		metrics:      metrics,
		logger:       logger,
	}
}

// BaseCurrency returns the ledger's base currency code.
func (c *Converter) BaseCurrency() string {
	return c.baseCurrency
}

// Convert returns amount expressed in the base currency. A failed rate
// lookup yields ErrConversion, which aborts the posting workflow.
func (c *Converter) Convert(ctx context.Context, amount float64, currency string) (float64, error) {
	if currency == "" || currency == c.baseCurrency {
		return amount, nil
	}

	ctx, span := convertTracer.Start(ctx, "Converter.Convert")
	defer span.End()
	span.SetAttributes(attribute.String("currency", currency))

	cacheKey := fmt.Sprintf("rate:%s", currency)
	if rate, ok := c.cache.Get(cacheKey); ok {
		c.metrics.IncrCacheHit("rate")
		return amount * rate, nil
	}
	c.metrics.IncrCacheMiss("rate")

	rate, err := c.rates.GetRate(ctx, currency)
	if err != nil {
		c.metrics.IncrExternalError("exchange")
		c.logger.Error("rate lookup failed",
			zap.String("currency", currency),
			zap.Error(err),
		)
		return 0, &domain.ErrConversion{Currency: currency, Err: err}
	}

	c.cache.Set(cacheKey, rate)
	return amount * rate, nil
}
