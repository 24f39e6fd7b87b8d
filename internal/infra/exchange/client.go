// Package exchange implements port.RateSource against a public
// exchange-rate API: GET {base}/latest/{code} returns a JSON document
// with a "rates" map keyed by currency code.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/fintrackhq/fintrack-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("exchange")

// Client fetches base-currency exchange rates over HTTP.
// The http.Client carries the bounded timeout; a hung rate source
// surfaces as a conversion failure instead of stalling the posting.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	baseCurrency string
	cb           *gobreaker.CircuitBreaker
	bulkhead     *resilience.Bulkhead
	cfg          resilience.Config
	logger       *zap.Logger
}

// NewClient creates an exchange-rate client.
func NewClient(httpClient *http.Client, baseURL, baseCurrency string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		baseCurrency: baseCurrency,
		cb:           cb,
		bulkhead:     resilience.NewBulkhead(maxConcurrency),
		cfg:          cfg,
		logger:       logger,
	}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// GetRate returns the base-currency rate for one unit of code.
// Fails when the source is unreachable, returns malformed data, or
// omits a rate for the base currency.
func (c *Client) GetRate(ctx context.Context, code string) (float64, error) {
	ctx, span := tracer.Start(ctx, "Exchange.GetRate")
	defer span.End()
	span.SetAttributes(attribute.String("currency.code", code))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return 0, err
	}
	defer c.bulkhead.Release()

	var rate float64

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/latest/%s", c.baseURL, code)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Error("exchange: request failed",
					zap.String("currency", code),
					zap.Error(err),
				)
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				c.logger.Warn("exchange: non-2xx response",
					zap.String("currency", code),
					zap.Int("status", resp.StatusCode),
				)
				return fmt.Errorf("rate source returned status %d", resp.StatusCode)
			}

			var parsed ratesResponse
			if err := json.Unmarshal(body, &parsed); err != nil {
				return fmt.Errorf("failed to decode rates: %w", err)
			}

			r, ok := parsed.Rates[c.baseCurrency]
			if !ok || r <= 0 {
				return fmt.Errorf("no %s rate in response for %s", c.baseCurrency, code)
			}

			rate = r
			return nil
		})
	})

	if err != nil {
		return 0, &domain.ErrExternalService{Service: "exchange", Err: err}
	}

	return rate, nil
}
