// Package fxrate supplies the default INR to USD multiplier used when a reviewer
// approves a procurement without overriding the rate.
package fxrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/couture-bookkeeping/internal"
)

type Provider interface {
	INRToUSD(ctx context.Context) (float64, error)
}

// Static always answers with the configured rate.
type Static struct {
	Rate float64
}

func NewStatic(rate float64) *Static {
	return &Static{Rate: rate}
}

func (s *Static) INRToUSD(_ context.Context) (float64, error) {
	return s.Rate, nil
}

type Config struct {
	SourceURL string
	Timeout   time.Duration
}

// Client reads the rate from an HTTP source. The body may be either {"rate": 0.012}
// or an INR-based table such as {"base": "INR", "rates": {"USD": 0.012}}.
type Client struct {
	sourceURL  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		sourceURL:  strings.TrimRight(config.SourceURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// NewProvider picks the HTTP client when a source is configured and the static rate otherwise.
func NewProvider(cfg internal.FXConfig, defaultRate float64, logger *slog.Logger) Provider {
	if cfg.SourceURL == "" {
		return NewStatic(defaultRate)
	}
	logger.Info("using live exchange rate source", "source_url", cfg.SourceURL)
	return NewClient(Config{SourceURL: cfg.SourceURL, Timeout: cfg.Timeout}, logger)
}

func (c *Client) INRToUSD(ctx context.Context) (float64, error) {
	rate, err := c.fetch(ctx)
	if err != nil {
		c.logger.Error("exchange rate lookup failed", "source_url", c.sourceURL, "error", err)
		return 0, internal.NewExternalError("Exchange rate source unavailable", internal.ErrCodeExchangeRateUnavailable, err)
	}
	c.logger.Debug("exchange rate fetched", "rate", rate)
	return rate, nil
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate source returned status %d", resp.StatusCode)
	}

	var body struct {
		Rate  *float64           `json:"rate"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	var rate float64
	switch {
	case body.Rate != nil:
		rate = *body.Rate
	case body.Rates != nil:
		rate = body.Rates["USD"]
	}
	if rate <= 0 {
		return 0, fmt.Errorf("rate source returned no usable USD rate")
	}
	return rate, nil
}
