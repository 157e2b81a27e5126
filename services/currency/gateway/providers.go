package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	httpclient "github.com/piresc/kasbot/internal/pkg/http"
)

// PrimaryProvider fetches rates from the keyed exchange rate API
// (exchangerate.host convert endpoint).
type PrimaryProvider struct {
	client *httpclient.Client
	apiKey string
}

// NewPrimaryProvider creates the primary rate provider
func NewPrimaryProvider(baseURL, apiKey string, timeout time.Duration) *PrimaryProvider {
	return &PrimaryProvider{
		client: httpclient.NewClient(baseURL, timeout),
		apiKey: apiKey,
	}
}

// Name returns the provider name for logging
func (p *PrimaryProvider) Name() string {
	return "exchangerate.host"
}

type convertResponse struct {
	Success bool    `json:"success"`
	Result  float64 `json:"result"`
}

// FetchRate returns the rate for one unit of from in to
func (p *PrimaryProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	q.Set("amount", "1")
	if p.apiKey != "" {
		q.Set("access_key", p.apiKey)
	}

	var resp convertResponse
	if err := p.client.GetJSON(ctx, "/convert?"+q.Encode(), nil, &resp); err != nil {
		return 0, fmt.Errorf("primary provider request failed: %w", err)
	}

	if !resp.Success || resp.Result <= 0 {
		return 0, fmt.Errorf("primary provider returned no rate for %s/%s", from, to)
	}

	return resp.Result, nil
}

// FallbackProvider fetches rates from the free unauthenticated API
// (open.er-api.com latest endpoint).
type FallbackProvider struct {
	client *httpclient.Client
}

// NewFallbackProvider creates the free fallback rate provider
func NewFallbackProvider(baseURL string, timeout time.Duration) *FallbackProvider {
	return &FallbackProvider{
		client: httpclient.NewClient(baseURL, timeout),
	}
}

// Name returns the provider name for logging
func (p *FallbackProvider) Name() string {
	return "open.er-api.com"
}

type latestResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// FetchRate returns the rate for one unit of from in to
func (p *FallbackProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	var resp latestResponse
	if err := p.client.GetJSON(ctx, "/latest/"+url.PathEscape(from), nil, &resp); err != nil {
		return 0, fmt.Errorf("fallback provider request failed: %w", err)
	}

	if resp.Result != "success" {
		return 0, fmt.Errorf("fallback provider returned result %q", resp.Result)
	}

	rate, ok := resp.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("fallback provider has no rate for %s/%s", from, to)
	}

	return rate, nil
}
