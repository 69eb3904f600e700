package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Quote is the value reported by the rate source.
type Quote struct {
	Rate float64
	Date string
}

// Client fetches the current quote from a JSON endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{url: url, httpClient: &http.Client{Timeout: timeout}}
}

type quotePayload struct {
	Rate  *float64 `json:"rate"`
	Price *float64 `json:"price"`
	Date  string   `json:"date"`
}

// Current returns the latest quote. The body is either {"rate": n, "date": "..."}
// or {"price": n}.
func (c *Client) Current(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Quote{}, fmt.Errorf("%w: status %d", ErrRateUnavailable, resp.StatusCode)
	}
	var payload quotePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("%w: decode: %v", ErrRateUnavailable, err)
	}
	q := Quote{Date: payload.Date}
	switch {
	case payload.Rate != nil:
		q.Rate = *payload.Rate
	case payload.Price != nil:
		q.Rate = *payload.Price
	default:
		return Quote{}, fmt.Errorf("%w: response has no rate", ErrRateUnavailable)
	}
	if !validValue(q.Rate) {
		return Quote{}, ErrInvalidRate
	}
	return q, nil
}
