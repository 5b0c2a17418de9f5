package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"

	"deviseur/internal/config"
)

// Client downloads catalogue exports and document assets. Each call is a
// single attempt; failures go straight back to the caller.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
	}
}

func (c *Client) rest() *resty.Client {
	return resty.NewWithClient(c.httpClient).
		SetHeader("User-Agent", "deviseur/1.0").
		SetHeader("Accept", "text/csv,text/plain,text/html,application/octet-stream,*/*")
}

// Fetch returns the body of a successful GET.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := c.rest()
	defer client.Close()

	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: status=%d", url, resp.StatusCode())
	}
	return resp.Bytes(), nil
}
