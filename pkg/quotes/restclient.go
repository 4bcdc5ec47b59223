package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"optionflow/internal/flow"

	"github.com/go-resty/resty/v2"
)

type RESTClient struct {
	baseURL    string
	httpClient *resty.Client
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &RESTClient{
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (c *RESTClient) BaseURL() string {
	return c.baseURL
}

// GetRawChain fetches the options chain for an underlying (e.g., "I:SPX")
// without decoding the individual elements.
func (c *RESTClient) GetRawChain(ctx context.Context, symbol string) ([]json.RawMessage, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		Get("/price/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("feed error: status=%d body=%s", resp.StatusCode(), resp.Body())
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return raw, nil
}

// GetChain fetches and parses the options chain. The int result is the number
// of malformed elements that were skipped.
func (c *RESTClient) GetChain(ctx context.Context, symbol string) ([]flow.ContractSnapshot, int, error) {
	raw, err := c.GetRawChain(ctx, symbol)
	if err != nil {
		return nil, 0, err
	}

	snaps, skipped := ParseChain(raw)
	return snaps, skipped, nil
}
