package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RUDRA212003/Career-mock/internal/pkg/env"
)

const defaultRazorpayAPIBaseURL = "https://api.razorpay.com/v1"

// OrdersClient registers checkout orders with a payment provider.
type OrdersClient interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*ProviderOrder, error)
}

// ProviderOrder is the provider's view of a registered order.
type ProviderOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// RazorpayClient talks to the Razorpay Orders API with basic auth.
type RazorpayClient struct {
	KeyID      string
	KeySecret  string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewRazorpayClientFromEnv() *RazorpayClient {
	return &RazorpayClient{
		KeyID:      strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_ID", "")),
		KeySecret:  strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_SECRET", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("RAZORPAY_API_BASE_URL", defaultRazorpayAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateOrder registers an order and returns the provider-assigned order id
// the hosted checkout needs. Transport failures, timeouts and provider
// rejections all surface as ErrProviderUnavailable; the caller creates a
// fresh order on retry instead of reusing an ambiguous one.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*ProviderOrder, error) {
	if c.KeyID == "" || c.KeySecret == "" {
		return nil, fmt.Errorf("%w: razorpay keys are not configured", ErrProviderUnavailable)
	}

	body, err := json.Marshal(map[string]interface{}{
		"amount":   amountMinorUnits,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: orders api returned status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var order ProviderOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrProviderUnavailable, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: orders api returned no order id", ErrProviderUnavailable)
	}

	return &order, nil
}
