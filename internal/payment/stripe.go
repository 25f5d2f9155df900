// Package payment talks to the Stripe payment-intent API.
//
// Only one endpoint is used: POST /v1/payment_intents, the server-side half
// of a card payment. The server creates the intent with its secret key and
// hands the returned client_secret to the browser, which completes the
// charge directly with Stripe. The secret key never leaves the server; the
// client secret is single-purpose and safe to expose.
//
// Stripe's API is form-encoded over HTTPS with the secret key as a bearer
// token, so a small typed client over net/http is all that's needed.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// IntentCreator is the boundary the payment service programs against.
// Tests substitute a fake; production wires *Client.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string, methodTypes []string) (*Intent, error)
}

// Intent is the portion of Stripe's payment-intent object we care about.
// Stripe returns a much larger object — we only unmarshal what we use.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"` // handed to the browser to confirm the payment
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// apiError is the error envelope Stripe wraps failures in.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

const defaultBaseURL = "https://api.stripe.com"

// Client calls the Stripe REST API with a secret key.
type Client struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

// NewClient creates a Client for the live Stripe endpoint.
// The secret key comes from STRIPE_SECRET_KEY (sk_test_... or sk_live_...).
func NewClient(secretKey string) *Client {
	return &Client{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL creates a Client pointed at an alternate endpoint.
// Used in tests against an httptest server.
func NewClientWithBaseURL(secretKey, baseURL string) *Client {
	c := NewClient(secretKey)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

var _ IntentCreator = (*Client)(nil)

// CreateIntent creates a payment intent for amount (in the currency's minor
// unit — cents for USD) and returns the intent with its client secret.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string, methodTypes []string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	for _, m := range methodTypes {
		form.Add("payment_method_types[]", m)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payment: building intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment: calling payment intent API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("payment: intent API returned status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("payment: intent API returned status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("payment: decoding intent response: %w", err)
	}

	if intent.ClientSecret == "" {
		return nil, fmt.Errorf("payment: intent response has no client secret")
	}

	return &intent, nil
}
