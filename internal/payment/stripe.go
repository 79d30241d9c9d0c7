package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://api.stripe.com"

// Client creates payment intents against the Stripe HTTP API. Calls go
// through a circuit breaker so a processor outage fails fast instead of
// holding request goroutines on timeouts.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "stripe",
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Printf("[PAYMENT] circuit breaker %q changed from %q to %q", name, from, to)
			},
		}),
	}
}

// WithBaseURL points the client at a different API host (used by tests).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// CreateIntent registers a payment intent for amountMinor in the given
// currency and returns the client secret the UI needs to confirm the payment.
func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency string) (*Intent, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.createIntent(ctx, amountMinor, currency)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Intent), nil
}

func (c *Client) createIntent(ctx context.Context, amountMinor int64, currency string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, err
	}
	if intent.ClientSecret == "" {
		return nil, fmt.Errorf("stripe: response missing client secret")
	}
	return &intent, nil
}

// ToMinorUnits converts a major-unit amount (euros) to the minor units
// (cents) the processor expects.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
