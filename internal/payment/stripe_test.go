package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{100, 10000},
		{99.99, 9999},
		{0.01, 1},
		{0, 0},
		{10.005, 1001},
	}
	for _, tt := range tests {
		if got := ToMinorUnits(tt.amount); got != tt.want {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestCreateIntentReturnsClientSecret(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("amount"); got != "10000" {
			t.Errorf("amount = %s, want 10000", got)
		}
		if got := r.PostForm.Get("currency"); got != "eur" {
			t.Errorf("currency = %s, want eur", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret_abc"}`))
	}))
	defer server.Close()

	client := NewClient("sk_test").WithBaseURL(server.URL)
	intent, err := client.CreateIntent(context.Background(), 10000, "eur")
	if err != nil {
		t.Fatalf("CreateIntent returned error: %v", err)
	}
	if intent.ClientSecret != "pi_123_secret_abc" {
		t.Fatalf("client secret = %s", intent.ClientSecret)
	}
}

func TestCreateIntentSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer server.Close()

	client := NewClient("sk_test").WithBaseURL(server.URL)
	if _, err := client.CreateIntent(context.Background(), 500, "eur"); err == nil {
		t.Fatal("expected error from declined payment")
	}
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient("sk_test").WithBaseURL(server.URL)
	for i := 0; i < 3; i++ {
		if _, err := client.CreateIntent(context.Background(), 500, "eur"); err == nil {
			t.Fatalf("call %d should fail", i+1)
		}
	}

	// Breaker is now open; the next call must fail without reaching the API.
	server.Close()
	if _, err := client.CreateIntent(context.Background(), 500, "eur"); err == nil {
		t.Fatal("expected open circuit breaker to reject the call")
	}
}
