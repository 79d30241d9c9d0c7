package handlers

import (
	"math"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOwnerCommission(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		want  float64
	}{
		{"round total", 100, 90},
		{"cents kept", 99.99, 89.99},
		{"rounds half up", 33.35, 30.02},
		{"zero", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ownerCommission(tc.price)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ownerCommission(%v) = %v, want %v", tc.price, got, tc.want)
			}
		})
	}
}

func TestOwnerCommissionNeverExceedsPrice(t *testing.T) {
	for _, price := range []float64{0.01, 1, 49.5, 120, 9999.99} {
		if got := ownerCommission(price); got > price {
			t.Fatalf("commission %v exceeds price %v", got, price)
		}
	}
}

func TestNightsBetween(t *testing.T) {
	cases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"one night", date(2025, 6, 1), date(2025, 6, 2), 1},
		{"full week", date(2025, 6, 1), date(2025, 6, 8), 7},
		{"same day", date(2025, 6, 1), date(2025, 6, 1), 0},
		{"across month end", date(2025, 6, 29), date(2025, 7, 2), 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nightsBetween(tc.checkIn, tc.checkOut); got != tc.want {
				t.Fatalf("nightsBetween = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBookingTotal(t *testing.T) {
	cases := []struct {
		name   string
		rate   float64
		nights int
		want   float64
	}{
		{"whole rate", 100, 3, 300},
		{"fractional rate", 79.99, 2, 159.98},
		{"single night", 45.5, 1, 45.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := bookingTotal(tc.rate, tc.nights)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("bookingTotal(%v, %d) = %v, want %v", tc.rate, tc.nights, got, tc.want)
			}
		})
	}
}

func TestValidateStay(t *testing.T) {
	cases := []struct {
		name      string
		checkIn   time.Time
		checkOut  time.Time
		guests    int
		maxGuests int
		wantErr   bool
	}{
		{"valid stay", date(2025, 6, 1), date(2025, 6, 4), 2, 4, false},
		{"checkout before checkin", date(2025, 6, 4), date(2025, 6, 1), 2, 4, true},
		{"same day", date(2025, 6, 1), date(2025, 6, 1), 2, 4, true},
		{"zero guests", date(2025, 6, 1), date(2025, 6, 4), 0, 4, true},
		{"over capacity", date(2025, 6, 1), date(2025, 6, 4), 5, 4, true},
		{"at capacity", date(2025, 6, 1), date(2025, 6, 4), 4, 4, false},
		{"capacity unset", date(2025, 6, 1), date(2025, 6, 4), 12, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateStay(tc.checkIn, tc.checkOut, tc.guests, tc.maxGuests)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPriceMatches(t *testing.T) {
	cases := []struct {
		name   string
		client float64
		server float64
		want   bool
	}{
		{"exact", 300, 300, true},
		{"within tolerance", 300.009, 300, true},
		{"above tolerance", 300.02, 300, false},
		{"stale client price", 250, 300, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := priceMatches(tc.client, tc.server); got != tc.want {
				t.Fatalf("priceMatches(%v, %v) = %v, want %v", tc.client, tc.server, got, tc.want)
			}
		})
	}
}
