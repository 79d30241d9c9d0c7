package middleware

import (
	"testing"
	"time"
)

func TestLimiterStoreAllowsWithinBurst(t *testing.T) {
	store := NewLimiterStore(60, 3, time.Minute)
	defer store.Stop()

	for i := 0; i < 3; i++ {
		if !store.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if store.Allow("10.0.0.1") {
		t.Fatal("request beyond burst should be rejected")
	}
}

func TestLimiterStoreKeysAreIndependent(t *testing.T) {
	store := NewLimiterStore(60, 1, time.Minute)
	defer store.Stop()

	if !store.Allow("10.0.0.1") {
		t.Fatal("first request for key A should be allowed")
	}
	if store.Allow("10.0.0.1") {
		t.Fatal("second request for key A should be rejected")
	}
	if !store.Allow("10.0.0.2") {
		t.Fatal("first request for key B should be allowed")
	}
}

func TestLimiterStoreDefaultsInvalidLimit(t *testing.T) {
	store := NewLimiterStore(0, 1, time.Minute)
	defer store.Stop()

	if !store.Allow("10.0.0.1") {
		t.Fatal("store with defaulted limit should still allow requests")
	}
}
