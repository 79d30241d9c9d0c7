package handlers

import (
	"fmt"
	"math"
	"time"
)

// ownerShare is the fraction of a booking price credited to the place owner.
// The remaining 10% is the platform's cut.
const ownerShare = 0.9

// priceTolerance absorbs float formatting noise when comparing the client's
// displayed total against the server-side recomputation.
const priceTolerance = 0.01

// ownerCommission returns the amount credited to the owner's balance for a
// booking at the given total price.
func ownerCommission(price float64) float64 {
	return math.Round(price*ownerShare*100) / 100
}

// nightsBetween counts whole nights from check-in to check-out.
func nightsBetween(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// bookingTotal recomputes the stay charge from the nightly rate; the client's
// price is never trusted as the source of truth.
func bookingTotal(nightlyRate float64, nights int) float64 {
	return math.Round(nightlyRate*float64(nights)*100) / 100
}

func validateStay(checkIn, checkOut time.Time, numOfGuests, maxGuests int) error {
	if !checkOut.After(checkIn) {
		return fmt.Errorf("checkOut must be after checkIn")
	}
	if nightsBetween(checkIn, checkOut) < 1 {
		return fmt.Errorf("stay must cover at least one night")
	}
	if numOfGuests < 1 {
		return fmt.Errorf("numOfGuests must be at least 1")
	}
	if maxGuests > 0 && numOfGuests > maxGuests {
		return fmt.Errorf("numOfGuests exceeds place capacity of %d", maxGuests)
	}
	return nil
}

// priceMatches reports whether the client-displayed total agrees with the
// recomputed one.
func priceMatches(clientPrice, serverPrice float64) bool {
	return math.Abs(clientPrice-serverPrice) <= priceTolerance
}
