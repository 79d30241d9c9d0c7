package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
	"backend/internal/payment"
)

const paymentCurrency = "eur"

// CreatePaymentIntent forwards a booking's price to the payment processor and
// returns the client secret the checkout form needs. The booking's captured
// price is the only amount source; the caller cannot influence it.
func CreatePaymentIntent(db *mongo.Database, payments *payment.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /bookings/create-payment-intent"
		defer handlePanic(c, route)

		bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid booking id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var booking models.Booking
		if err := db.Collection("bookings").FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Booking not found"})
				return
			}
			log.Println("[PAYMENT] [ERROR] booking lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		intent, err := payments.CreateIntent(ctx, payment.ToMinorUnits(booking.Price), paymentCurrency)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] payment intent creation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "payment processor error"})
			return
		}

		log.Println("[PAYMENT] [INFO] payment intent created for booking:", bookingID.Hex())
		c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
	}
}
