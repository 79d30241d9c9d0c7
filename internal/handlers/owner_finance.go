package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type withdrawalRequest struct {
	Amount float64 `json:"amount"`
}

type ownerStats struct {
	TotalPlaces    int     `json:"totalPlaces"`
	ActivePlaces   int     `json:"activePlaces"`
	InactivePlaces int     `json:"inactivePlaces"`
	TotalBookings  int     `json:"totalBookings"`
	TotalRevenue   float64 `json:"totalRevenue"`
	CurrentBalance float64 `json:"currentBalance"`
}

// computeOwnerStats aggregates an owner's places and bookings. TotalRevenue
// is the gross booked total; CurrentBalance is the credited commission ledger
// and is passed through, never recomputed.
func computeOwnerStats(places []models.Place, bookings []models.Booking, balance float64) ownerStats {
	stats := ownerStats{
		TotalPlaces:    len(places),
		TotalBookings:  len(bookings),
		CurrentBalance: balance,
	}
	for _, place := range places {
		if place.IsActive {
			stats.ActivePlaces++
		} else {
			stats.InactivePlaces++
		}
	}
	for _, booking := range bookings {
		stats.TotalRevenue += booking.Price
	}
	return stats
}

func validateWithdrawalAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("Montant invalide")
	}
	return nil
}

// GetMyStats returns aggregate statistics for the authenticated owner without
// mutating any state.
func GetMyStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		places, err := findOwnerPlaces(ctx, db, userID)
		if err != nil {
			log.Println("[OWNER] [ERROR] list places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		bookings, err := findBookingsForPlaces(ctx, db, placeIDs(places))
		if err != nil {
			log.Println("[OWNER] [ERROR] list bookings failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[OWNER] [ERROR] owner lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    computeOwnerStats(places, bookings, user.Balance),
		})
	}
}

// GetMyBalance reads the owner's balance field directly; the balance is the
// authoritative ledger, not a value derived from bookings.
func GetMyBalance(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[OWNER] [ERROR] balance lookup failed:", err)
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"balance": user.Balance},
		})
	}
}

// RequestWithdrawal debits the owner's balance by the requested amount. The
// funds check and the debit are a single conditional update, so concurrent
// withdrawals can never overdraw the balance.
func RequestWithdrawal(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /owner/withdrawal"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		var req withdrawalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		if err := validateWithdrawalAmount(req.Amount); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Decrement only if the balance still covers the amount; losers of a
		// concurrent race simply match nothing.
		filter := bson.M{
			"_id":     userID,
			"balance": bson.M{"$gte": req.Amount},
		}
		update := bson.M{"$inc": bson.M{"balance": -req.Amount}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var updated models.User
		err := db.Collection("users").FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			if lookupErr := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Err(); lookupErr == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Solde insuffisant"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		reference := uuid.NewString()
		log.Println("[OWNER] [INFO] withdrawal applied:", reference, "amount:", req.Amount)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Retrait de %g€ effectué avec succès", req.Amount),
			"data": gin.H{
				"newBalance": updated.Balance,
				"reference":  reference,
			},
		})
	}
}

// ownerBooking is a booking as the owner feed serves it: the place summary
// and the renter identity replace the raw object ids.
type ownerBooking struct {
	models.Booking `bson:",inline"`
	PlaceDoc       *models.PlaceSummary `json:"place,omitempty"`
	RenterDoc      *models.UserSummary  `json:"user,omitempty"`
}

// expandOwnerBookings attaches place and renter summaries to each booking,
// one $in query per collection.
func expandOwnerBookings(ctx context.Context, db *mongo.Database, bookings []models.Booking) ([]ownerBooking, error) {
	withPlaces, err := expandBookingPlaces(ctx, db, bookings)
	if err != nil {
		return nil, err
	}

	renterIDs := make([]primitive.ObjectID, 0, len(bookings))
	seen := make(map[primitive.ObjectID]bool, len(bookings))
	for _, booking := range bookings {
		if !seen[booking.User] {
			seen[booking.User] = true
			renterIDs = append(renterIDs, booking.User)
		}
	}

	renters := make(map[primitive.ObjectID]models.UserSummary, len(renterIDs))
	if len(renterIDs) > 0 {
		cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": renterIDs}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			return nil, err
		}
		for _, user := range users {
			renters[user.ID] = user.Summary()
		}
	}

	expanded := make([]ownerBooking, 0, len(withPlaces))
	for _, item := range withPlaces {
		entry := ownerBooking{Booking: item.Booking, PlaceDoc: item.PlaceDoc}
		if summary, exists := renters[item.Booking.User]; exists {
			entry.RenterDoc = &summary
		}
		expanded = append(expanded, entry)
	}
	return expanded, nil
}

// GetMyBookings lists bookings received on the owner's places, newest first,
// each carrying its place summary and the renter who booked.
func GetMyBookings(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		places, err := findOwnerPlaces(ctx, db, userID)
		if err != nil {
			log.Println("[OWNER] [ERROR] list places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		bookings, err := findBookingsForPlaces(ctx, db, placeIDs(places))
		if err != nil {
			log.Println("[OWNER] [ERROR] list bookings failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		expanded, err := expandOwnerBookings(ctx, db, bookings)
		if err != nil {
			log.Println("[OWNER] [ERROR] expand bookings failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": expanded})
	}
}

func findOwnerPlaces(ctx context.Context, db *mongo.Database, ownerID primitive.ObjectID) ([]models.Place, error) {
	cursor, err := db.Collection("places").Find(ctx, bson.M{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var places []models.Place
	if err := cursor.All(ctx, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func findBookingsForPlaces(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) ([]models.Booking, error) {
	if len(ids) == 0 {
		return []models.Booking{}, nil
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.Collection("bookings").Find(ctx, bson.M{"place": bson.M{"$in": ids}}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func placeIDs(places []models.Place) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(places))
	for _, place := range places {
		ids = append(ids, place.ID)
	}
	return ids
}
