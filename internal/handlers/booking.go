package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type createBookingRequest struct {
	Place       string  `json:"place" binding:"required"`
	CheckIn     string  `json:"checkIn" binding:"required"`
	CheckOut    string  `json:"checkOut" binding:"required"`
	NumOfGuests int     `json:"numOfGuests" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Phone       string  `json:"phone" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
}

type bookingWithPlace struct {
	models.Booking `bson:",inline"`
	PlaceDoc       *models.PlaceSummary `bson:"placeDoc,omitempty" json:"place,omitempty"`
}

const bookingDateLayout = "2006-01-02"

type placeNotFoundError struct {
	PlaceID primitive.ObjectID
}

func (e placeNotFoundError) Error() string {
	return "place not found"
}

type placeInactiveError struct {
	PlaceID primitive.ObjectID
}

func (e placeInactiveError) Error() string {
	return "place not active"
}

// CreateBooking reserves a place for the caller and credits the owner's
// balance with the commission. Booking insert and balance credit run in one
// transaction so a failure between them cannot leave an uncredited booking.
func CreateBooking(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /bookings"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		var req createBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		placeID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.Place))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid place id")
			return
		}

		checkIn, err := time.Parse(bookingDateLayout, req.CheckIn)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid checkIn date")
			return
		}
		checkOut, err := time.Parse(bookingDateLayout, req.CheckOut)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid checkOut date")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var booking models.Booking
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var place models.Place
			err := db.Collection("places").FindOne(sessCtx, bson.M{"_id": placeID}).Decode(&place)
			if err == mongo.ErrNoDocuments {
				return nil, placeNotFoundError{PlaceID: placeID}
			}
			if err != nil {
				return nil, err
			}

			if !place.IsActive {
				return nil, placeInactiveError{PlaceID: placeID}
			}

			if err := validateStay(checkIn, checkOut, req.NumOfGuests, place.MaxGuests); err != nil {
				return nil, stayValidationError{Reason: err.Error()}
			}

			total := bookingTotal(place.Price, nightsBetween(checkIn, checkOut))
			if !priceMatches(req.Price, total) {
				return nil, stayValidationError{Reason: "price does not match the current rate for this stay"}
			}

			booking = models.Booking{
				User:        userID,
				Place:       placeID,
				CheckIn:     checkIn,
				CheckOut:    checkOut,
				NumOfGuests: req.NumOfGuests,
				Name:        strings.TrimSpace(req.Name),
				Phone:       strings.TrimSpace(req.Phone),
				Price:       total,
				CreatedAt:   time.Now(),
			}

			res, err := db.Collection("bookings").InsertOne(sessCtx, booking)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				booking.ID = id
			}

			commission := ownerCommission(total)
			_, err = db.Collection("users").UpdateByID(sessCtx, place.Owner, bson.M{
				"$inc": bson.M{"balance": commission},
			})
			if err != nil {
				return nil, err
			}

			return nil, nil
		})
		if err != nil {
			var notFoundErr placeNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Logement non trouvé"})
				return
			}
			var inactiveErr placeInactiveError
			if errors.As(err, &inactiveErr) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Ce logement n'est pas disponible actuellement"})
				return
			}
			var stayErr stayValidationError
			if errors.As(err, &stayErr) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": stayErr.Reason})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[BOOKING] [INFO] booking created:", booking.ID.Hex(), "for user:", userID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"booking": booking,
			"message": "Réservation créée avec succès",
		})
	}
}

type stayValidationError struct {
	Reason string
}

func (e stayValidationError) Error() string {
	return e.Reason
}

// GetBookings returns the caller's bookings, newest first, each expanded with
// a summary of its place.
func GetBookings(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("bookings").Find(ctx, bson.M{"user": userID}, findOpts)
		if err != nil {
			log.Println("[BOOKING] [ERROR] list bookings failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var bookings []models.Booking
		if err := cursor.All(ctx, &bookings); err != nil {
			log.Println("[BOOKING] [ERROR] decode bookings failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		expanded, err := expandBookingPlaces(ctx, db, bookings)
		if err != nil {
			log.Println("[BOOKING] [ERROR] expand places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"booking": expanded, "success": true})
	}
}

// expandBookingPlaces attaches a place summary to each booking with one $in
// query instead of a lookup per booking.
func expandBookingPlaces(ctx context.Context, db *mongo.Database, bookings []models.Booking) ([]bookingWithPlace, error) {
	placeIDs := make([]primitive.ObjectID, 0, len(bookings))
	seen := make(map[primitive.ObjectID]bool, len(bookings))
	for _, booking := range bookings {
		if !seen[booking.Place] {
			seen[booking.Place] = true
			placeIDs = append(placeIDs, booking.Place)
		}
	}

	summaries := make(map[primitive.ObjectID]models.PlaceSummary, len(placeIDs))
	if len(placeIDs) > 0 {
		cursor, err := db.Collection("places").Find(ctx, bson.M{"_id": bson.M{"$in": placeIDs}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var places []models.Place
		if err := cursor.All(ctx, &places); err != nil {
			return nil, err
		}
		for _, place := range places {
			summaries[place.ID] = place.Summary()
		}
	}

	expanded := make([]bookingWithPlace, 0, len(bookings))
	for _, booking := range bookings {
		item := bookingWithPlace{Booking: booking}
		if summary, exists := summaries[booking.Place]; exists {
			item.PlaceDoc = &summary
		}
		expanded = append(expanded, item)
	}
	return expanded, nil
}
