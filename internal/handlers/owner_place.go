package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

type placeRequest struct {
	Title       string   `json:"title" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	Photos      []string `json:"photos"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	ExtraInfo   string   `json:"extraInfo"`
	MaxGuests   int      `json:"maxGuests" binding:"required"`
	Price       float64  `json:"price" binding:"required"`
	Type        string   `json:"type"`
}

// GetMyPlaces lists the authenticated owner's listings.
func GetMyPlaces(db *mongo.Database) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, gin.H{"success": true, "data": places})
	}
}

// GetMyPlace returns one listing, only if the caller owns it.
func GetMyPlace(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		placeID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid place id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var place models.Place
		err = db.Collection("places").FindOne(ctx, bson.M{"_id": placeID, "owner": userID}).Decode(&place)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Logement non trouvé ou vous n'êtes pas le propriétaire"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": place})
	}
}

// CreateMyPlace creates a listing owned by the caller. New places start
// active and bookable.
func CreateMyPlace(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		var req placeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "price must be greater than 0"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		place := models.Place{
			Owner:       userID,
			Title:       strings.TrimSpace(req.Title),
			Address:     strings.TrimSpace(req.Address),
			Photos:      req.Photos,
			Description: strings.TrimSpace(req.Description),
			Perks:       req.Perks,
			ExtraInfo:   strings.TrimSpace(req.ExtraInfo),
			MaxGuests:   req.MaxGuests,
			Price:       req.Price,
			Type:        strings.TrimSpace(req.Type),
			IsActive:    true,
			Reviews:     []models.Review{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		res, err := db.Collection("places").InsertOne(ctx, place)
		if err != nil {
			log.Println("[OWNER] [ERROR] create place failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if id, idOK := res.InsertedID.(primitive.ObjectID); idOK {
			place.ID = id
		}

		log.Println("[OWNER] [INFO] place created:", place.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": place})
	}
}

// UpdateMyPlace updates a listing the caller owns. The owner reference and
// embedded reviews are not editable through this endpoint.
func UpdateMyPlace(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		placeID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid place id"})
			return
		}

		var req placeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "price must be greater than 0"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		update := bson.M{"$set": bson.M{
			"title":       strings.TrimSpace(req.Title),
			"address":     strings.TrimSpace(req.Address),
			"photos":      req.Photos,
			"description": strings.TrimSpace(req.Description),
			"perks":       req.Perks,
			"extraInfo":   strings.TrimSpace(req.ExtraInfo),
			"maxGuests":   req.MaxGuests,
			"price":       req.Price,
			"type":        strings.TrimSpace(req.Type),
			"updatedAt":   time.Now(),
		}}

		res, err := db.Collection("places").UpdateOne(ctx, bson.M{"_id": placeID, "owner": userID}, update)
		if err != nil {
			log.Println("[OWNER] [ERROR] update place failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Logement non trouvé ou vous n'êtes pas le propriétaire"})
			return
		}

		var place models.Place
		if err := db.Collection("places").FindOne(ctx, bson.M{"_id": placeID}).Decode(&place); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": place})
	}
}

// ToggleMyPlaceStatus flips the isActive flag; inactive places cannot be
// booked but stay visible to their owner.
func ToggleMyPlaceStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		placeID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid place id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var place models.Place
		err = db.Collection("places").FindOne(ctx, bson.M{"_id": placeID, "owner": userID}).Decode(&place)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Logement non trouvé ou vous n'êtes pas le propriétaire"})
			return
		}

		place.IsActive = !place.IsActive
		place.UpdatedAt = time.Now()

		_, err = db.Collection("places").UpdateByID(ctx, placeID, bson.M{
			"$set": bson.M{"isActive": place.IsActive, "updatedAt": place.UpdatedAt},
		})
		if err != nil {
			log.Println("[OWNER] [ERROR] toggle place failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		message := "Logement désactivé avec succès"
		if place.IsActive {
			message = "Logement activé avec succès"
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": place, "message": message})
	}
}

// DeleteMyPlace removes a listing the caller owns, together with its
// bookings, inside one transaction so no dangling booking survives.
func DeleteMyPlace(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /owner/places"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		placeID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid place id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		deleted, err := deletePlaceWithBookings(ctx, db, bson.M{"_id": placeID, "owner": userID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Logement non trouvé ou vous n'êtes pas le propriétaire"})
			return
		}

		log.Println("[OWNER] [INFO] place deleted:", placeID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logement supprimé avec succès"})
	}
}

// deletePlaceWithBookings removes the place matching filter and every booking
// referencing it in a single transaction. Stored photo files are cleaned up
// after the commit; a leftover file is only a warning.
func deletePlaceWithBookings(ctx context.Context, db *mongo.Database, filter bson.M) (bool, error) {
	session, err := db.Client().StartSession()
	if err != nil {
		return false, err
	}
	defer session.EndSession(ctx)

	deleted := false
	var photos []string
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var place models.Place
		err := db.Collection("places").FindOneAndDelete(sessCtx, filter).Decode(&place)
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if _, err := db.Collection("bookings").DeleteMany(sessCtx, bson.M{"place": place.ID}); err != nil {
			return nil, err
		}

		deleted = true
		photos = place.Photos
		return nil, nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		for _, photo := range photos {
			if err := safeDeleteUpload(photo); err != nil {
				log.Println("[PLACE] [WARN] photo cleanup failed:", err)
			}
		}
	}
	return deleted, nil
}
