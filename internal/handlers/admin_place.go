package handlers

import (
	"context"
	"log"
	"math"
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

type adminPlaceRequest struct {
	Owner       string   `json:"owner" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	Photos      []string `json:"photos"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	ExtraInfo   string   `json:"extraInfo"`
	MaxGuests   int      `json:"maxGuests" binding:"required"`
	Price       float64  `json:"price" binding:"required"`
	Type        string   `json:"type"`
	IsActive    *bool    `json:"isActive"`
}

// GetAllPlacesAdmin pages through every listing, active or not.
func GetAllPlacesAdmin(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid pagination params"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("places").CountDocuments(ctx, bson.M{})
		if err != nil {
			log.Println("[ADMIN] [ERROR] count places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		findOpts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("places").Find(ctx, bson.M{}, findOpts)
		if err != nil {
			log.Println("[ADMIN] [ERROR] list places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var places []models.Place
		if err := cursor.All(ctx, &places); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    places,
			"total":   total,
			"page":    page,
			"pages":   int64(math.Ceil(float64(total) / float64(limit))),
		})
	}
}

// GetPlacesByOwner lists one owner's listings for the admin detail screen.
func GetPlacesByOwner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		places, err := findOwnerPlaces(ctx, db, ownerID)
		if err != nil {
			log.Println("[ADMIN] [ERROR] list owner places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": places})
	}
}

// AddPlaceAdmin creates a listing on behalf of an owner.
func AddPlaceAdmin(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adminPlaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ownerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.Owner))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid owner id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": ownerID}).Err(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "owner not found"})
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		now := time.Now()
		place := models.Place{
			Owner:       ownerID,
			Title:       strings.TrimSpace(req.Title),
			Address:     strings.TrimSpace(req.Address),
			Photos:      req.Photos,
			Description: strings.TrimSpace(req.Description),
			Perks:       req.Perks,
			ExtraInfo:   strings.TrimSpace(req.ExtraInfo),
			MaxGuests:   req.MaxGuests,
			Price:       req.Price,
			Type:        strings.TrimSpace(req.Type),
			IsActive:    isActive,
			Reviews:     []models.Review{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		res, err := db.Collection("places").InsertOne(ctx, place)
		if err != nil {
			log.Println("[ADMIN] [ERROR] add place failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			place.ID = id
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Place added successfully", "data": place})
	}
}

// UpdatePlaceAdmin edits any listing, including its active flag.
func UpdatePlaceAdmin(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		placeID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid place id"})
			return
		}

		var req adminPlaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{
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
		}
		if req.IsActive != nil {
			update["isActive"] = *req.IsActive
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("places").UpdateByID(ctx, placeID, bson.M{"$set": update})
		if err != nil {
			log.Println("[ADMIN] [ERROR] update place failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Place not found"})
			return
		}

		var place models.Place
		if err := db.Collection("places").FindOne(ctx, bson.M{"_id": placeID}).Decode(&place); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Place updated successfully", "data": place})
	}
}

// DeletePlaceAdmin removes any listing and its bookings.
func DeletePlaceAdmin(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/places"
		defer handlePanic(c, route)

		placeID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid place id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		deleted, err := deletePlaceWithBookings(ctx, db, bson.M{"_id": placeID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Place not found"})
			return
		}

		log.Println("[ADMIN] [INFO] place deleted:", placeID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Place deleted successfully"})
	}
}
