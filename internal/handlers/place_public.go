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

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

type replyRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// GetPlaces lists every active listing for the public browse page.
func GetPlaces(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("places").Find(ctx, bson.M{"isActive": true})
		if err != nil {
			log.Println("[PLACE] [ERROR] list places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var places []models.Place
		if err := cursor.All(ctx, &places); err != nil {
			log.Println("[PLACE] [ERROR] decode places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"places": places})
	}
}

// SinglePlace returns one listing with its embedded reviews.
func SinglePlace(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		placeID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid place id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var place models.Place
		if err := db.Collection("places").FindOne(ctx, bson.M{"_id": placeID}).Decode(&place); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Logement non trouvé"})
				return
			}
			log.Println("[PLACE] [ERROR] place lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"place": place})
	}
}

// SearchPlaces matches active listings whose title or address contains the
// key, case-insensitively. An empty key returns everything active.
func SearchPlaces(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Param("key"))

		filter := bson.M{"isActive": true}
		if key != "" {
			pattern := primitive.Regex{Pattern: regexQuoteMeta(key), Options: "i"}
			filter["$or"] = bson.A{
				bson.M{"title": pattern},
				bson.M{"address": pattern},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("places").Find(ctx, filter)
		if err != nil {
			log.Println("[PLACE] [ERROR] search places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var places []models.Place
		if err := cursor.All(ctx, &places); err != nil {
			log.Println("[PLACE] [ERROR] decode places failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, places)
	}
}

// AddReview appends a review subdocument to a place. Reviews have no
// collection of their own; they live and die with the listing.
func AddReview(db *mongo.Database) gin.HandlerFunc {
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

		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "rating must be between 1 and 5"})
			return
		}

		review := models.Review{
			ID:        primitive.NewObjectID(),
			User:      userID,
			Rating:    req.Rating,
			Comment:   strings.TrimSpace(req.Comment),
			Replies:   []models.Reply{},
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("places").UpdateByID(ctx, placeID, bson.M{
			"$push": bson.M{"reviews": review},
		})
		if err != nil {
			log.Println("[PLACE] [ERROR] add review failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Logement non trouvé"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": review})
	}
}

// AddReply appends a reply to a review subdocument, addressed by
// (placeId, reviewId).
func AddReply(db *mongo.Database) gin.HandlerFunc {
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
		reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid review id"})
			return
		}

		var req replyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		reply := models.Reply{
			ID:        primitive.NewObjectID(),
			User:      userID,
			Comment:   strings.TrimSpace(req.Comment),
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("places").UpdateOne(ctx,
			bson.M{"_id": placeID, "reviews._id": reviewID},
			bson.M{"$push": bson.M{"reviews.$.replies": reply}},
		)
		if err != nil {
			log.Println("[PLACE] [ERROR] add reply failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Avis non trouvé"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": reply})
	}
}

// regexQuoteMeta escapes regex metacharacters so a search key is matched
// literally.
func regexQuoteMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
