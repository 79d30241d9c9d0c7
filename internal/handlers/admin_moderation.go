package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// basePerks always appear in the picker even before any place uses them.
var basePerks = []string{"wifi", "parking", "tv", "radio", "pets", "enterence"}

// GetAllPerks merges the base perk set with every distinct perk stored on
// places, deduplicated.
func GetAllPerks(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		values, err := db.Collection("places").Distinct(ctx, "perks", bson.M{})
		if err != nil {
			log.Println("[ADMIN] [ERROR] distinct perks failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		set := make(map[string]bool, len(values)+len(basePerks))
		for _, perk := range basePerks {
			set[perk] = true
		}
		for _, value := range values {
			if perk, ok := value.(string); ok && strings.TrimSpace(perk) != "" {
				set[perk] = true
			}
		}

		names := make([]string, 0, len(set))
		for perk := range set {
			names = append(names, perk)
		}
		sort.Strings(names)

		perks := make([]gin.H, 0, len(names))
		for _, name := range names {
			perks = append(perks, gin.H{"name": name})
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": perks})
	}
}

// DeletePerk pulls the perk string out of every place that carries it.
func DeletePerk(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.Param("name"))
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid perk name"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("places").UpdateMany(ctx,
			bson.M{"perks": name},
			bson.M{"$pull": bson.M{"perks": name}},
		)
		if err != nil {
			log.Println("[ADMIN] [ERROR] delete perk failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.ModifiedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Perk non trouvé dans les lieux existants ou déjà supprimé."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Perk supprimé avec succès de tous les lieux."})
	}
}

// GetAllReviews flattens the embedded reviews of every place into one list
// for the moderation screen.
func GetAllReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Only places that actually embed reviews.
		cursor, err := db.Collection("places").Find(ctx, bson.M{"reviews.0": bson.M{"$exists": true}})
		if err != nil {
			log.Println("[ADMIN] [ERROR] list reviews failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var places []models.Place
		if err := cursor.All(ctx, &places); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		reviews := make([]gin.H, 0)
		for _, place := range places {
			for _, review := range place.Reviews {
				reviews = append(reviews, gin.H{
					"id":        review.ID.Hex(),
					"placeId":   place.ID.Hex(),
					"place":     place.Title,
					"user":      review.User.Hex(),
					"rating":    review.Rating,
					"comment":   review.Comment,
					"replies":   review.Replies,
					"createdAt": review.CreatedAt,
				})
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews})
	}
}

// DeleteReview pulls the review subdocument out of whichever place embeds it.
func DeleteReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid review id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("places").UpdateMany(ctx,
			bson.M{},
			bson.M{"$pull": bson.M{"reviews": bson.M{"_id": reviewID}}},
		)
		if err != nil {
			log.Println("[ADMIN] [ERROR] delete review failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.ModifiedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Aucun avis trouvé avec cet ID"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Commentaire supprimé avec succès"})
	}
}

// DeleteReply pulls a reply out of the review that embeds it, using the
// positional operator on the matched review.
func DeleteReply(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid review id"})
			return
		}
		replyID, err := primitive.ObjectIDFromHex(c.Param("replyId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid reply id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("places").UpdateOne(ctx,
			bson.M{"reviews._id": reviewID},
			bson.M{"$pull": bson.M{"reviews.$.replies": bson.M{"_id": replyID}}},
		)
		if err != nil {
			log.Println("[ADMIN] [ERROR] delete reply failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.ModifiedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Aucune réponse trouvée avec cet ID"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Réponse supprimée avec succès"})
	}
}
