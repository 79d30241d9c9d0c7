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
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

type contactReplyRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// SubmitContactForm stores a public contact-form submission. No account
// needed.
func SubmitContactForm(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req contactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		msg := models.ContactMessage{
			Name:      strings.TrimSpace(req.Name),
			Email:     strings.ToLower(strings.TrimSpace(req.Email)),
			Message:   strings.TrimSpace(req.Message),
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("contacts").InsertOne(ctx, msg); err != nil {
			log.Println("[CONTACT] [ERROR] insert message failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Votre message a été envoyé avec succès"})
	}
}

// GetContactMessages lists submissions newest first for the admin inbox.
func GetContactMessages(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("contacts").Find(ctx, bson.M{}, findOpts)
		if err != nil {
			log.Println("[CONTACT] [ERROR] list messages failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		messages := make([]models.ContactMessage, 0)
		if err := cursor.All(ctx, &messages); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
	}
}

// ReplyToMessage records the admin's reply on the message itself. The
// original sender is notified out of band.
func ReplyToMessage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid message id"})
			return
		}

		var req contactReplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("contacts").UpdateByID(ctx, messageID, bson.M{
			"$set": bson.M{
				"reply":     strings.TrimSpace(req.Reply),
				"isReplied": true,
				"repliedAt": now,
			},
		})
		if err != nil {
			log.Println("[CONTACT] [ERROR] reply failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Message non trouvé"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Réponse envoyée avec succès"})
	}
}

// DeleteMessage removes a contact submission.
func DeleteMessage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid message id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("contacts").DeleteOne(ctx, bson.M{"_id": messageID})
		if err != nil {
			log.Println("[CONTACT] [ERROR] delete message failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Message non trouvé"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message supprimé avec succès"})
	}
}
