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
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

type adminUpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type createManagerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func validRole(role string) bool {
	switch role {
	case models.RoleRenter, models.RoleModerator, models.RoleAdmin, models.RoleOwner:
		return true
	}
	return false
}

// GetAllUsers lists every account for the moderation screens.
func GetAllUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("users").Find(ctx, bson.M{})
		if err != nil {
			log.Println("[ADMIN] [ERROR] list users failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			log.Println("[ADMIN] [ERROR] decode users failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": users})
	}
}

// CreateManager provisions an admin account.
func CreateManager(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createManagerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Un compte avec cet email existe déjà."})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.Password)), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "password hash failed"})
			return
		}

		firstName, lastName := splitName(strings.TrimSpace(req.Name))
		now := time.Now()
		user := models.User{
			FirstName:    firstName,
			LastName:     lastName,
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			OwnerStatus:  models.OwnerStatusNone,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			log.Println("[ADMIN] [ERROR] create manager failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		user.ID, _ = res.InsertedID.(primitive.ObjectID)

		log.Println("[ADMIN] [INFO] manager created:", email)
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": sanitizeUser(user)})
	}
}

// UpdateUser edits identity fields on any account.
func UpdateUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user id"})
			return
		}

		var req adminUpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
			return
		}

		update := bson.M{}
		if v := strings.TrimSpace(req.FirstName); v != "" {
			update["firstName"] = v
		}
		if v := strings.TrimSpace(req.LastName); v != "" {
			update["lastName"] = v
		}
		if v := strings.ToLower(strings.TrimSpace(req.Email)); v != "" {
			if !emailPattern.MatchString(v) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Format d'email invalide."})
				return
			}
			update["email"] = v
		}
		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "nothing to update"})
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{"$set": update})
		if err != nil {
			log.Println("[ADMIN] [ERROR] update user failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Utilisateur non trouvé."})
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "User updated successfully", "data": user})
	}
}

// UpdateUserRole replaces the account's role; balances and listings are left
// untouched.
func UpdateUserRole(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user id"})
			return
		}

		var req updateRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if !validRole(req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid role"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{"role": req.Role, "updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[ADMIN] [ERROR] update role failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Utilisateur non trouvé."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Rôle mis à jour avec succès."})
	}
}

// DeleteUser removes an account together with its bookings and owned places,
// in one transaction.
func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/users"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user id"})
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

		found := false
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			res, err := db.Collection("users").DeleteOne(sessCtx, bson.M{"_id": userID})
			if err != nil {
				return nil, err
			}
			if res.DeletedCount == 0 {
				return nil, nil
			}
			found = true

			if _, err := db.Collection("bookings").DeleteMany(sessCtx, bson.M{"user": userID}); err != nil {
				return nil, err
			}

			// Owned places go too, along with the bookings received on them.
			cursor, err := db.Collection("places").Find(sessCtx, bson.M{"owner": userID})
			if err != nil {
				return nil, err
			}
			var places []models.Place
			if err := cursor.All(sessCtx, &places); err != nil {
				return nil, err
			}
			if len(places) > 0 {
				ids := placeIDs(places)
				if _, err := db.Collection("bookings").DeleteMany(sessCtx, bson.M{"place": bson.M{"$in": ids}}); err != nil {
					return nil, err
				}
				if _, err := db.Collection("places").DeleteMany(sessCtx, bson.M{"owner": userID}); err != nil {
					return nil, err
				}
			}

			return nil, nil
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Utilisateur non trouvé."})
			return
		}

		log.Println("[ADMIN] [INFO] user deleted:", userID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Utilisateur supprimé"})
	}
}

// GetPendingOwners lists accounts whose owner application awaits a decision.
func GetPendingOwners(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("users").Find(ctx, bson.M{"ownerStatus": models.OwnerStatusPending})
		if err != nil {
			log.Println("[ADMIN] [ERROR] list pending owners failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": users})
	}
}

// ApproveOwner grants the owner role for a pending application. Approving a
// non-pending application is rejected so decisions apply exactly once.
func ApproveOwner(db *mongo.Database) gin.HandlerFunc {
	return decideOwnerApplication(db, true)
}

// RejectOwner declines a pending application; the account keeps its role and
// may reapply later.
func RejectOwner(db *mongo.Database) gin.HandlerFunc {
	return decideOwnerApplication(db, false)
}

func decideOwnerApplication(db *mongo.Database, approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		update := bson.M{"ownerStatus": models.OwnerStatusRejected, "updatedAt": time.Now()}
		if approve {
			update = bson.M{
				"ownerStatus": models.OwnerStatusApproved,
				"role":        models.RoleOwner,
				"updatedAt":   time.Now(),
			}
		}

		// Matching on the pending status makes the decision atomic: a second
		// concurrent decision matches nothing.
		res, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID, "ownerStatus": models.OwnerStatusPending},
			bson.M{"$set": update},
		)
		if err != nil {
			log.Println("[ADMIN] [ERROR] owner decision failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			if lookupErr := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Err(); lookupErr == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Utilisateur non trouvé."})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cette demande a déjà été traitée."})
			return
		}

		message := "La demande de propriétaire a été rejetée avec succès."
		if approve {
			message = "La demande de propriétaire a été approuvée avec succès."
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "user": user})
	}
}
