package handlers

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerOwnerRequest struct {
	FirstName          string   `json:"firstName" binding:"required"`
	LastName           string   `json:"lastName" binding:"required"`
	Email              string   `json:"email" binding:"required"`
	Password           string   `json:"password" binding:"required"`
	PhoneNumber        string   `json:"phoneNumber" binding:"required"`
	CompanyName        string   `json:"companyName" binding:"required"`
	Website            string   `json:"website"`
	Country            string   `json:"country" binding:"required"`
	City               string   `json:"city" binding:"required"`
	Address            string   `json:"address" binding:"required"`
	PostalCode         string   `json:"postalCode" binding:"required"`
	AccommodationType  string   `json:"accommodationType" binding:"required"`
	NumberOfProperties int      `json:"numberOfProperties" binding:"required"`
	HowDidYouHear      string   `json:"howDidYouHear" binding:"required"`
	Siret              string   `json:"siret" binding:"required"`
	Photos             []string `json:"photos"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Picture  string `json:"picture"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const tokenCookieName = "token"

// Register creates a renter account and logs it in.
func Register(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		name := strings.TrimSpace(req.Name)
		password := strings.TrimSpace(req.Password)
		if email == "" || name == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "name, email and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			log.Println("[AUTH] [ERROR] register db error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		if count > 0 {
			log.Println("[AUTH] [ERROR] register email exists:", email)
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Un compte avec cet email existe déjà."})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] register password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "password hash failed"})
			return
		}

		firstName, lastName := splitName(name)
		now := time.Now()
		user := models.User{
			FirstName:    firstName,
			LastName:     lastName,
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleRenter,
			OwnerStatus:  models.OwnerStatusNone,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			log.Println("[AUTH] [ERROR] register insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		user.ID, _ = res.InsertedID.(primitive.ObjectID)

		token, err := issueToken(user, jwtSecret, tokenTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] register token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "token generation failed"})
			return
		}

		setTokenCookie(c, token, tokenTTL)
		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"token":   token,
			"user":    sanitizeUser(user),
		})
	}
}

// RegisterOwner submits an owner application. The account starts as a renter
// with a pending ownerStatus; an admin approval grants the owner role. A
// rejected applicant may resubmit, which moves the application back to
// pending.
func RegisterOwner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerOwnerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !emailPattern.MatchString(email) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Format d'email invalide!"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&existing)
		if err == nil {
			if existing.OwnerStatus != models.OwnerStatusRejected {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Un compte avec cet email existe déjà."})
				return
			}

			// Rejected applicants may try again with fresh details.
			_, err := db.Collection("users").UpdateByID(ctx, existing.ID, bson.M{
				"$set": bson.M{
					"ownerStatus":        models.OwnerStatusPending,
					"phoneNumber":        strings.TrimSpace(req.PhoneNumber),
					"companyName":        strings.TrimSpace(req.CompanyName),
					"website":            strings.TrimSpace(req.Website),
					"country":            strings.TrimSpace(req.Country),
					"city":               strings.TrimSpace(req.City),
					"address":            strings.TrimSpace(req.Address),
					"postalCode":         strings.TrimSpace(req.PostalCode),
					"accommodationType":  strings.TrimSpace(req.AccommodationType),
					"numberOfProperties": req.NumberOfProperties,
					"howDidYouHear":      strings.TrimSpace(req.HowDidYouHear),
					"siret":              strings.TrimSpace(req.Siret),
					"photos":             req.Photos,
					"updatedAt":          time.Now(),
				},
			})
			if err != nil {
				log.Println("[AUTH] [ERROR] owner reapplication failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Votre nouvelle demande d'inscription en tant que propriétaire a été soumise avec succès.",
			})
			return
		}
		if err != mongo.ErrNoDocuments {
			log.Println("[AUTH] [ERROR] owner register lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.Password)), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] owner register password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "password hash failed"})
			return
		}

		now := time.Now()
		user := models.User{
			FirstName:          strings.TrimSpace(req.FirstName),
			LastName:           strings.TrimSpace(req.LastName),
			Email:              email,
			PasswordHash:       string(hash),
			Role:               models.RoleRenter,
			OwnerStatus:        models.OwnerStatusPending,
			PhoneNumber:        strings.TrimSpace(req.PhoneNumber),
			CompanyName:        strings.TrimSpace(req.CompanyName),
			Website:            strings.TrimSpace(req.Website),
			Country:            strings.TrimSpace(req.Country),
			City:               strings.TrimSpace(req.City),
			Address:            strings.TrimSpace(req.Address),
			PostalCode:         strings.TrimSpace(req.PostalCode),
			AccommodationType:  strings.TrimSpace(req.AccommodationType),
			NumberOfProperties: req.NumberOfProperties,
			HowDidYouHear:      strings.TrimSpace(req.HowDidYouHear),
			Siret:              strings.TrimSpace(req.Siret),
			Photos:             req.Photos,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			log.Println("[AUTH] [ERROR] owner register insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}
		user.ID, _ = res.InsertedID.(primitive.ObjectID)

		log.Println("[AUTH] [INFO] owner application submitted:", email)
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Votre demande d'inscription en tant que propriétaire a été soumise avec succès. Elle est en attente d'approbation par un administrateur.",
			"user":    sanitizeUser(user),
		})
	}
}

// Login verifies credentials and issues a token both as JSON and as an
// httpOnly cookie.
func Login(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email et mot de passe requis!"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !emailPattern.MatchString(email) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Format d'email invalide!"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] login user not found:", email)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Email ou mot de passe incorrect!"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid password for:", email)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Email ou mot de passe incorrect!"})
			return
		}

		token, err := issueToken(user, jwtSecret, tokenTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "token generation failed"})
			return
		}

		setTokenCookie(c, token, tokenTTL)
		log.Println("[AUTH] [INFO] login succeeded:", email)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Connexion réussie",
			"token":   token,
			"user":    sanitizeUser(user),
		})
	}
}

// Logout clears the token cookie; the stateless JWT simply expires.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteNoneMode)
		c.SetCookie(tokenCookieName, "", -1, "/", "", true, true)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
	}
}

// GetMe returns the authenticated user's profile.
func GetMe(db *mongo.Database) gin.HandlerFunc {
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
			log.Println("[AUTH] [ERROR] get me failed:", err)
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "user": sanitizeUser(user)})
	}
}

// UpdateProfile patches picture, name, email or password on the caller's own
// account.
func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		update := bson.M{}
		if picture := strings.TrimSpace(req.Picture); picture != "" {
			update["picture"] = picture
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			firstName, lastName := splitName(name)
			update["firstName"] = firstName
			update["lastName"] = lastName
		}
		if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
			if !emailPattern.MatchString(email) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Format d'email invalide."})
				return
			}
			count, err := db.Collection("users").CountDocuments(ctx, bson.M{
				"email": email,
				"_id":   bson.M{"$ne": userID},
			})
			if err != nil {
				log.Println("[AUTH] [ERROR] email uniqueness check failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
				return
			}
			if count > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cet email est déjà utilisé par un autre compte."})
				return
			}
			update["email"] = email
		}
		if password := strings.TrimSpace(req.Password); password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "password hash failed"})
				return
			}
			update["passwordHash"] = string(hash)
		}

		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "nothing to update"})
			return
		}
		update["updatedAt"] = time.Now()

		var user models.User
		err := db.Collection("users").FindOneAndUpdate(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": update},
		).Decode(&user)
		if err != nil {
			log.Println("[AUTH] [ERROR] update profile failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur lors de la mise à jour du profil"})
			return
		}

		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "user": sanitizeUser(user)})
	}
}

func issueToken(user models.User, secret string, tokenTTL time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID.Hex(),
		"role":   user.Role,
		"email":  user.Email,
		"exp":    time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func setTokenCookie(c *gin.Context, token string, tokenTTL time.Duration) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(tokenCookieName, token, int(tokenTTL.Seconds()), "/", "", true, true)
}

// sanitizeUser strips the password hash and returns the response shape the
// clients expect.
func sanitizeUser(user models.User) gin.H {
	return gin.H{
		"id":          user.ID.Hex(),
		"firstName":   user.FirstName,
		"lastName":    user.LastName,
		"email":       user.Email,
		"picture":     user.Picture,
		"role":        user.Role,
		"ownerStatus": user.OwnerStatus,
		"balance":     user.Balance,
	}
}

// splitName breaks a display name into first and last parts; a single word
// is used for both, matching historical account data.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	first := parts[0]
	last := strings.Join(parts[1:], " ")
	if last == "" {
		last = first
	}
	return first, last
}
