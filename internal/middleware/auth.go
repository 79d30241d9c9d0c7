package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserAuth validates bearer tokens and injects userId and role into the
// context. A token may arrive in the Authorization header or in the "token"
// cookie the login endpoint sets.
func UserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			log.Println("[AUTH] [ERROR] missing token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing token"})
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			log.Println("[AUTH] [ERROR] token claims invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		userIDValue, ok := claims["userId"].(string)
		if !ok || strings.TrimSpace(userIDValue) == "" {
			log.Println("[AUTH] [ERROR] userId claim missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		userID, err := primitive.ObjectIDFromHex(userIDValue)
		if err != nil {
			log.Println("[AUTH] [ERROR] invalid userId claim")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		role, _ := claims["role"].(string)

		c.Set("userId", userID)
		c.Set("role", role)
		c.Next()
	}
}

// RoleGuard rejects callers whose role claim is not in the allowed set. It
// must run after UserAuth.
func RoleGuard(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		roleValue, _ := role.(string)

		for _, allowed := range allowedRoles {
			if roleValue == allowed {
				c.Next()
				return
			}
		}

		log.Println("[AUTH] [ERROR] role not allowed:", roleValue)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Accès refusé : rôle insuffisant.",
		})
	}
}

func bearerToken(c *gin.Context) string {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw != "" {
		parts := strings.Split(raw, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie("token")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie)
}
