package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/payment"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsurePlaceIndexes(db); err != nil {
		log.Printf("⚠️ place index warning: %v", err)
	}
	if err := database.EnsureBookingIndexes(db); err != nil {
		log.Printf("⚠️ booking index warning: %v", err)
	}
	if err := database.EnsureContactIndexes(db); err != nil {
		log.Printf("⚠️ contact index warning: %v", err)
	}

	payments := payment.NewClient(config.AppEnv.StripeSecretKey)

	authLimiter := middleware.NewLimiterStore(config.AppEnv.AuthRatePerMin, config.AppEnv.AuthRateBurst, 10*time.Minute)
	defer authLimiter.Stop()

	jwtSecret := config.AppEnv.JWTSecret

	r := gin.Default()
	r.Static("/public", "./public")

	r.GET("/places", handlers.GetPlaces(db))
	r.GET("/places/:id", handlers.SinglePlace(db))
	r.GET("/places/search/:key", handlers.SearchPlaces(db))
	r.POST("/places/:id/reviews", middleware.UserAuth(jwtSecret), handlers.AddReview(db))
	r.POST("/places/:id/reviews/:reviewId/replies", middleware.UserAuth(jwtSecret), handlers.AddReply(db))

	user := r.Group("/user")
	{
		user.POST("/register", middleware.RateLimit(authLimiter), handlers.Register(db, jwtSecret, config.AppEnv.TokenTTL))
		user.POST("/register-owner", middleware.RateLimit(authLimiter), handlers.RegisterOwner(db))
		user.POST("/login", middleware.RateLimit(authLimiter), handlers.Login(db, jwtSecret, config.AppEnv.TokenTTL))
		user.GET("/logout", handlers.Logout())
		user.GET("/me", middleware.UserAuth(jwtSecret), handlers.GetMe(db))
		user.PATCH("/me", middleware.UserAuth(jwtSecret), handlers.UpdateProfile(db))
	}

	bookings := r.Group("/bookings")
	bookings.Use(middleware.UserAuth(jwtSecret))
	{
		bookings.POST("", handlers.CreateBooking(db))
		bookings.GET("", handlers.GetBookings(db))
		bookings.POST("/create-payment-intent/:id", handlers.CreatePaymentIntent(db, payments))
	}

	r.POST("/upload", middleware.UserAuth(jwtSecret), middleware.RoleGuard(models.RoleOwner, models.RoleAdmin), handlers.UploadPhotos())

	owner := r.Group("/owner")
	owner.Use(middleware.UserAuth(jwtSecret), middleware.RoleGuard(models.RoleOwner))
	{
		owner.GET("/places", handlers.GetMyPlaces(db))
		owner.POST("/places", handlers.CreateMyPlace(db))
		owner.GET("/places/:id", handlers.GetMyPlace(db))
		owner.PUT("/places/:id", handlers.UpdateMyPlace(db))
		owner.PATCH("/places/:id/toggle", handlers.ToggleMyPlaceStatus(db))
		owner.DELETE("/places/:id", handlers.DeleteMyPlace(db))

		owner.GET("/stats", handlers.GetMyStats(db))
		owner.GET("/balance", handlers.GetMyBalance(db))
		owner.POST("/withdrawal", handlers.RequestWithdrawal(db))
		owner.GET("/bookings", handlers.GetMyBookings(db))
	}

	// Moderators get the read-only admin surface; every mutation stays
	// admin-only.
	adminRead := r.Group("/admin")
	adminRead.Use(middleware.UserAuth(jwtSecret), middleware.RoleGuard(models.RoleAdmin, models.RoleModerator))
	{
		adminRead.GET("/users", handlers.GetAllUsers(db))
		adminRead.GET("/owners/pending", handlers.GetPendingOwners(db))
		adminRead.GET("/places", handlers.GetAllPlacesAdmin(db))
		adminRead.GET("/places/owner/:id", handlers.GetPlacesByOwner(db))
		adminRead.GET("/perks", handlers.GetAllPerks(db))
		adminRead.GET("/reviews", handlers.GetAllReviews(db))
	}

	admin := r.Group("/admin")
	admin.Use(middleware.UserAuth(jwtSecret), middleware.RoleGuard(models.RoleAdmin))
	{
		admin.POST("/users", handlers.CreateManager(db))
		admin.PUT("/users/:id", handlers.UpdateUser(db))
		admin.PATCH("/users/:id/role", handlers.UpdateUserRole(db))
		admin.DELETE("/users/:id", handlers.DeleteUser(db))

		admin.PATCH("/owners/:id/approve", handlers.ApproveOwner(db))
		admin.PATCH("/owners/:id/reject", handlers.RejectOwner(db))

		admin.POST("/places", handlers.AddPlaceAdmin(db))
		admin.PUT("/places/:id", handlers.UpdatePlaceAdmin(db))
		admin.DELETE("/places/:id", handlers.DeletePlaceAdmin(db))

		admin.DELETE("/perks/:name", handlers.DeletePerk(db))
		admin.DELETE("/reviews/:reviewId", handlers.DeleteReview(db))
		admin.DELETE("/reviews/:reviewId/replies/:replyId", handlers.DeleteReply(db))
	}

	r.POST("/contact", handlers.SubmitContactForm(db))
	r.GET("/contact", middleware.UserAuth(jwtSecret), middleware.RoleGuard(models.RoleAdmin, models.RoleModerator), handlers.GetContactMessages(db))
	r.POST("/contact/:id/reply", middleware.UserAuth(jwtSecret), middleware.RoleGuard(models.RoleAdmin), handlers.ReplyToMessage(db))
	r.DELETE("/contact/:id", middleware.UserAuth(jwtSecret), middleware.RoleGuard(models.RoleAdmin), handlers.DeleteMessage(db))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
