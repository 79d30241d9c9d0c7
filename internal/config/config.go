package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI        string
	DBName          string
	JWTSecret       string
	TokenTTL        time.Duration
	StripeSecretKey string
	AuthRatePerMin  int
	AuthRateBurst   int
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "atypikhouse"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		TokenTTL:        getDurationEnv("TOKEN_TTL", 24, time.Hour),
		StripeSecretKey: getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		AuthRatePerMin:  getIntEnv("AUTH_RATE_PER_MIN", 30),
		AuthRateBurst:   getIntEnv("AUTH_RATE_BURST", 10),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
