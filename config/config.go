package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"storefront-backend/logger"
)

func LoadEnv() error {
	// Try to load .env file if it exists (for local development).
	// On production the environment variables are set directly.
	err := godotenv.Load()
	if err != nil {
		// .env file not found is not an error - it might be on production
		// Environment variables are already available in os.Getenv()
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	// Critical variables - application cannot function without these
	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	// Non-critical variables - log warnings but don't fail
	if os.Getenv("FIREBASE_PROJECT_ID") == "" {
		logger.Log.Warn().Msg("FIREBASE_PROJECT_ID not set - cart storage will not work")
	}
	if os.Getenv("FIREBASE_STORAGE_BUCKET") == "" {
		logger.Log.Warn().Msg("FIREBASE_STORAGE_BUCKET not set - image uploads will fail")
	}
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		logger.Log.Warn().Msg("GOOGLE_APPLICATION_CREDENTIALS not set - Firebase features may not work")
	}
	if os.Getenv("FRONTEND_URL") == "" {
		logger.Log.Warn().Msg("FRONTEND_URL not set - CORS may not work correctly")
	}
	if os.Getenv("ADMIN_URL") == "" {
		logger.Log.Warn().Msg("ADMIN_URL not set")
	}
	if os.Getenv("REDIS_ADDR") == "" {
		logger.Log.Warn().Msg("REDIS_ADDR not set - product cache disabled")
	}
	if os.Getenv("WHATSAPP_PHONE") == "" {
		logger.Log.Warn().Msg("WHATSAPP_PHONE not set - checkout handoff links will have no recipient")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
