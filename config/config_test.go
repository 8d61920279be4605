package config

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"storefront-backend/logger"
)

func TestLoadEnv(t *testing.T) {
	// LoadEnv returns nil when no .env file exists
	err := LoadEnv()
	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidateEnvAllSet(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("DATABASE_URL", "test-db-url")
	defer os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("DATABASE_URL")

	err := ValidateEnv()
	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidateEnvWarnsThroughLogger(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("DATABASE_URL", "test-db-url")
	os.Unsetenv("FIREBASE_PROJECT_ID")
	defer os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("DATABASE_URL")

	var buf bytes.Buffer
	orig := logger.Log
	logger.Log = zerolog.New(&buf)
	defer func() { logger.Log = orig }()

	if err := ValidateEnv(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "FIREBASE_PROJECT_ID") {
		t.Errorf("expected a structured warning about FIREBASE_PROJECT_ID, got %q", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("expected warn level, got %q", out)
	}
}

func TestValidateEnvMissingJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	os.Setenv("DATABASE_URL", "test-db-url")
	defer os.Unsetenv("DATABASE_URL")

	err := ValidateEnv()
	if err == nil {
		t.Error("expected error for missing JWT_SECRET")
	}
}

func TestValidateEnvMissingDatabaseURL(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Unsetenv("DATABASE_URL")
	defer os.Unsetenv("JWT_SECRET")

	err := ValidateEnv()
	if err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidateEnvMissingBoth(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")

	err := ValidateEnv()
	if err == nil {
		t.Error("expected error for missing both")
	}
}

func TestGetEnvExisting(t *testing.T) {
	os.Setenv("SOME_TEST_KEY", "value")
	defer os.Unsetenv("SOME_TEST_KEY")

	if got := GetEnv("SOME_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("expected value, got %s", got)
	}
}

func TestGetEnvDefault(t *testing.T) {
	os.Unsetenv("SOME_MISSING_KEY")

	if got := GetEnv("SOME_MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %s", got)
	}
}
