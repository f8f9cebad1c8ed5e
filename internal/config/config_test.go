package config

import (
	"os"
	"reflect"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("GROQ_API_KEY", "groq_key")
		setEnv("VEGETARIAN_DAYS", "")
		setEnv("DEFAULT_COVERS", "")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "11, 22")
		setEnv("ADMIN_TELEGRAM_ID", "11")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.GroqAPIKey != "groq_key" {
			t.Errorf("Expected GroqAPIKey to be 'groq_key', got '%s'", cfg.GroqAPIKey)
		}
		if !reflect.DeepEqual(cfg.VegetarianDays, []int{2}) {
			t.Errorf("Expected default vegetarian day [2], got %v", cfg.VegetarianDays)
		}
		if cfg.DefaultCovers != 150 {
			t.Errorf("Expected 150 default covers, got %d", cfg.DefaultCovers)
		}
		if !reflect.DeepEqual(cfg.TelegramAllowedUserIDs, []int64{11, 22}) {
			t.Errorf("Expected allowed IDs [11 22], got %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 11 {
			t.Errorf("Expected admin ID 11, got %d", cfg.AdminTelegramID)
		}
		if cfg.GhostRecipeTag != "recettes" {
			t.Errorf("Expected default Ghost tag 'recettes', got '%s'", cfg.GhostRecipeTag)
		}
	})

	t.Run("CustomVegetarianDays", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("GROQ_API_KEY", "groq_key")
		setEnv("VEGETARIAN_DAYS", "1,3")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !reflect.DeepEqual(cfg.VegetarianDays, []int{1, 3}) {
			t.Errorf("Expected [1 3], got %v", cfg.VegetarianDays)
		}
	})

	t.Run("VegetarianDaysDisabled", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("GROQ_API_KEY", "groq_key")
		setEnv("VEGETARIAN_DAYS", "none")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.VegetarianDays == nil || len(cfg.VegetarianDays) != 0 {
			t.Errorf("Expected an empty non-nil slice, got %#v", cfg.VegetarianDays)
		}
	})

	t.Run("InvalidVegetarianDay", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("GROQ_API_KEY", "groq_key")
		setEnv("VEGETARIAN_DAYS", "6")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for day index 6, got nil")
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		setEnv("GROQ_API_KEY", "groq_key")
		setEnv("VEGETARIAN_DAYS", "")

		os.Unsetenv("GEMINI_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingGroqAPIKey", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("VEGETARIAN_DAYS", "")

		os.Unsetenv("GROQ_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GROQ_API_KEY, got nil")
		}
		expectedError := "GROQ_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})
}

func TestRequireAPI(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireAPI()
	if err == nil || err.Error() != "API_JWT_SECRET environment variable not set" {
		t.Errorf("Expected missing secret error, got %v", err)
	}

	cfg.APIJWTSecret = "s3cret"
	if err := cfg.RequireAPI(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
