package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath  string
	DatabaseURL   string // optional Postgres plan store
	CataloguePath string

	// Planning rules
	VegetarianDays []int
	MatchMode      string
	DefaultCovers  int

	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string

	// HTTP API
	APIPort      string
	APIJWTSecret string
	CORSOrigins  []string

	// Ghost blog (optional)
	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string
	GhostRecipeTag  string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

const (
	defaultDatabasePath  = "data/cantine.db"
	defaultCataloguePath = "data/catalogue.yaml"
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultAPIPort       = "8080"
	defaultCovers        = 150
	defaultGhostTag      = "recettes"
)

// LoadDotEnv loads a .env file outside production. A missing file is not an error.
func LoadDotEnv() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	groqAPIKey := os.Getenv("GROQ_API_KEY")
	if groqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	vegDays, err := parseVegetarianDays(os.Getenv("VEGETARIAN_DAYS"))
	if err != nil {
		return nil, err
	}

	covers := defaultCovers
	if v := os.Getenv("DEFAULT_COVERS"); v != "" {
		covers, err = strconv.Atoi(v)
		if err != nil || covers <= 0 {
			return nil, fmt.Errorf("DEFAULT_COVERS must be a positive integer, got %q", v)
		}
	}

	// Telegram Config (Optional for CLI, required for Bot)
	var allowed []int64
	for _, s := range splitList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS")) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", s, err)
		}
		allowed = append(allowed, id)
	}

	var adminID int64
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		adminID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", v, err)
		}
	}

	return &Config{
		DatabasePath:           getEnv("DATABASE_PATH", defaultDatabasePath),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		CataloguePath:          getEnv("CATALOGUE_PATH", defaultCataloguePath),
		VegetarianDays:         vegDays,
		MatchMode:              os.Getenv("INGREDIENT_MATCH"),
		DefaultCovers:          covers,
		GeminiAPIKey:           geminiAPIKey,
		GeminiModel:            getEnv("GEMINI_MODEL", defaultGeminiModel),
		GroqAPIKey:             groqAPIKey,
		APIPort:                getEnv("API_PORT", defaultAPIPort),
		APIJWTSecret:           os.Getenv("API_JWT_SECRET"),
		CORSOrigins:            splitList(os.Getenv("CORS_ORIGINS")),
		GhostURL:               os.Getenv("GHOST_URL"),
		GhostContentKey:        os.Getenv("GHOST_CONTENT_KEY"),
		GhostAdminKey:          os.Getenv("GHOST_ADMIN_KEY"),
		GhostRecipeTag:         getEnv("GHOST_RECIPE_TAG", defaultGhostTag),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
	}, nil
}

// RequireAPI checks the settings the HTTP API cannot run without.
func (c *Config) RequireAPI() error {
	if c.APIJWTSecret == "" {
		return fmt.Errorf("API_JWT_SECRET environment variable not set")
	}
	return nil
}

// RequireTelegram checks the settings the bot cannot run without.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// parseVegetarianDays reads a comma separated list of weekday indexes
// (0 = Monday). Empty means Wednesday only, "none" disables the rule.
func parseVegetarianDays(v string) ([]int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return []int{2}, nil
	}
	if strings.EqualFold(v, "none") {
		return []int{}, nil
	}

	var days []int
	for _, s := range splitList(v) {
		d, err := strconv.Atoi(s)
		if err != nil || d < 0 || d > 4 {
			return nil, fmt.Errorf("invalid VEGETARIAN_DAYS entry %q: expected 0-4", s)
		}
		days = append(days, d)
	}
	return days, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
