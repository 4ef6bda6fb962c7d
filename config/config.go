package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"restaurant-platform-api/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the shared GORM handle, initialized by InitDB.
var DB *gorm.DB

// App holds the loaded runtime configuration.
var App AppConfig

// AppConfig aggregates runtime configuration, injected through env vars.
type AppConfig struct {
	Port    string
	GinMode string

	// DatabaseURL selects Postgres when set; DBPath is the sqlite fallback
	// for local development.
	DatabaseURL string
	DBPath      string

	// AdminAPIKey is the shared secret for the X-API-Key admin header.
	AdminAPIKey string

	// DraftTTL is how long a draft order stays usable after creation.
	DraftTTL time.Duration

	// Redis-backed rate limiting for the public write endpoints.
	// Disabled when RedisAddr is empty.
	RedisAddr  string
	RedisDB    int
	RateLimit  int
	RateWindow time.Duration

	// Supabase storage for image uploads. Upload endpoints answer 500
	// until all three are configured.
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	AllowedOrigins []string
}

// Load reads and validates configuration, falling back to defaults where
// it is safe to do so. ADMIN_API_KEY has no default on purpose.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBPath:             getEnv("DB_PATH", "restaurant.db"),
		AdminAPIKey:        getEnv("ADMIN_API_KEY", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RateLimit:          30,
		RateWindow:         time.Minute,
		SupabaseURL:        strings.TrimSuffix(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "menu-images"),
		AllowedOrigins:     splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5500")),
	}

	if cfg.AdminAPIKey == "" {
		return AppConfig{}, fmt.Errorf("ADMIN_API_KEY must be set")
	}

	ttlMinutes, err := getEnvInt("DRAFT_TTL_MINUTES", 60)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid DRAFT_TTL_MINUTES: %w", err)
	}
	if ttlMinutes <= 0 {
		return AppConfig{}, fmt.Errorf("DRAFT_TTL_MINUTES must be > 0")
	}
	cfg.DraftTTL = time.Duration(ttlMinutes) * time.Minute

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("RATE_LIMIT", cfg.RateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("RATE_LIMIT must be > 0")
	}
	cfg.RateLimit = rateLimit

	rateWindowSec, err := getEnvInt("RATE_WINDOW_SEC", int(cfg.RateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("RATE_WINDOW_SEC must be > 0")
	}
	cfg.RateWindow = time.Duration(rateWindowSec) * time.Second

	App = cfg
	return cfg, nil
}

// InitDB opens the database and migrates the schema. Postgres is used when
// DATABASE_URL is set (row-level FOR UPDATE locks are real there); sqlite
// serves local development, where its single-writer model stands in.
func InitDB(cfg AppConfig) error {
	var dialector gorm.Dialector
	if cfg.DatabaseURL != "" {
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		dialector = sqlite.Open(cfg.DBPath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Location{},
		&models.Event{},
		&models.Order{},
		&models.OrderItem{},
		&models.DailyQueueCounter{},
		&models.Reservation{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	DB = db
	logrus.Info("database connected and migrated")
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
