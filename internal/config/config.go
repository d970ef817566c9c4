package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration
	Timezone  string

	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string

	DB     DatabaseConfig
	Redis  RedisConfig
	Shop   ShopConfig
	Admin  AdminConfig
	Worker WorkerConfig
}

// DatabaseConfig contains connection parameters for the embedded SQLite store
// or a PostgreSQL server.
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters. An empty Host disables the cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// ShopConfig holds the business rule parameters of the store.
type ShopConfig struct {
	Name                    string
	VATRate                 float64
	DefaultWarrantyMonths   int
	RepairWarrantyMonths    int
	RepairEstimateDays      int
	PawnInterestRate        float64
	PawnTermDays            int
	PawnLoanRatio           float64
	LowStockThreshold       int
	DebtDueDays             int
	WarrantyExpiringDays    int
	InstallmentInterestRate float64
}

// AdminConfig holds the bootstrap administrator created on an empty staff table.
type AdminConfig struct {
	Username string
	Password string
	FullName string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	AlertInterval time.Duration
}

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Timezone = getEnv("TIMEZONE", "Asia/Ho_Chi_Minh")
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", DriverSQLite),
		Path:     getEnv("DB_PATH", "shop.db"),
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Shop rules
	var err error
	cfg.Shop = ShopConfig{
		Name:                  getEnv("SHOP_NAME", "Cửa hàng điện thoại"),
		DefaultWarrantyMonths: getEnvInt("DEFAULT_WARRANTY_MONTHS", 12),
		RepairWarrantyMonths:  getEnvInt("REPAIR_WARRANTY_MONTHS", 3),
		RepairEstimateDays:    getEnvInt("REPAIR_ESTIMATE_DAYS", 3),
		PawnTermDays:          getEnvInt("PAWN_TERM_DAYS", 30),
		LowStockThreshold:     getEnvInt("LOW_STOCK_THRESHOLD", 5),
		DebtDueDays:           getEnvInt("DEBT_DUE_DAYS", 30),
		WarrantyExpiringDays:  getEnvInt("WARRANTY_EXPIRING_DAYS", 30),
	}
	if cfg.Shop.VATRate, err = parseRateEnv("VAT_RATE", "0.10"); err != nil {
		return nil, fmt.Errorf("invalid VAT_RATE: %w", err)
	}
	if cfg.Shop.PawnInterestRate, err = parseRateEnv("PAWN_INTEREST_RATE", "0.03"); err != nil {
		return nil, fmt.Errorf("invalid PAWN_INTEREST_RATE: %w", err)
	}
	if cfg.Shop.PawnLoanRatio, err = parseRateEnv("PAWN_LOAN_RATIO", "0.75"); err != nil {
		return nil, fmt.Errorf("invalid PAWN_LOAN_RATIO: %w", err)
	}
	if cfg.Shop.InstallmentInterestRate, err = parseRateEnv("INSTALLMENT_INTEREST_RATE", "0"); err != nil {
		return nil, fmt.Errorf("invalid INSTALLMENT_INTEREST_RATE: %w", err)
	}

	// Bootstrap admin
	cfg.Admin = AdminConfig{
		Username: getEnv("ADMIN_USERNAME", "admin"),
		Password: getEnv("ADMIN_PASSWORD", ""),
		FullName: getEnv("ADMIN_FULL_NAME", "Quản trị viên"),
	}

	// Durations
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "12h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Redis.TTL, err = parseDurationEnv("REDIS_LOOKUP_TTL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid REDIS_LOOKUP_TTL: %w", err)
	}
	if cfg.Worker.AlertInterval, err = parseDurationEnv("ALERT_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid ALERT_INTERVAL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return errors.New("database configuration incomplete: DB_PATH must be set for sqlite3")
		}
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
			return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q: use %s or %s", c.DB.Driver, DriverSQLite, DriverPostgres)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for authentication")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}

	if c.Shop.PawnTermDays <= 0 {
		return errors.New("PAWN_TERM_DAYS must be > 0")
	}
	if c.Shop.DebtDueDays <= 0 {
		return errors.New("DEBT_DUE_DAYS must be > 0")
	}
	if c.Shop.DefaultWarrantyMonths < 0 || c.Shop.RepairWarrantyMonths < 0 {
		return errors.New("warranty months must be >= 0")
	}
	if c.Shop.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must be >= 0")
	}
	if c.Shop.PawnInterestRate == 0 {
		return errors.New("PAWN_INTEREST_RATE must be > 0")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location returns the store's time zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseRateEnv reads a fractional rate in [0, 1).
func parseRateEnv(key, def string) (float64, error) {
	raw := getEnv(key, def)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f >= 1 {
		return 0, fmt.Errorf("rate must be in [0, 1)")
	}
	return f, nil
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// splitList splits a comma-separated variable, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
