package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	LogLevel string

	// MigrationsPath overrides the embedded migrations, e.g. file://migrations.
	// "embedded" (the default) uses the SQL files compiled into pkg/db.
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often a pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Auth AuthConfig

	POS POSConfig

	// DashboardAllowedOrigins is the CORS allowlist for the management dashboard.
	DashboardAllowedOrigins []string

	// RateLimitPerMinute caps write requests (booking create, transitions) per client IP.
	RateLimitPerMinute int

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string
	OTLPInsecure bool
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret string
	Audience  string
}

type POSConfig struct {
	Currency string
	TaxRate  decimal.Decimal
}

func Load() Config {
	// Local dev convenience; production relies on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		LogLevel:       env("LOG_LEVEL", "info"),
		MigrationsPath: env("MIGRATIONS_PATH", "embedded"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "carwash"),
			User:     env("DB_USER", "carwash"),
			Password: env("DB_PASSWORD", "carwash"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			Audience:  env("AUTH_AUDIENCE", "carwash-dashboard"),
		},
		POS: POSConfig{
			Currency: env("POS_CURRENCY", "USD"),
			TaxRate:  envDecimal("POS_TAX_RATE", "0"),
		},
		DashboardAllowedOrigins: envList("DASHBOARD_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		RateLimitPerMinute:      envInt("RATE_LIMIT_PER_MINUTE", 120),
		OTLPEndpoint:            os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:            os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
	}
}

func (c Config) IsProd() bool { return c.AppEnv == "prod" }

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// envDecimal reads a rate such as "0.08". Invalid values fall back.
func envDecimal(key, fallback string) decimal.Decimal {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		v = fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return decimal.RequireFromString(fallback)
	}
	return d
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
