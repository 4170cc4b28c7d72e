package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to wire the service. Values come from
// the environment, optionally seeded from a .env file.
type Config struct {
	Port string

	DBDriver   string // "postgres" | "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string
	DBTracing  bool

	RedisAddress string

	JWTSecret     string
	AdminUsername string
	AdminPassword string

	AllowedOrigins  string
	BodyLimitBytes  int
	RateLimitMax    int
	RateLimitWindow time.Duration

	StoreTimeout time.Duration
	LockTTL      time.Duration

	LogLevel       string
	WhatsAppRegion string
	BusinessName   string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	// A missing .env is fine; containers pass plain env vars.
	_ = godotenv.Load()

	bodyLimit := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimit <= 0 {
		bodyLimit = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if strings.TrimSpace(jwtSecret) == "" {
		jwtSecret = os.Getenv("JWT_SECRET")
	}

	return Config{
		Port:            envString("PORT", "8080"),
		DBDriver:        strings.ToLower(envString("DB_DRIVER", "postgres")),
		DBHost:          envString("DB_HOST", "db"),
		DBPort:          envString("DB_PORT", "5432"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		SQLitePath:      envString("SQLITE_PATH", "mandi.db"),
		DBTracing:       envBool("DB_TRACING", false),
		RedisAddress:    os.Getenv("REDIS_ADDRESS"),
		JWTSecret:       jwtSecret,
		AdminUsername:   os.Getenv("ADMIN_USERNAME"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AllowedOrigins:  envString("ALLOWED_ORIGINS", "*"),
		BodyLimitBytes:  bodyLimit,
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 120),
		RateLimitWindow: time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		StoreTimeout:    time.Duration(envInt("STORE_TIMEOUT_SECONDS", 5)) * time.Second,
		LockTTL:         time.Duration(envInt("LOCK_TTL_SECONDS", 15)) * time.Second,
		LogLevel:        envString("LOG_LEVEL", "info"),
		WhatsAppRegion:  envString("WHATSAPP_REGION", "IN"),
		BusinessName:    envString("BUSINESS_NAME", "Mandi"),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
