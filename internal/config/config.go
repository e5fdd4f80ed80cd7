package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not configured")

type Config struct {
	Env  string
	Port int

	DBURL string

	// auth
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// redis (stock alert queue)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StockAlertThreshold int

	AllowedOrigins []string

	// optional startup admin account
	AdminUsername string
	AdminPassword string
	AdminRole     string

	// tracing, empty disables the exporter
	OTLPEndpoint string
}

func Load() Config {
	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 5000),
		DBURL: buildDBURL(),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		TokenTTL:   24 * time.Hour,
		BcryptCost: getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		StockAlertThreshold: getEnvInt("STOCK_ALERT_THRESHOLD", 10),

		AllowedOrigins: splitList(getEnv("CLIENT_URL", "http://localhost:5173")),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminRole:     getEnv("ADMIN_ROLE", "admin"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// Validate reports configuration faults that must stop the process before it
// starts serving. An unset signing secret would otherwise only surface on the
// first login.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}

	return nil
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	user := getEnv("PGUSER", "postgres")
	pass := getEnv("PGPASSWORD", "postgres")
	name := getEnv("PGDATABASE", "daco_clinic")
	ssl := getEnv("PGSSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")

	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
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

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}
