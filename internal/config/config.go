package config

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string // empty means the in-memory backend

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TokenTTL  time.Duration

	OTLPEndpoint string

	CORSOrigins []string

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// ClientConfig configures the jurnal client binary.
type ClientConfig struct {
	Env string

	ServerURL string
	// DataDir holds the session and preference files.
	DataDir string

	PollInterval   time.Duration
	SplashTimeout  time.Duration
	RequestTimeout time.Duration
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: getEnv("DATABASE_URL", buildDBURL()),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "dev-only-secret"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 12*time.Hour),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		CORSOrigins: getEnvList("CORS_ORIGINS"),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
	}
}

func LoadClient() ClientConfig {
	_ = godotenv.Load()

	dataDir := getEnv("JURNALKU_DATA_DIR", "")
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		dataDir = filepath.Join(base, "jurnalku")
	}

	return ClientConfig{
		Env:            getEnv("APP_ENV", "dev"),
		ServerURL:      getEnv("JURNALKU_SERVER_URL", "http://localhost:8080"),
		DataDir:        dataDir,
		PollInterval:   getEnvDuration("JURNALKU_POLL_INTERVAL", 30*time.Second),
		SplashTimeout:  getEnvDuration("JURNALKU_SPLASH_TIMEOUT", 8*time.Second),
		RequestTimeout: getEnvDuration("JURNALKU_REQUEST_TIMEOUT", 15*time.Second),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "")
	if host == "" {
		return ""
	}

	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "jurnalku")
	pass := getEnv("DB_PASSWORD", "jurnalku")
	name := getEnv("DB_NAME", "jurnalku")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fallback
		}
		return d
	}
	return fallback
}
