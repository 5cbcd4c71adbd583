package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret string
	JWTTTL    time.Duration

	// LocalStoreDir holds one directory per guest device (cart and wishlist blobs).
	LocalStoreDir string

	SearchDebounce time.Duration
	SearchTimeout  time.Duration

	SnapshotCacheSize int
	SnapshotCacheTTL  time.Duration

	CORSOrigins       []string
	InternalSecretKey string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    getEnv("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		LocalStoreDir: getEnv("LOCAL_STORE_DIR", "./data/devices"),

		SearchDebounce: time.Duration(getEnvInt("SEARCH_DEBOUNCE_MS", 500)) * time.Millisecond,
		SearchTimeout:  time.Duration(getEnvInt("SEARCH_TIMEOUT_MS", 8000)) * time.Millisecond,

		SnapshotCacheSize: getEnvInt("SNAPSHOT_CACHE_SIZE", 512),
		SnapshotCacheTTL:  time.Duration(getEnvInt("SNAPSHOT_CACHE_TTL_SEC", 60)) * time.Second,

		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getEnvInt falls back on missing, malformed or non-positive values.
func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
