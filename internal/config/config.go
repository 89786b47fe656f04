package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment. A .env file
// in the working directory is loaded first when present.
type Config struct {
	HTTPPort string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BybitBaseURL  string
	BybitWSURL    string
	StreamEnabled bool

	Symbols       []string
	ScanInterval  time.Duration
	AlertMinScore int

	FirebaseCredentialsPath string
}

var defaultSymbols = []string{
	"BTCUSDT", "ETHUSDT", "SOLUSDT", "BNBUSDT", "XRPUSDT",
	"DOGEUSDT", "ADAUSDT", "AVAXUSDT", "LINKUSDT", "DOTUSDT",
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	return Config{
		HTTPPort:                getEnv("PORT", "8080"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		BybitBaseURL:            os.Getenv("BYBIT_BASE_URL"),
		BybitWSURL:              os.Getenv("BYBIT_WS_URL"),
		StreamEnabled:           getEnvBool("STREAM_ENABLED", false),
		Symbols:                 getEnvList("SYMBOLS", defaultSymbols),
		ScanInterval:            getEnvDuration("SCAN_INTERVAL", time.Minute),
		AlertMinScore:           getEnvInt("ALERT_MIN_SCORE", 70),
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}

// getEnvList parses a comma-separated list, trimming whitespace and
// uppercasing symbols so "btcusdt, ethusdt" works.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
