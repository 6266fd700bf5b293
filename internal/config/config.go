package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Gemini enrichment
	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	// Yellowcake resource extraction
	YellowcakeAPIKey string
	YellowcakeAPIURL string
	SearchTimeout    time.Duration

	// Sentry
	SentryDSN        string
	TracesSampleRate float64
	Environment      string

	// Server
	Port        string
	CORSOrigins string

	// Screenshot storage
	ScreenshotsDir string
}

// Features enumerates which optional pipeline stages are active. Derived once
// at load; the pipeline never re-reads the environment.
type Features struct {
	Enrichment bool
	Resources  bool
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "reports_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AITimeout:    parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		YellowcakeAPIKey: getEnv("YELLOWCAKE_API_KEY", ""),
		YellowcakeAPIURL: getEnv("YELLOWCAKE_API_URL", "https://api.yellowcake.dev/v1/scrape"),
		SearchTimeout:    parseDuration(getEnv("SEARCH_TIMEOUT", "15s"), 15*time.Second),

		SentryDSN:        getEnv("SENTRY_DSN", ""),
		TracesSampleRate: parseFloat(getEnv("TRACES_SAMPLE_RATE", "1.0"), 1.0),
		Environment:      getEnv("APP_ENV", "dev"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		ScreenshotsDir: getEnv("SCREENSHOTS_DIR", "screenshots"),
	}
}

// Features derives stage activation from the presence of credentials.
func (c *Config) Features() Features {
	return Features{
		Enrichment: c.GeminiAPIKey != "",
		Resources:  c.YellowcakeAPIKey != "",
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
