package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and read-only afterwards. Provider
// credentials and base URLs are opaque here; adapters receive them at
// construction instead of reaching for globals.
type Config struct {
	Port string

	NASAAPIKey    string
	APODBaseURL   string
	ImagesBaseURL string
	DonkiBaseURL  string
	TLEBaseURL    string

	ModelName    string
	GeminiAPIKey string
	UseMockLLM   bool

	RefreshInterval time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration in %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}

// Load reads the environment (and an optional .env file) and builds the config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("SENTINEL_PORT", "8080"),

		NASAAPIKey:    getEnv("SENTINEL_NASA_API_KEY", "DEMO_KEY"),
		APODBaseURL:   getEnv("SENTINEL_APOD_BASE_URL", "https://api.nasa.gov"),
		ImagesBaseURL: getEnv("SENTINEL_IMAGES_BASE_URL", "https://images-api.nasa.gov"),
		DonkiBaseURL:  getEnv("SENTINEL_DONKI_BASE_URL", "https://api.nasa.gov"),
		TLEBaseURL:    getEnv("SENTINEL_TLE_BASE_URL", "http://tle.ivanstanojevic.me"),

		ModelName:    getEnv("SENTINEL_MODEL_NAME", "gemini-2.5-flash"),
		GeminiAPIKey: getEnv("SENTINEL_GEMINI_API_KEY", ""),
		UseMockLLM:   getBoolEnv("SENTINEL_USE_MOCK_LLM", false),

		RefreshInterval: getDurationEnv("SENTINEL_REFRESH_INTERVAL", 5*time.Minute),
	}

	if !cfg.UseMockLLM && cfg.GeminiAPIKey == "" {
		log.Fatal("SENTINEL_GEMINI_API_KEY must be set unless SENTINEL_USE_MOCK_LLM is enabled")
	}

	return cfg
}
