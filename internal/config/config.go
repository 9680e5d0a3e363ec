package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Env         string
	LogLevel    string
	LogEncoding string
	FrontendURL string

	// Storage
	StoreBackend       string
	DatabaseURL        string
	MigrationsDir      string
	FirestoreProjectID string
	GoogleCredentials  string

	// Redis
	RedisURL    string
	WorkerCount int

	// JWT
	JWTSecret string

	// Text provider
	TextProvider         string
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int
	OpenAIAPIKey         string
	OpenAIModel          string
	OpenAIBaseURL        string

	// Image provider
	ImageProvider       string
	HuggingFaceToken    string
	HuggingFaceModelURL string
	ImageWidth          int
	ImageHeight         int
	ImageCallDelay      time.Duration

	// Image store
	ImageStore         string
	ImageStoragePath   string
	ImagePublicBaseURL string
	GCSBucket          string
	GCSCDNDomain       string

	// Generation
	GenerateRatePerMinute int
	GenerationMaxAttempts int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Env:         getEnvOrDefault("ENV", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogEncoding: getEnvOrDefault("LOG_ENCODING", "json"),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),

		StoreBackend:       strings.ToLower(getEnvOrDefault("STORE_BACKEND", "postgres")),
		DatabaseURL:        getEnvOrDefault("DATABASE_URL", ""),
		MigrationsDir:      getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		FirestoreProjectID: getEnvOrDefault("FIRESTORE_PROJECT_ID", ""),
		GoogleCredentials:  getEnvOrDefault("GOOGLE_APPLICATION_CREDENTIALS", ""),

		RedisURL:    mustGetEnv("REDIS_URL"),
		WorkerCount: getEnvAsIntOrDefault("WORKER_COUNT", 3),

		JWTSecret: mustGetEnv("JWT_SECRET"),

		TextProvider:         strings.ToLower(getEnvOrDefault("TEXT_PROVIDER", "gemini")),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		OpenAIAPIKey:         getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:        getEnvOrDefault("OPENAI_BASE_URL", ""),

		ImageProvider:       strings.ToLower(getEnvOrDefault("IMAGE_PROVIDER", "huggingface")),
		HuggingFaceToken:    getEnvOrDefault("HUGGINGFACE_TOKEN", ""),
		HuggingFaceModelURL: getEnvOrDefault("HUGGINGFACE_MODEL_URL", "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-xl-base-1.0"),
		ImageWidth:          getEnvAsIntOrDefault("IMAGE_WIDTH", 512),
		ImageHeight:         getEnvAsIntOrDefault("IMAGE_HEIGHT", 512),
		ImageCallDelay:      getEnvAsDurationOrDefault("IMAGE_CALL_DELAY", 2*time.Second),

		ImageStore:         strings.ToLower(getEnvOrDefault("IMAGE_STORE", "local")),
		ImageStoragePath:   getEnvOrDefault("IMAGE_STORAGE_PATH", "./uploads"),
		ImagePublicBaseURL: getEnvOrDefault("IMAGE_PUBLIC_BASE_URL", "/uploads"),
		GCSBucket:          getEnvOrDefault("GCS_BUCKET", ""),
		GCSCDNDomain:       getEnvOrDefault("GCS_CDN_DOMAIN", ""),

		GenerateRatePerMinute: getEnvAsIntOrDefault("GENERATE_RATE_PER_MINUTE", 5),
		GenerationMaxAttempts: getEnvAsIntOrDefault("GENERATION_MAX_ATTEMPTS", 1),
	}

	return cfg
}

// Validate checks enum values and that each selected backend has what it
// needs. A missing image provider credential is not an error: images then
// fall back to placeholders.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	case "firestore":
		if c.FirestoreProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required when STORE_BACKEND=firestore")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.TextProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when TEXT_PROVIDER=gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TEXT_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown TEXT_PROVIDER %q", c.TextProvider)
	}

	switch c.ImageProvider {
	case "huggingface", "openai", "none":
	default:
		return fmt.Errorf("unknown IMAGE_PROVIDER %q", c.ImageProvider)
	}

	switch c.ImageStore {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when IMAGE_STORE=gcs")
		}
	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", c.ImageStore)
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	if c.GenerationMaxAttempts < 1 {
		return fmt.Errorf("GENERATION_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault accepts Go durations ("1500ms") or a bare number
// of milliseconds.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
