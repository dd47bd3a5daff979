package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	// Gateway selects document persistence: memory, postgres or remote.
	Gateway    string
	APIBaseURL string
	APIToken   string

	// AugmentProvider selects the improver: remote, openai, gemini or none.
	AugmentProvider   string
	LLMModel          string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	LLMTimeout        time.Duration
	AugmentRatePerSec float64
	AugmentBurst      int
	ObjectStoreType   string
	LocalStoreDir     string
	AWSRegion         string
	S3Bucket          string
	S3Prefix          string
	SSEKMSKeyID       string
	LocationDataPath  string
	ChromePDF         bool
	ChromeExecPath    string

	JWTSecret string
	// DisableGuests rejects requests that only carry an X-Guest-Id header.
	DisableGuests bool
	// SessionIdleTimeout is how long an untouched editing session is kept.
	SessionIdleTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	gateway := normalizeGateway(getEnv("GATEWAY", ""), dbURL)

	if gateway == "postgres" && dbURL == "" {
		log.Printf("DATABASE_URL is required for the postgres gateway")
	}

	return Config{
		Port:              getEnv("PORT", "8080"),
		Env:               env,
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:       dbURL,
		Gateway:           gateway,
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:5000/api"),
		APIToken:          getEnv("API_TOKEN", ""),
		AugmentProvider:   normalizeProvider(getEnv("AUGMENT_PROVIDER", "remote")),
		LLMModel:          getEnv("LLM_MODEL", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		LLMTimeout:        getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		AugmentRatePerSec: getEnvFloat("AUGMENT_RATE_PER_SEC", 2),
		AugmentBurst:      getEnvInt("AUGMENT_BURST", 4),
		ObjectStoreType:   normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:         getEnv("AWS_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		LocationDataPath:  getEnv("LOCATION_DATA", ""),
		ChromePDF:         getEnvBool("CHROME_PDF", false),
		ChromeExecPath:    getEnv("CHROME_PATH", ""),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		DisableGuests:      getEnvBool("DISABLE_GUESTS", false),
		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil && v > 0 {
			return v
		}
		log.Printf("config: %s=%q is not a positive duration, using %s", key, raw, def)
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// normalizeGateway defaults to postgres when a database is configured.
func normalizeGateway(raw, dbURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "remote", "rest":
		return "remote"
	case "memory":
		return "memory"
	}
	if dbURL != "" {
		return "postgres"
	}
	return "memory"
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "gemini", "google":
		return "gemini"
	case "none", "off":
		return "none"
	default:
		return "remote"
	}
}
