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
	Port        string
	DBUrl       string
	FrontendURL string
	// Supabase: the URL + anon key back the non-privileged client, the
	// service role key is only handed to the user deletion routine.
	SupabaseUrl            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	IdentityTimeout        time.Duration
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	// Authorization knobs
	TaskMutationPolicy   string
	BlockCheckFailClosed bool
	// User deletion
	DeleteRetryAttempts int
	DeleteRetryBackoff  time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional; production injects the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Trailing slash would produce ".co//auth/v1/..."
		SupabaseUrl:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", getEnv("SUPABASE_KEY", "")),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		IdentityTimeout:        time.Duration(getEnvInt("IDENTITY_TIMEOUT_SECONDS", 10)) * time.Second,
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		// Authorization knobs
		TaskMutationPolicy:   getEnv("TASK_MUTATION_POLICY", "any_authenticated"),
		BlockCheckFailClosed: getEnvBool("BLOCK_CHECK_FAIL_CLOSED", false),
		// User deletion
		DeleteRetryAttempts: getEnvInt("DELETE_RETRY_ATTEMPTS", 3),
		DeleteRetryBackoff:  time.Duration(getEnvInt("DELETE_RETRY_BACKOFF_MS", 200)) * time.Millisecond,
	}

	// The clients are still built without these; they fail on first use.
	if cfg.SupabaseUrl == "" || cfg.SupabaseAnonKey == "" {
		log.Println("WARNING: SUPABASE_URL or SUPABASE_ANON_KEY is missing. Identity calls will fail until configured.")
	}
	if cfg.SupabaseServiceRoleKey == "" {
		log.Println("WARNING: SUPABASE_SERVICE_ROLE_KEY is missing. Hard delete of users is unavailable.")
	}
	if cfg.SupabaseJWTSecret == "" {
		log.Println("WARNING: SUPABASE_JWT_SECRET is missing. HS256 access tokens will be checked with the identity service on every request.")
	}
	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting, session revocation and deletion leases will use in-memory fallback.")
	}
	if cfg.DeleteRetryAttempts < 1 {
		cfg.DeleteRetryAttempts = 1
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return os.Getenv("GIN_MODE") == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
