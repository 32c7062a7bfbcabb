package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Firebase  FirebaseConfig
	LLM       LLMConfig
	Editor    EditorConfig
	RateLimit RateLimitConfig
	Export    ExportConfig
	App       AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	AnalysisTTL time.Duration
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type FirebaseConfig struct {
	CredentialsPath string
}

type LLMConfig struct {
	GatewayURL          string
	APIKey              string
	Model               string
	GenerationMaxTokens int
	AnalysisMaxTokens   int
	AssistantMaxTokens  int
}

type EditorConfig struct {
	Debounce time.Duration
	IdleTTL  time.Duration
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type ExportConfig struct {
	ArchiveBucket   string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// ArchiveEnabled reports whether exported files are copied to S3.
func (e ExportConfig) ArchiveEnabled() bool {
	return e.ArchiveBucket != ""
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "research_docs"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			AnalysisTTL: getEnvAsDuration("ANALYSIS_CACHE_TTL", 24*time.Hour),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		LLM: LLMConfig{
			GatewayURL:          getEnv("LLM_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1"),
			APIKey:              getEnv("LLM_API_KEY", ""),
			Model:               getEnv("LLM_MODEL", "google/gemini-2.5-flash"),
			GenerationMaxTokens: getEnvAsInt("LLM_GENERATION_MAX_TOKENS", 16000),
			AnalysisMaxTokens:   getEnvAsInt("LLM_ANALYSIS_MAX_TOKENS", 4000),
			AssistantMaxTokens:  getEnvAsInt("LLM_ASSISTANT_MAX_TOKENS", 2000),
		},
		Editor: EditorConfig{
			Debounce: getEnvAsDuration("EDITOR_DEBOUNCE", 2*time.Second),
			IdleTTL:  getEnvAsDuration("EDITOR_IDLE_TTL", 30*time.Minute),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("AI_RATE_PER_MINUTE", 10),
			Burst:     getEnvAsInt("AI_RATE_BURST", 3),
		},
		Export: ExportConfig{
			ArchiveBucket:   getEnv("EXPORT_ARCHIVE_BUCKET", ""),
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.App.IsProduction() && c.Firebase.CredentialsPath == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required in production")
	}

	if c.Editor.Debounce <= 0 {
		return fmt.Errorf("EDITOR_DEBOUNCE must be positive")
	}

	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("AI_RATE_PER_MINUTE and AI_RATE_BURST must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
