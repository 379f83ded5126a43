package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Assistant AssistantConfig
	Ai        AIConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	JwtSecret          string
	NatsURL            string
	RedisURL           string
	FeedbackTopic      string
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	Store              string // "memory" or "redis"
	TTL                time.Duration
	MaxSessionsPerUser int
	TurnTimeout        time.Duration
}

type AssistantConfig struct {
	RecommendationLimit int
	DefaultBudget       float64
}

type AIConfig struct {
	OracleEnabled       bool
	OracleMinConfidence float64
	OracleTimeout       time.Duration
	LLMProvider         string // "ollama"
	LLMModel            string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL       string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			FeedbackTopic:      getEnv("FEEDBACK_TOPIC", "FEEDBACK_SUBMITTED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			Store:              getEnv("SESSION_STORE", "memory"),
			TTL:                getEnvAsDuration("SESSION_TTL", time.Hour),
			MaxSessionsPerUser: getEnvAsInt("MAX_SESSIONS_PER_USER", 5),
			TurnTimeout:        getEnvAsDuration("TURN_TIMEOUT", 20*time.Second),
		},
		Assistant: AssistantConfig{
			RecommendationLimit: getEnvAsInt("RECOMMENDATION_LIMIT", 8),
			DefaultBudget:       getEnvAsFloat("DEFAULT_BUDGET", 50),
		},
		Ai: AIConfig{
			OracleEnabled:       getEnvAsBool("ORACLE_ENABLED", false),
			OracleMinConfidence: getEnvAsFloat("ORACLE_MIN_CONFIDENCE", 0.6),
			OracleTimeout:       getEnvAsDuration("ORACLE_TIMEOUT", 3*time.Second),
			LLMProvider:         getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:            getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
