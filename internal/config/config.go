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
	Server     ServerConfig
	Database   DatabaseConfig
	Gemini     GeminiConfig
	Generation GenerationConfig
	Storage    StorageConfig
	Cleanup    CleanupConfig
	Renderer   RendererConfig
	Events     EventsConfig
	Analysis   AnalysisConfig
}

type ServerConfig struct {
	Port            string
	Env             string
	CORSOrigin      string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

type DatabaseConfig struct {
	// UploadRegistry selects where upload records live: "memory" or "postgres".
	UploadRegistry string
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Backend     string
	Project     string
	Location    string
	MaxAttempts int
	Timeout     time.Duration
}

// TaskParams are the sampling parameters for one kind of model request.
type TaskParams struct {
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

type GenerationConfig struct {
	Analysis    TaskParams
	Improvement TaskParams
	Rewrite     TaskParams
}

type StorageConfig struct {
	Backend          string
	UploadPath       string
	MaxFileSize      int64
	AllowedFileTypes []string
	S3Bucket         string
	S3Region         string
	S3Prefix         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
}

type CleanupConfig struct {
	GraceDelay    time.Duration
	MaxAge        time.Duration
	SweepInterval time.Duration
	Concurrency   int
}

type RendererConfig struct {
	ChromePath string
	Timeout    time.Duration
}

type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

type AnalysisConfig struct {
	MinWords       int
	FallbackLocale string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3001"),
			Env:             getEnv("ENV", "development"),
			CORSOrigin:      getEnv("CORS_ORIGIN", "http://localhost:5173"),
			RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 100),
			RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", "15m"),
		},
		Database: DatabaseConfig{
			UploadRegistry: getEnv("UPLOAD_REGISTRY", "memory"),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "resume_analyzer"),
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Backend:     getEnv("GEMINI_BACKEND", "gemini"),
			Project:     getEnv("GOOGLE_CLOUD_PROJECT", ""),
			Location:    getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
			MaxAttempts: getEnvAsInt("GEMINI_MAX_ATTEMPTS", 1),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", "0s"),
		},
		Generation: GenerationConfig{
			Analysis: TaskParams{
				Temperature:     getEnvAsFloat32("ANALYSIS_TEMPERATURE", 0.3),
				MaxOutputTokens: int32(getEnvAsInt("ANALYSIS_MAX_TOKENS", 3000)),
			},
			Improvement: TaskParams{
				Temperature:     getEnvAsFloat32("IMPROVEMENT_TEMPERATURE", 0.7),
				TopK:            getEnvAsFloat32("IMPROVEMENT_TOP_K", 40),
				TopP:            getEnvAsFloat32("IMPROVEMENT_TOP_P", 0.95),
				MaxOutputTokens: int32(getEnvAsInt("IMPROVEMENT_MAX_TOKENS", 2048)),
			},
			Rewrite: TaskParams{
				Temperature:     getEnvAsFloat32("REWRITE_TEMPERATURE", 0.4),
				MaxOutputTokens: int32(getEnvAsInt("REWRITE_MAX_TOKENS", 4000)),
			},
		},
		Storage: StorageConfig{
			Backend:          getEnv("STORAGE_BACKEND", "local"),
			UploadPath:       getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize:      getEnvAsInt64("MAX_FILE_SIZE", 5242880),
			AllowedFileTypes: getEnvAsList("ALLOWED_FILE_TYPES", "pdf,doc,docx,txt"),
			S3Bucket:         getEnv("S3_BUCKET", ""),
			S3Region:         getEnv("S3_REGION", "us-east-1"),
			S3Prefix:         getEnv("S3_PREFIX", "uploads/"),
			S3Endpoint:       getEnv("S3_ENDPOINT", ""),
			S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
		},
		Cleanup: CleanupConfig{
			GraceDelay:    getEnvAsDuration("CLEANUP_GRACE_DELAY", "60s"),
			MaxAge:        getEnvAsDuration("CLEANUP_MAX_AGE", "24h"),
			SweepInterval: getEnvAsDuration("CLEANUP_SWEEP_INTERVAL", "1h"),
			Concurrency:   getEnvAsInt("CLEANUP_CONCURRENCY", 2),
		},
		Renderer: RendererConfig{
			ChromePath: getEnv("CHROME_PATH", ""),
			Timeout:    getEnvAsDuration("RENDER_TIMEOUT", "60s"),
		},
		Events: EventsConfig{
			RabbitMQURL: getEnv("RABBITMQ_URL", ""),
			Exchange:    getEnv("EVENTS_EXCHANGE", "resume_analysis"),
		},
		Analysis: AnalysisConfig{
			MinWords:       getEnvAsInt("RESUME_MIN_WORDS", 20),
			FallbackLocale: getEnv("FALLBACK_LOCALE", "pt-BR"),
		},
	}
}

// IsDevelopment reports whether internal error details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks and leading dots.
func getEnvAsList(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)

	var items []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}
