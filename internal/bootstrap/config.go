package bootstrap

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string

	DetectorURL    string
	EncoderURL     string
	SidecarTimeout time.Duration

	InferenceWorkers   int
	InferenceQueueSize int

	FaceMatchThreshold float64
}

func LoadConfig() *Config {
	// Missing .env is fine; container deployments inject real env vars.
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		QdrantHost:   getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:   getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),

		DetectorURL:    getEnv("DETECTOR_URL", "http://localhost:9090"),
		EncoderURL:     getEnv("ENCODER_URL", "http://localhost:9091"),
		SidecarTimeout: time.Duration(getEnvInt("SIDECAR_TIMEOUT_SECONDS", 30)) * time.Second,

		InferenceWorkers:   getEnvInt("INFERENCE_WORKERS", 4),
		InferenceQueueSize: getEnvInt("INFERENCE_QUEUE_SIZE", 64),

		FaceMatchThreshold: getEnvFloat("FACE_MATCH_THRESHOLD", 0.6),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
