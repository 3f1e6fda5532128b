// Package config loads runtime configuration for both processes this
// module ships: the HTTP server (env-based, teacher's cmd/server pattern)
// and the CLI (viper/TOML, teacher's cli config pattern). The DSP constants
// themselves are never configuration (spec.md §4.1-§4.5) — only process
// wiring lives here.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig is the HTTP server's runtime configuration, loaded from
// environment variables (optionally via a .env file).
type ServerConfig struct {
	Port string

	LogLevel string
	LogFile  string

	DatabaseDSN string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	OTELEnabled      bool
	OTELServiceName  string
	OTELEnvironment  string
	OTELEndpoint     string
	OTELSamplingRate float64

	// IngestWorkers is C_ING, the bounded ingestion concurrency
	// (spec.md §5 default 2).
	IngestWorkers int

	// IngestMaxRetries is R_MAX, the persist retry budget (spec.md §7).
	IngestMaxRetries int

	// IdentifyTimeout is identification's soft wall-clock budget
	// (spec.md §5 default 10s).
	IdentifyTimeout time.Duration

	// FFmpegBinary is the decoder's ffmpeg executable path.
	FFmpegBinary string
}

// LoadServerConfig loads a .env file if present (missing is not an error,
// exactly as the teacher's cmd/server does) and reads environment
// variables, applying defaults for anything unset.
func LoadServerConfig() (*ServerConfig, error) {
	_ = godotenv.Load()

	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  getEnvOrDefault("LOG_FILE", "server.log"),

		DatabaseDSN: os.Getenv("DATABASE_URL"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "echomatch"),
		OTELEnvironment:  getEnvOrDefault("OTEL_ENVIRONMENT", "development"),
		OTELEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELSamplingRate: getEnvFloat("OTEL_TRACE_SAMPLER_RATE", 1.0),

		IngestWorkers:    getEnvInt("INGEST_WORKERS", 2),
		IngestMaxRetries: getEnvInt("INGEST_MAX_RETRIES", 3),
		IdentifyTimeout:  getEnvDuration("IDENTIFY_TIMEOUT", 10*time.Second),

		FFmpegBinary: getEnvOrDefault("FFMPEG_BINARY", "ffmpeg"),
	}, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
