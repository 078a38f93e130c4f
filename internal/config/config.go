// Package config loads the server configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// S3Config holds the image store connection settings. Endpoint is optional
// and covers S3-compatible services (R2, MinIO).
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	Endpoint        string
}

// Config holds everything the server needs to start.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	Cors      cors.Options
	S3        S3Config
}

// Load reads the configuration from the environment. A .env file (path
// overridable via ENV_FILE) is loaded first if present; real environment
// variables win over .env entries.
func Load(logger *slog.Logger) (Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		logger.Info("no env file loaded", slog.String("path", envFile))
	}

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		parsed, err := strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			return Config{}, err
		}
		port = parsed
	}

	return Config{
		Port:      port,
		DBPath:    getEnv("DB_PATH", "data/feedboard.db"),
		JWTSecret: getEnv("JWT_SECRET", ""),
		Cors:      corsOptions(),
		S3: S3Config{
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "auto"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
		},
	}, nil
}

// getEnv reads the env var by key, or returns the fallback.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func corsOptions() cors.Options {
	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
