package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	InputDir  string
	OutputDir string
	LogLevel  string

	TracksAPIBaseURL   string
	TracksAPIToken     string
	TracksRateLimitRPS int
	TracksTimeoutMs    int

	MatchFuzzyThreshold float64
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "racing.db")),
		InputDir:  getEnv("INPUT_DIR", filepath.Join(cwd, "data", "incoming")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		TracksAPIBaseURL:   getEnv("TRACKS_API_BASE_URL", ""),
		TracksAPIToken:     getEnv("TRACKS_API_TOKEN", ""),
		TracksRateLimitRPS: getEnvInt("TRACKS_RATE_LIMIT_RPS", 5),
		TracksTimeoutMs:    getEnvInt("TRACKS_TIMEOUT_MS", 30000),

		MatchFuzzyThreshold: getEnvFloat("MATCH_FUZZY_THRESHOLD", 0.88),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
