// Package config reads runtime settings from the environment. A .env file
// is honored when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Generative backend.
	LLMBackend   string
	LLMModel     string
	GeminiAPIKey string
	OllamaHost   string

	// Advanced (generative) routing for the decision engine.
	AdvancedRouting bool

	// Persistence; empty DSN selects the in-memory store.
	MySQLDSN string

	// Provider response cache; empty URL selects the in-process cache.
	RedisURL string
	CacheTTL time.Duration

	HTTPAddr string
	LogLevel string
	LogPath  string
}

// Load reads .env (if any) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LLMBackend:      getenv("LLM_BACKEND", "gemini"),
		LLMModel:        os.Getenv("LLM_MODEL"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OllamaHost:      os.Getenv("OLLAMA_HOST"),
		AdvancedRouting: getbool("ADVANCED_ROUTING", false),
		MySQLDSN:        os.Getenv("MYSQL_DSN"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CacheTTL:        getduration("CACHE_TTL", 10*time.Minute),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogPath:         getenv("LOG_PATH", "missiond.log"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
