package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	DatabaseURL string
	RedisAddr   string
	RedisPwd    string
	WebOrigin   string
	Port        string
	LogLevel    slog.Level
	LogJSON     bool
	AccrueEvery time.Duration
}

// LoadEnv pulls a local .env into the process environment if there is one.
func LoadEnv() {
	_ = godotenv.Load()
}

func Load() Config {
	get := func(k, def string) string {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			return def
		}
		return v
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			get("DB_HOST", "127.0.0.1"),
			get("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			get("DB_NAME", "library"),
			get("DB_PORT", "5432"),
			get("DB_SSLMODE", "disable"),
		)
	}

	every := 24 * time.Hour
	if d, err := time.ParseDuration(get("ACCRUE_EVERY", "24h")); err == nil && d >= 0 {
		every = d
	}

	return Config{
		DatabaseURL: dsn,
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPwd:    os.Getenv("REDIS_PASSWORD"),
		WebOrigin:   get("WEB_ORIGIN", "http://localhost:5173"),
		Port:        get("PORT", "3001"),
		LogLevel:    parseLevel(get("LOG_LEVEL", "info")),
		LogJSON:     strings.EqualFold(get("LOG_FORMAT", "text"), "json"),
		AccrueEvery: every,
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewLogger builds the process logger described by the config.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
