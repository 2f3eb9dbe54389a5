// internal/config/config.go
//
// Process configuration read from the environment.
// A .env file in the working directory is loaded first when present
// (development convenience); real environment variables win.
//
// Environment variables:
//   PORT=5175
//   LOG_LEVEL=info
//   CLIENT_ORIGIN=http://localhost:5173
//   JWT_SECRET=dev_secret_change_me
//   SESSION_TTL_HOURS=24
//   SESSION_SWEEP_MINUTES=10
//   AI_THINK_DELAY_MS=0
//   AI_PARALLEL_ROOT=false
//   TALLY_DSN=file:tally?mode=memory&cache=shared
//   NODE_ENV=development

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	LogLevel      string
	ClientOrigin  string
	JWTSecret     string
	SessionTTL    time.Duration
	SweepInterval time.Duration // how often idle sessions are dropped
	ThinkDelay    time.Duration
	ParallelRoot  bool
	TallyDSN      string
	SecureCookies bool
}

// Load reads .env (if any) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() Config {
	return Config{
		Port:          getEnv("PORT", "5175"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:     getEnv("JWT_SECRET", "dev_secret_change_me"),
		SessionTTL:    time.Duration(getInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		SweepInterval: time.Duration(max(getInt("SESSION_SWEEP_MINUTES", 10), 1)) * time.Minute,
		ThinkDelay:    time.Duration(getInt("AI_THINK_DELAY_MS", 0)) * time.Millisecond,
		ParallelRoot:  getBool("AI_PARALLEL_ROOT", false),
		TallyDSN:      getEnv("TALLY_DSN", ""),
		SecureCookies: os.Getenv("NODE_ENV") == "production",
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func getBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
