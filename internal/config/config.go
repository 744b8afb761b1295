// Package config reads runtime configuration from the environment.
// Everything the server needs, database and Redis coordinates, JWT
// secret, M-Pesa credentials, sweep interval, arrives as env vars with
// sane development defaults.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present. Absence is fine;
// deployed environments inject vars directly.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns the named variable, or defaultVal when unset or empty.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns the named variable parsed as an int, or defaultVal
// when unset or unparseable.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns the named variable parsed as a time.Duration
// ("5m", "90s"), or defaultVal when unset or unparseable.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction reports whether the app runs in production mode. Cookies
// are only marked Secure in production.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
