package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Settings are the process-level options read from the environment
type Settings struct {
	DataFile       string // FACPLAN_DATA: facility dataset
	DBPath         string // FACPLAN_DB: scenario database, empty keeps scenarios in memory
	HeuristicsFile string // FACPLAN_HEURISTICS: optional heuristics overrides
	LogLevel       string // FACPLAN_LOG_LEVEL
	Addr           string // FACPLAN_ADDR: API listen address
}

// LoadSettings reads settings from the environment after loading a .env file if present
func LoadSettings() Settings {
	_ = godotenv.Load()

	return Settings{
		DataFile:       getEnv("FACPLAN_DATA", "facilities.yaml"),
		DBPath:         getEnv("FACPLAN_DB", ""),
		HeuristicsFile: getEnv("FACPLAN_HEURISTICS", ""),
		LogLevel:       getEnv("FACPLAN_LOG_LEVEL", "info"),
		Addr:           getEnv("FACPLAN_ADDR", ":8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
