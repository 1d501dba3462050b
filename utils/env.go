package utils

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file from the working directory when there is one.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, continuing")
	}
}

// GetDatabaseURL returns flagValue when set, otherwise DATABASE_URL.
func GetDatabaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL not set (in .env, environment or --database)")
	}
	return url, nil
}
