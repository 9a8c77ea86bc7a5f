package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort string

	// Upload
	MaxUploadMB int // Maximum accepted cover upload size (default: 5)

	// Paths
	DataDir      string // $DATA_DIR (default: ~/.config/watchlist)
	DatabaseFile string // $DATA_DIR/watchlist.db
	UploadDir    string // $DATA_DIR/uploads

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MAX_UPLOAD_MB", 5)
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read DATA_DIR from viper (which has loaded .env file)
	dataDir := viper.GetString("DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".config", "watchlist")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for DATA_DIR: %w", err)
		}
		dataDir = absPath
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	config := &Config{
		ServerPort:   viper.GetString("SERVER_PORT"),
		MaxUploadMB:  viper.GetInt("MAX_UPLOAD_MB"),
		DataDir:      dataDir,
		DatabaseFile: filepath.Join(dataDir, "watchlist.db"),
		UploadDir:    filepath.Join(dataDir, "uploads"),
		LogLevel:     viper.GetString("LOG_LEVEL"),
	}

	if config.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	return config, nil
}
