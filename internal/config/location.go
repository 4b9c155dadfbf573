package config

import (
	"os"
	"path/filepath"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "WALKTHROUGH_CONFIG"

// GetConfigPath returns the configuration file path: $WALKTHROUGH_CONFIG if
// set, otherwise ~/.walkthrough/config.
func GetConfigPath() (string, error) {
	if configPath := os.Getenv(EnvConfigPath); configPath != "" {
		return configPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".walkthrough", "config"), nil
}
