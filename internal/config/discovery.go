package config

import (
	"fmt"
	"os"
)

// ConfigFileName is the file looked up when a directory is given.
const ConfigFileName = "rolegate.yaml"

// Discover finds the config file when --config is not given.
// Priority order: $ROLEGATE_CONFIG, ./rolegate.yaml
func Discover() (string, error) {
	if path := os.Getenv("ROLEGATE_CONFIG"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("$ROLEGATE_CONFIG points to %s which does not exist", path)
	}

	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName, nil
	}

	return "", fmt.Errorf("no config found (checked: $ROLEGATE_CONFIG, ./%s)", ConfigFileName)
}
