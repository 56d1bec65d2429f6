package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file, verifies it against a
// .checksums manifest when one exists, applies defaults and environment
// overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}
	if info.IsDir() {
		absPath = filepath.Join(absPath, ConfigFileName)
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but %s not found: %s", ConfigFileName, absPath)
		}
	}

	if err := verifyConfigHash(absPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.SourcePath = absPath
	return cfg, nil
}

// Parse builds a Config from YAML bytes, applying interpolation, defaults,
// environment overrides and validation.
func Parse(data []byte) (*Config, error) {
	interpolated := interpolateEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyConfigDefaults(&cfg)

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overlays ROLEGATE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// applyConfigDefaults merges default values into config where not explicitly set.
func applyConfigDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = defaults.Service.LogFormat
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaults.Server.Listen
	}
	if cfg.Server.Path == "" {
		cfg.Server.Path = defaults.Server.Path
	}
	if cfg.Server.MaxBodySize == "" {
		cfg.Server.MaxBodySize = defaults.Server.MaxBodySize
	}

	if cfg.Discord.APIBase == "" {
		cfg.Discord.APIBase = defaults.Discord.APIBase
	}
	if cfg.Discord.BotName == "" {
		cfg.Discord.BotName = defaults.Discord.BotName
	}
	if cfg.Discord.UserAgentURL == "" {
		cfg.Discord.UserAgentURL = defaults.Discord.UserAgentURL
	}
	if cfg.Discord.RequestTimeout == 0 {
		cfg.Discord.RequestTimeout = defaults.Discord.RequestTimeout
	}
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is (not expanded).
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Left in place so validation can name the missing variable.
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}
	if f := strings.ToLower(cfg.Service.LogFormat); f != "json" && f != "text" {
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	if !strings.HasPrefix(cfg.Server.Path, "/") {
		return fmt.Errorf("server.path must start with '/' (got %q)", cfg.Server.Path)
	}
	if _, err := ParseSize(cfg.Server.MaxBodySize); err != nil {
		return fmt.Errorf("server.max_body_size %q: %w", cfg.Server.MaxBodySize, err)
	}
	if cfg.Server.MaxSkew < 0 {
		return errors.New("server.max_skew must not be negative")
	}

	if err := checkUnresolved("discord.public_key", cfg.Discord.PublicKey); err != nil {
		return err
	}
	if cfg.Discord.PublicKey == "" {
		return errors.New("discord.public_key is required")
	}
	if err := checkUnresolved("discord.bot_token", cfg.Discord.BotToken); err != nil {
		return err
	}
	if cfg.Discord.BotToken == "" {
		return errors.New("discord.bot_token is required")
	}
	if !strings.HasPrefix(cfg.Discord.APIBase, "http://") && !strings.HasPrefix(cfg.Discord.APIBase, "https://") {
		return fmt.Errorf("discord.api_base must be an http(s) URL (got %q)", cfg.Discord.APIBase)
	}
	if cfg.Discord.RequestTimeout < 0 {
		return errors.New("discord.request_timeout must not be negative")
	}

	return nil
}

func checkUnresolved(field, value string) error {
	if matches := envVarPattern.FindStringSubmatch(value); len(matches) > 1 {
		return fmt.Errorf("%s: environment variable ${%s} is not set", field, matches[1])
	}
	return nil
}

// ParseSize parses size strings like "1MB", "512KB", "1048576" to bytes.
func ParseSize(size string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(size))
	multiplier := int64(1)

	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		upper = strings.TrimSuffix(upper, "KB")
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		upper = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		upper = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result/multiplier != value {
		return 0, fmt.Errorf("size too large")
	}
	return result, nil
}
