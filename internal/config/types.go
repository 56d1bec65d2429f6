package config

import "time"

// Config represents the complete rolegate configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Server    ServerConfig    `yaml:"server"`
	Discord   DiscordConfig   `yaml:"discord"`
	Roles     RolesConfig     `yaml:"roles,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`

	// SourcePath is the absolute path the config was loaded from.
	SourcePath string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level" env:"ROLEGATE_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"ROLEGATE_LOG_FORMAT"`
}

// ServerConfig defines the interaction endpoint listener.
type ServerConfig struct {
	Listen string `yaml:"listen" env:"ROLEGATE_LISTEN"`
	Path   string `yaml:"path"`

	// MaxBodySize accepts plain bytes or KB/MB/GB suffixes (default: 1MB)
	MaxBodySize string `yaml:"max_body_size,omitempty"`

	// MaxSkew rejects signatures whose timestamp is older or newer than this.
	// Zero disables the check.
	MaxSkew time.Duration `yaml:"max_skew,omitempty"`
}

// DiscordConfig holds platform credentials and API settings.
type DiscordConfig struct {
	// PublicKey is the hex-encoded Ed25519 application public key
	PublicKey string `yaml:"public_key" env:"ROLEGATE_PUBLIC_KEY"`

	// BotToken authorizes outbound management API calls
	BotToken string `yaml:"bot_token" env:"ROLEGATE_BOT_TOKEN"`

	APIBase        string        `yaml:"api_base" env:"ROLEGATE_API_BASE"`
	BotName        string        `yaml:"bot_name,omitempty"`
	UserAgentURL   string        `yaml:"user_agent_url"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
}

// RolesConfig defines the role command's lookup table and policy.
type RolesConfig struct {
	// Names maps role ids to display names used in replies
	Names map[string]string `yaml:"names,omitempty"`

	// Safelist restricts self-assignable roles. Empty allows any role.
	Safelist []string `yaml:"safelist,omitempty"`
}

// TelemetryConfig defines tracing export.
type TelemetryConfig struct {
	// Endpoint is an OTLP/HTTP URL. Empty disables tracing.
	Endpoint string `yaml:"endpoint,omitempty" env:"ROLEGATE_OTEL_ENDPOINT"`
}

// Default values
const (
	DefaultName           = "rolegate"
	DefaultListen         = "127.0.0.1:8081"
	DefaultPath           = "/interactions"
	DefaultMaxBodySize    = "1MB"
	DefaultAPIBase        = "https://discord.com/api/v8"
	DefaultBotName        = "DiscordBot"
	DefaultUserAgentURL   = "https://github.com/mattjoyce/rolegate"
	DefaultRequestTimeout = 10 * time.Second
)

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      DefaultName,
			LogLevel:  "info",
			LogFormat: "json",
		},
		Server: ServerConfig{
			Listen:      DefaultListen,
			Path:        DefaultPath,
			MaxBodySize: DefaultMaxBodySize,
		},
		Discord: DiscordConfig{
			APIBase:        DefaultAPIBase,
			BotName:        DefaultBotName,
			UserAgentURL:   DefaultUserAgentURL,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}
