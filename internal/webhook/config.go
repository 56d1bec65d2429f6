package webhook

import (
	"fmt"

	"github.com/mattjoyce/rolegate/internal/config"
)

// FromGlobalConfig converts the server section of config.Config to
// webhook.Config, parsing the max body size.
func FromGlobalConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is nil")
	}

	maxBodySize := int64(DefaultMaxBodySize)
	if cfg.Server.MaxBodySize != "" {
		size, err := config.ParseSize(cfg.Server.MaxBodySize)
		if err != nil {
			return Config{}, fmt.Errorf("invalid max_body_size %q: %w", cfg.Server.MaxBodySize, err)
		}
		maxBodySize = size
	}

	return Config{
		Listen:      cfg.Server.Listen,
		Path:        cfg.Server.Path,
		MaxBodySize: maxBodySize,
	}, nil
}
