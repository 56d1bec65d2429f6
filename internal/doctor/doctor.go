// Package doctor validates rolegate configuration beyond what the loader
// enforces.
package doctor

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mattjoyce/rolegate/internal/config"
	"github.com/mattjoyce/rolegate/internal/signature"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates a loaded configuration.
type Doctor struct {
	cfg *config.Config
}

// New creates a Doctor for cfg.
func New(cfg *config.Config) *Doctor {
	return &Doctor{cfg: cfg}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validatePublicKey(r)
	d.validateDiscord(r)
	d.validateTelemetry(r)
	d.validateRoles(r)
	d.warnServer(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validatePublicKey checks the verification key is usable.
func (d *Doctor) validatePublicKey(r *Result) {
	if _, err := signature.ParsePublicKey(d.cfg.Discord.PublicKey); err != nil {
		d.addError(r, "signature", "discord.public_key", err.Error())
	}
}

// validateDiscord checks outbound API settings.
func (d *Doctor) validateDiscord(r *Result) {
	dc := d.cfg.Discord
	if strings.TrimSpace(dc.BotToken) == "" {
		d.addError(r, "discord", "discord.bot_token", "bot_token is required")
	} else if strings.HasPrefix(dc.BotToken, "Bot ") {
		d.addWarning(r, "discord", "discord.bot_token",
			`bot_token should not include the "Bot " prefix; it is added automatically`)
	}

	u, err := url.Parse(dc.APIBase)
	if err != nil || u.Host == "" {
		d.addError(r, "discord", "discord.api_base", fmt.Sprintf("api_base %q is not a valid URL", dc.APIBase))
	} else if u.Scheme != "https" {
		d.addWarning(r, "discord", "discord.api_base",
			fmt.Sprintf("api_base uses %s; the bot token will be sent unencrypted", u.Scheme))
	}

	if dc.UserAgentURL == "" {
		d.addWarning(r, "discord", "discord.user_agent_url", "user_agent_url is empty; the User-Agent will be malformed")
	}
	if dc.RequestTimeout > 0 && dc.RequestTimeout < time.Second {
		d.addWarning(r, "discord", "discord.request_timeout",
			fmt.Sprintf("request_timeout %s is very short (< 1s)", dc.RequestTimeout))
	}
}

// validateTelemetry checks the OTLP endpoint when tracing is enabled.
func (d *Doctor) validateTelemetry(r *Result) {
	endpoint := d.cfg.Telemetry.Endpoint
	if endpoint == "" {
		return
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		d.addError(r, "telemetry", "telemetry.endpoint",
			fmt.Sprintf("endpoint %q must be an http(s) URL", endpoint))
	}
}

// validateRoles checks the role lookup table against the safelist.
func (d *Doctor) validateRoles(r *Result) {
	roles := d.cfg.Roles
	for id := range roles.Names {
		if !isSnowflake(id) {
			d.addWarning(r, "roles", fmt.Sprintf("roles.names.%s", id),
				fmt.Sprintf("role id %q is not numeric", id))
		}
	}

	if len(roles.Safelist) == 0 {
		d.addWarning(r, "roles", "roles.safelist", "safelist is empty; any role id may be self-assigned")
		return
	}

	seen := make(map[string]bool, len(roles.Safelist))
	for i, id := range roles.Safelist {
		field := fmt.Sprintf("roles.safelist[%d]", i)
		switch {
		case !isSnowflake(id):
			d.addError(r, "roles", field, fmt.Sprintf("role id %q is not numeric", id))
		case seen[id]:
			d.addWarning(r, "roles", field, fmt.Sprintf("role id %q listed more than once", id))
		case roles.Names[id] == "":
			d.addWarning(r, "roles", field,
				fmt.Sprintf("role id %q has no display name; replies will use a generic message", id))
		}
		seen[id] = true
	}
}

// warnServer flags listener settings that are legal but suspicious.
func (d *Doctor) warnServer(r *Result) {
	if d.cfg.Server.MaxSkew > 0 && d.cfg.Server.MaxSkew < 5*time.Second {
		d.addWarning(r, "server", "server.max_skew",
			fmt.Sprintf("max_skew %s is very short (< 5s); clock drift may reject genuine requests", d.cfg.Server.MaxSkew))
	}
}

func isSnowflake(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
