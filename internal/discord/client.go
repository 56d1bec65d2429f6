// Package discord is a minimal client for the platform's management API.
// It implements the one outbound call the service makes: adding a role to a
// guild member.
package discord

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default values
const (
	DefaultAPIBase = "https://discord.com/api/v8"
	DefaultBotName = "DiscordBot"
	DefaultTimeout = 10 * time.Second
)

const tracerName = "github.com/mattjoyce/rolegate/internal/discord"

// UserAgent formats the User-Agent header the API requires for bots.
func UserAgent(botName, repoURL, version string) string {
	if botName == "" {
		botName = DefaultBotName
	}
	return fmt.Sprintf("%s (%s, %s)", botName, repoURL, version)
}

// Config holds client settings.
type Config struct {
	APIBase   string
	BotToken  string
	UserAgent string
	Timeout   time.Duration
}

// Client calls the management API with bot credentials.
type Client struct {
	apiBase   string
	botToken  string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client.
func New(cfg Config, opts ...Option) *Client {
	apiBase := strings.TrimRight(cfg.APIBase, "/")
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		apiBase:   apiBase,
		botToken:  cfg.BotToken,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GrantRole adds roleID to the member userID in guildID.
//
// A returned error means the request did not complete. A completed request
// returns its status code with a nil error, whatever the status.
func (c *Client) GrantRole(ctx context.Context, guildID, userID, roleID string) (int, error) {
	ctx, span := c.tracer.Start(ctx, "discord.grant_role", trace.WithAttributes(
		attribute.String("discord.guild_id", guildID),
		attribute.String("discord.user_id", userID),
		attribute.String("discord.role_id", roleID),
	))
	defer span.End()

	endpoint := fmt.Sprintf("%s/guilds/%s/members/%s/roles/%s",
		c.apiBase,
		url.PathEscape(guildID),
		url.PathEscape(userID),
		url.PathEscape(roleID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return 0, fmt.Errorf("build grant role request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bot "+c.botToken)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return 0, fmt.Errorf("grant role request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		c.logger.Warn("grant role rejected",
			"guild_id", guildID,
			"user_id", userID,
			"role_id", roleID,
			"status", resp.StatusCode,
		)
	}

	return resp.StatusCode, nil
}
