package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mattjoyce/rolegate/internal/interaction"
)

// Replies produced by Router.
const (
	replyNoData         = "no data for command"
	replyUnknownCommand = "unknown_command"
	replyPing           = "uh, did this work?"
)

type route func(ctx context.Context, env interaction.Envelope[Command]) interaction.Reply

// Router selects a handler by command name. Routes are registered before the
// router serves requests and are not modified afterwards.
type Router struct {
	routes map[string]route
	logger *slog.Logger
}

// NewRouter creates an empty Router.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{routes: make(map[string]route), logger: logger}
}

// Register binds name to handler. The command data is decoded into T before
// handler runs; a decode failure replies "failed to parse".
func Register[T any](r *Router, name string, handler interaction.CommandHandler[T]) {
	r.routes[name] = func(ctx context.Context, env interaction.Envelope[Command]) interaction.Reply {
		var data T
		if err := json.Unmarshal(env.Data.Raw, &data); err != nil {
			r.logger.Warn("command data does not match schema", "command", name, "error", err)
			return interaction.Message(interaction.ParseFailure)
		}
		return handler.HandleCommand(ctx, interaction.Envelope[T]{
			ID:        env.ID,
			Kind:      env.Kind,
			Data:      &data,
			GuildID:   env.GuildID,
			ChannelID: env.ChannelID,
			Member:    env.Member,
			Token:     env.Token,
			Version:   env.Version,
		})
	}
}

// Names returns the registered command names.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	return names
}

// HandleCommand implements interaction.CommandHandler.
func (r *Router) HandleCommand(ctx context.Context, env interaction.Envelope[Command]) interaction.Reply {
	if env.Data == nil {
		return interaction.Message(replyNoData)
	}
	handle, ok := r.routes[env.Data.Name]
	if !ok {
		r.logger.Info("unknown command", "command", env.Data.Name)
		return interaction.Message(replyUnknownCommand)
	}
	r.logger.Debug("routing command", "command", env.Data.Name, "interaction_id", env.ID.String())
	return handle(ctx, env)
}

// PingHandler replies with a fixed liveness message.
func PingHandler() interaction.CommandHandler[json.RawMessage] {
	return interaction.HandlerFunc[json.RawMessage](func(ctx context.Context, env interaction.Envelope[json.RawMessage]) interaction.Reply {
		return interaction.Message(replyPing)
	})
}

// NewDefaultRouter registers the role and ping commands.
func NewDefaultRouter(role *RoleHandler, logger *slog.Logger) *Router {
	r := NewRouter(logger)
	Register[RoleCommand](r, RoleCommandName, role)
	Register[json.RawMessage](r, "ping", PingHandler())
	return r
}
