package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/rolegate/internal/interaction"
)

//go:generate mockgen -destination=mocks/mock_granter.go -package=mocks github.com/mattjoyce/rolegate/internal/commands RoleGranter

// RoleGranter adds a role to a guild member. An error means the call did not
// complete; otherwise the HTTP status is returned.
type RoleGranter interface {
	GrantRole(ctx context.Context, guildID, userID, roleID string) (int, error)
}

// Names of the role command and its option.
const (
	RoleCommandName = "role"
	RoleOptionName  = "i-want-to-be-a"
)

// Replies produced by RoleHandler.
const (
	replyMustRequestRole = "must request a role"
	replyNoMember        = "no member to apply role to"
	replyNoGuild         = "no guild to apply role in"
)

// Policy decides whether a role may be self-assigned.
type Policy func(roleID string) bool

// Safelist returns a Policy allowing only ids. An empty list allows all roles.
func Safelist(ids []string) Policy {
	if len(ids) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	return func(roleID string) bool {
		_, ok := allowed[roleID]
		return ok
	}
}

// RoleHandler grants the requested role to the invoking member.
type RoleHandler struct {
	granter RoleGranter
	names   map[string]string
	policy  Policy
	logger  *slog.Logger
}

// RoleOption configures a RoleHandler.
type RoleOption func(*RoleHandler)

// WithRoleNames sets the role id to display name table. The map is read, never
// written, after construction.
func WithRoleNames(names map[string]string) RoleOption {
	return func(h *RoleHandler) { h.names = names }
}

// WithPolicy installs an authorization check run before the grant.
func WithPolicy(p Policy) RoleOption {
	return func(h *RoleHandler) { h.policy = p }
}

// WithRoleLogger sets the handler logger.
func WithRoleLogger(logger *slog.Logger) RoleOption {
	return func(h *RoleHandler) { h.logger = logger }
}

// NewRoleHandler creates a RoleHandler issuing grants through granter.
func NewRoleHandler(granter RoleGranter, opts ...RoleOption) *RoleHandler {
	h := &RoleHandler{granter: granter, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleCommand implements interaction.CommandHandler.
func (h *RoleHandler) HandleCommand(ctx context.Context, env interaction.Envelope[RoleCommand]) interaction.Reply {
	opt, ok := env.Data.Find(RoleOptionName)
	roleID := opt.String()
	if !ok || roleID == "" {
		return interaction.Message(replyMustRequestRole)
	}
	if env.Member == nil || env.Member.User.ID == "" {
		return interaction.Message(replyNoMember)
	}
	if env.GuildID == "" {
		return interaction.Message(replyNoGuild)
	}
	if h.policy != nil && !h.policy(roleID) {
		h.logger.Info("role request denied by policy", "role_id", roleID, "user_id", env.Member.User.ID.String())
		return interaction.Message(fmt.Sprintf("role %s cannot be self-assigned", roleID))
	}

	user := env.Member.User
	if env.Member.HasRole(roleID) {
		h.logger.Debug("member already holds role, granting anyway", "role_id", roleID, "user_id", user.ID.String())
	}
	status, err := h.granter.GrantRole(ctx, env.GuildID.String(), user.ID.String(), roleID)
	if err != nil {
		h.logger.Error("grant role failed",
			"guild_id", env.GuildID.String(),
			"user_id", user.ID.String(),
			"role_id", roleID,
			"error", err,
		)
		return interaction.Message(fmt.Sprintf("failed to set role for %s", user.Username))
	}
	if status < 200 || status > 299 {
		return interaction.Message(fmt.Sprintf("Failed with status code %d", status))
	}

	h.logger.Info("role granted", "guild_id", env.GuildID.String(), "user_id", user.ID.String(), "role_id", roleID)
	if name, ok := h.names[roleID]; ok {
		return interaction.Message(fmt.Sprintf("%s has accepted the %s role", user.Username, name))
	}
	return interaction.Message(fmt.Sprintf("%s has accepted a role", user.Username))
}
