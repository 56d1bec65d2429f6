package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/mattjoyce/rolegate/internal/commands"
	"github.com/mattjoyce/rolegate/internal/interaction"
	"github.com/mattjoyce/rolegate/internal/log"
	"github.com/mattjoyce/rolegate/internal/signature"
	"github.com/mattjoyce/rolegate/internal/webhook"
)

// Option type sent for --option values (platform STRING option).
const optionTypeString = 3

type invokeOptions struct {
	configPath string
	privateKey string
	bodyPath   string
	timestamp  string
	handshake  bool
	command    string
	options    []string
	guildID    string
	userID     string
	username   string
	dryRun     bool
}

func runInvoke(args []string) int {
	var o invokeOptions

	fs := pflag.NewFlagSet("invoke", pflag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Path to configuration")
	fs.StringVar(&o.privateKey, "private-key", os.Getenv("ROLEGATE_PRIVATE_KEY"), "Hex Ed25519 private key (seed or full key) to sign with")
	fs.StringVar(&o.bodyPath, "body", "", "Read the interaction body from FILE, or - for stdin")
	fs.StringVar(&o.timestamp, "timestamp", "", "Signature timestamp (default: now, unix seconds)")
	fs.BoolVar(&o.handshake, "handshake", false, "Send a handshake interaction")
	fs.StringVar(&o.command, "command", "", "Send a command interaction with this name")
	fs.StringArrayVar(&o.options, "option", nil, "Command option as name=value (repeatable)")
	fs.StringVar(&o.guildID, "guild", "", "Guild id for command interactions")
	fs.StringVar(&o.userID, "user-id", "", "Invoking member's user id")
	fs.StringVar(&o.username, "username", "", "Invoking member's username")
	fs.BoolVar(&o.dryRun, "dry-run", false, "Answer role grants locally instead of calling the API")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if o.privateKey == "" {
		fmt.Fprintln(os.Stderr, "--private-key (or $ROLEGATE_PRIVATE_KEY) is required")
		return 1
	}
	privateKey, err := signature.ParsePrivateKey(o.privateKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid private key: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)

	body, err := o.buildBody(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build interaction: %v\n", err)
		return 1
	}

	var granter commands.RoleGranter
	if o.dryRun {
		granter = dryRunGranter{logger: log.WithComponent("dry-run")}
	} else {
		granter = newDiscordClient(cfg, log.WithComponent("discord"))
	}

	pipeline, err := buildPipeline(cfg, granter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", err)
		return 1
	}

	timestamp := o.timestamp
	if timestamp == "" {
		timestamp = strconv.FormatInt(time.Now().Unix(), 10)
	}
	header := http.Header{}
	header.Set(signature.HeaderSignature, signature.Sign(privateKey, timestamp, body))
	header.Set(signature.HeaderTimestamp, timestamp)

	resp := pipeline.Process(context.Background(), webhook.Request{Header: header, Body: body})

	fmt.Printf("status: %d\n", resp.Status)
	fmt.Println(string(resp.Body))
	if resp.Status != http.StatusOK {
		return 1
	}
	return 0
}

// buildBody returns the raw body from --body, or builds an envelope from
// --handshake / --command.
func (o invokeOptions) buildBody(stdin io.Reader) ([]byte, error) {
	modes := 0
	for _, set := range []bool{o.bodyPath != "", o.handshake, o.command != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return nil, errors.New("exactly one of --body, --handshake or --command is required")
	}

	switch {
	case o.bodyPath == "-":
		return io.ReadAll(stdin)
	case o.bodyPath != "":
		return os.ReadFile(o.bodyPath)
	}

	env := interaction.Envelope[commands.RoleCommand]{
		ID:      interaction.Snowflake(uuid.NewString()),
		Token:   uuid.NewString(),
		Version: 1,
	}
	log.WithInteraction(env.ID.String()).Debug("built interaction", "handshake", o.handshake, "command", o.command)

	if o.handshake {
		env.Kind = interaction.KindHandshake
		return json.Marshal(env)
	}

	opts := make([]commands.Option, 0, len(o.options))
	for _, kv := range o.options {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("option %q must be name=value", kv)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		opts = append(opts, commands.Option{Name: name, Type: optionTypeString, Value: raw})
	}

	env.Kind = interaction.KindCommand
	env.Data = &commands.RoleCommand{ID: uuid.NewString(), Name: o.command, Options: opts}
	env.GuildID = interaction.Snowflake(o.guildID)
	if o.userID != "" || o.username != "" {
		env.Member = &interaction.Member{
			User: interaction.User{ID: interaction.Snowflake(o.userID), Username: o.username},
		}
	}
	return json.Marshal(env)
}

// dryRunGranter answers every grant with 204 without leaving the process.
type dryRunGranter struct {
	logger *slog.Logger
}

func (g dryRunGranter) GrantRole(ctx context.Context, guildID, userID, roleID string) (int, error) {
	g.logger.Info("dry run: role grant skipped", "guild_id", guildID, "user_id", userID, "role_id", roleID)
	return http.StatusNoContent, nil
}

func runKeygen(args []string) int {
	fs := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output the key pair as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
		return 1
	}
	pair := struct {
		PublicKey  string `json:"public_key"`
		PrivateKey string `json:"private_key"`
	}{
		PublicKey:  hex.EncodeToString(pub),
		PrivateKey: hex.EncodeToString(priv.Seed()),
	}

	if *jsonOut {
		data, err := json.MarshalIndent(pair, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("public_key: %s\n", pair.PublicKey)
	fmt.Printf("private_key: %s\n", pair.PrivateKey)
	return 0
}
