package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/mattjoyce/rolegate/internal/commands"
	"github.com/mattjoyce/rolegate/internal/config"
	"github.com/mattjoyce/rolegate/internal/discord"
	"github.com/mattjoyce/rolegate/internal/interaction"
	"github.com/mattjoyce/rolegate/internal/log"
	"github.com/mattjoyce/rolegate/internal/signature"
	"github.com/mattjoyce/rolegate/internal/telemetry"
	"github.com/mattjoyce/rolegate/internal/webhook"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "start":
		return runStart(args)
	case "config":
		return runConfigNoun(args)
	case "invoke":
		return runInvoke(args)
	case "keygen":
		return runKeygen(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := pflag.NewFlagSet("version", pflag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: rolegate version [--json]")
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("rolegate %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	commit := strings.TrimSpace(gitCommit)
	if commit == "" || commit == "unknown" {
		commit = readBuildSetting("vcs.revision")
	}
	if commit != "" {
		info.Commit = shortenCommit(commit)
	}

	built := strings.TrimSpace(buildDate)
	if built == "" || built == "unknown" {
		built = readBuildSetting("vcs.time")
	}
	if t, err := time.Parse(time.RFC3339Nano, built); err == nil {
		info.BuildTime = t.UTC().Format(time.RFC3339)
	}

	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return strings.TrimSpace(setting.Value)
		}
	}
	return ""
}

func printUsage() {
	fmt.Print(`rolegate - self-service role grants for chat interaction webhooks

Usage:
  rolegate <command> [flags]

Commands:
  start                 Serve the interaction endpoint
  config check          Validate configuration (--json for machine output)
  config lock           Write BLAKE3 checksums for the config file
  invoke                Sign and run an interaction through the pipeline locally
  keygen                Print a fresh Ed25519 key pair (hex)
  version               Show version information

Config discovery: --config, then $ROLEGATE_CONFIG, then ./rolegate.yaml
`)
}

// loadConfig resolves the config path through discovery and loads it.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		discovered, err := config.Discover()
		if err != nil {
			return nil, err
		}
		configPath = discovered
	}
	return config.Load(configPath)
}

// buildPipeline wires verifier, role handler and dispatcher from cfg. The
// HTTP shim and the invoke harness share it.
func buildPipeline(cfg *config.Config, granter commands.RoleGranter) (*webhook.Pipeline, error) {
	publicKey, err := signature.ParsePublicKey(cfg.Discord.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("discord.public_key: %w", err)
	}
	verifier := signature.New(publicKey, signature.WithMaxSkew(cfg.Server.MaxSkew))

	role := commands.NewRoleHandler(granter,
		commands.WithRoleNames(cfg.Roles.Names),
		commands.WithPolicy(commands.Safelist(cfg.Roles.Safelist)),
		commands.WithRoleLogger(log.WithComponent("role")),
	)
	router := commands.NewDefaultRouter(role, log.WithComponent("router"))
	dispatcher := interaction.NewDispatcher[commands.Command](router, log.WithComponent("dispatch"))

	return webhook.NewPipeline(verifier, dispatcher, log.WithComponent("pipeline")), nil
}

func newDiscordClient(cfg *config.Config, logger *slog.Logger) *discord.Client {
	return discord.New(discord.Config{
		APIBase:   cfg.Discord.APIBase,
		BotToken:  cfg.Discord.BotToken,
		UserAgent: discord.UserAgent(cfg.Discord.BotName, cfg.Discord.UserAgentURL, currentVersionInfo().Version),
		Timeout:   cfg.Discord.RequestTimeout,
	}, discord.WithLogger(logger))
}

func runStart(args []string) int {
	fs := pflag.NewFlagSet("start", pflag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("rolegate starting", "version", version, "config", cfg.SourcePath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Service.Name, version, cfg.Telemetry.Endpoint)
	if err != nil {
		logger.Error("failed to set up tracing", "endpoint", cfg.Telemetry.Endpoint, "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	pipeline, err := buildPipeline(cfg, newDiscordClient(cfg, log.WithComponent("discord")))
	if err != nil {
		logger.Error("invalid verification key", "error", err)
		return 1
	}

	serverConfig, err := webhook.FromGlobalConfig(cfg)
	if err != nil {
		logger.Error("failed to configure interaction server", "error", err)
		return 1
	}
	server := webhook.New(serverConfig, pipeline, log.WithComponent("webhook"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("rolegate running (press Ctrl+C to stop)", "listen", serverConfig.Listen, "path", serverConfig.Path)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		if err := <-errCh; err != nil {
			log.Error("interaction server stopped with error", "error", err)
			return 1
		}
	case err := <-errCh:
		if err != nil {
			log.Error("interaction server failed", "error", err)
			return 1
		}
	}

	log.Info("rolegate stopped")
	return 0
}
