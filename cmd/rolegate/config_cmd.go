package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/mattjoyce/rolegate/internal/config"
	"github.com/mattjoyce/rolegate/internal/doctor"
)

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigHelp(os.Stderr)
		return 1
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		return runConfigCheck(actionArgs)
	case "lock":
		return runConfigLock(actionArgs)
	case "help", "--help", "-h":
		printConfigHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func printConfigHelp(w *os.File) {
	fmt.Fprint(w, `Usage: rolegate config <action> [flags]

Actions:
  check [--config PATH] [--strict] [--json]   Validate configuration
  lock  [--config PATH]                       Write BLAKE3 checksums next to the config
`)
}

func runConfigCheck(args []string) int {
	var configPath string
	var strict, jsonOut bool

	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	fs.BoolVar(&strict, "strict", false, "Treat warnings as errors")
	fs.BoolVar(&jsonOut, "json", false, "Output in JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config load error: %v\n", err)
		return 1
	}

	result := doctor.New(cfg).Validate()

	if jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON format error: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Print(doctor.FormatHuman(result))
	}

	if !result.Valid {
		return 1
	}
	if strict && len(result.Warnings) > 0 {
		return 1
	}
	return 0
}

func runConfigLock(args []string) int {
	var configPath string

	fs := pflag.NewFlagSet("lock", pflag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if configPath == "" {
		discovered, err := config.Discover()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
			return 1
		}
		configPath = discovered
	}
	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		configPath = filepath.Join(configPath, config.ConfigFileName)
	}

	// Parse without Load: an existing manifest is stale by definition here.
	data, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
		return 1
	}
	if _, err := config.Parse(data); err != nil {
		fmt.Fprintf(os.Stderr, "Refusing to lock invalid config: %v\n", err)
		return 1
	}

	manifest, checksumPath, err := config.Lock(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock config: %v\n", err)
		return 1
	}

	fmt.Printf("Wrote %s (%d file(s))\n", checksumPath, len(manifest.Hashes))
	return 0
}
