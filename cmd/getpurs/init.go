package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MercerHollowell/getpurs/internal/config"
	"github.com/MercerHollowell/getpurs/internal/download"
)

// runInit handles the `getpurs init` subcommand.
func runInit(args []string) error {
	force := false
	configPath := ""

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--help", "-h":
			printInitHelp()
			return nil
		case "--force", "-f":
			force = true
		case "--config", "-c":
			i++
			if i >= len(args) {
				return fmt.Errorf("%s requires a value", arg)
			}
			configPath = args[i]
		default:
			return fmt.Errorf("unknown option: %s\nRun 'getpurs init --help' for usage", arg)
		}
	}

	path := configPath
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	code, err := config.NewGenerator().Generate(config.Starter("~/.local/bin", download.DefaultVersion))
	if err != nil {
		return fmt.Errorf("generate config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println()
	fmt.Println("Edit it, then run:")
	fmt.Println("  getpurs install")
	return nil
}

// printInitHelp prints help for the init command
func printInitHelp() {
	fmt.Println("Usage: getpurs init [options]")
	fmt.Println()
	fmt.Println("Write a starter configuration file with the defaults spelled out.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help           Show this help message")
	fmt.Println("  -f, --force          Overwrite an existing config")
	fmt.Println("  -c, --config <file>  Config file location")
	fmt.Println()
	os.Exit(0)
}
