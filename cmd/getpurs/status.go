package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MercerHollowell/getpurs/internal/acquire"
	"github.com/MercerHollowell/getpurs/internal/config"
)

// runStatus handles the `getpurs status` subcommand.
func runStatus(args []string) error {
	dest := ""
	configPath := ""
	verbose := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--help", "-h":
			printStatusHelp()
			return nil
		case "--verbose", "-v":
			verbose = true
		case "--dest", "-d":
			i++
			if i >= len(args) {
				return fmt.Errorf("%s requires a value", arg)
			}
			dest = args[i]
		case "--config", "-c":
			i++
			if i >= len(args) {
				return fmt.Errorf("%s requires a value", arg)
			}
			configPath = args[i]
		default:
			return fmt.Errorf("unknown option: %s\nRun 'getpurs status --help' for usage", arg)
		}
	}

	cfg, err := loadConfig(configPath, verbose)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	defer cfg.Close()

	dest = firstNonEmpty(dest, cfg.Dest, "~/.local/bin")
	dest, err = config.ExpandPath(dest)
	if err != nil {
		return err
	}
	binary := filepath.Join(dest, installedName(cfg, ""))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	detector := config.NewStatusDetector(config.ProberFunc(func(ctx context.Context, path string) error {
		return acquire.VerifyBinary(ctx, path, acquire.Limits{})
	}))
	status, err := detector.DetectStatus(ctx, binary)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s %s\n", status.Symbol(), status, binary)
	switch status {
	case config.StatusMissing:
		fmt.Println()
		fmt.Println("To install:")
		fmt.Println("  getpurs install")
	case config.StatusBroken:
		fmt.Println()
		fmt.Println("The binary exists but does not run on this machine.")
		fmt.Println("Reinstall to fall back to a source build:")
		fmt.Printf("  rm %s && getpurs install\n", binary)
	}

	return nil
}

// printStatusHelp prints help for the status command
func printStatusHelp() {
	fmt.Println("Usage: getpurs status [options]")
	fmt.Println()
	fmt.Println("Show whether the PureScript compiler is installed and runnable.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help           Show this help message")
	fmt.Println("  -v, --verbose        Verbose error output")
	fmt.Println("  -d, --dest <dir>     Installation directory (default ~/.local/bin)")
	fmt.Println("  -c, --config <file>  Config file (default: the getpurs config directory)")
	fmt.Println()
	fmt.Println("Status indicators:")
	fmt.Println("  ✓  installed  Binary exists and runs")
	fmt.Println("  ✗  missing    Binary not found at the configured path")
	fmt.Println("  !  broken     Binary exists but fails to run")
	fmt.Println()
	os.Exit(0)
}
