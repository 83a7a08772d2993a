package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MercerHollowell/getpurs/internal/acquire"
	"github.com/MercerHollowell/getpurs/internal/config"
	"github.com/MercerHollowell/getpurs/internal/download"
	"github.com/MercerHollowell/getpurs/internal/platform"
	"github.com/MercerHollowell/getpurs/internal/transaction"
)

// installOptions collects the install command's flags.
type installOptions struct {
	dest        string
	platform    string
	version     string
	baseURL     string
	checksumURL string
	keyring     string
	sourceDir   string
	sourceURL   string
	buildArgs   []string
	configPath  string
	verbose     bool
	showHelp    bool
}

// parseInstallArgs parses the install command's arguments.
func parseInstallArgs(args []string) (*installOptions, error) {
	opts := &installOptions{}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		value := func() (string, error) {
			i++
			if i >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			return args[i], nil
		}

		var err error
		switch arg {
		case "--help", "-h":
			opts.showHelp = true
		case "--verbose", "-v":
			opts.verbose = true
		case "--dest", "-d":
			opts.dest, err = value()
		case "--platform", "-p":
			opts.platform, err = value()
		case "--version", "-V":
			opts.version, err = value()
		case "--base-url":
			opts.baseURL, err = value()
		case "--checksum-url":
			opts.checksumURL, err = value()
		case "--keyring":
			opts.keyring, err = value()
		case "--source-dir":
			opts.sourceDir, err = value()
		case "--source-url":
			opts.sourceURL, err = value()
		case "--build-arg":
			var v string
			if v, err = value(); err == nil {
				opts.buildArgs = append(opts.buildArgs, v)
			}
		case "--config", "-c":
			opts.configPath, err = value()
		default:
			return nil, fmt.Errorf("unknown option: %s\nRun 'getpurs install --help' for usage", arg)
		}
		if err != nil {
			return nil, err
		}
	}

	return opts, nil
}

// runInstall handles the `getpurs install` subcommand.
func runInstall(args []string) error {
	opts, err := parseInstallArgs(args)
	if err != nil {
		return err
	}
	if opts.showHelp {
		printInstallHelp()
		return nil
	}

	cfg, err := loadConfig(opts.configPath, opts.verbose)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	defer cfg.Close()

	// Flags win over config values.
	dest := firstNonEmpty(opts.dest, cfg.Dest, "~/.local/bin")
	platformName := firstNonEmpty(opts.platform, cfg.Platform)
	version := firstNonEmpty(opts.version, cfg.Version, download.DefaultVersion)
	baseURL := firstNonEmpty(opts.baseURL, cfg.BaseURL)
	checksumURL := firstNonEmpty(opts.checksumURL, cfg.ChecksumURL)
	keyring := firstNonEmpty(opts.keyring, cfg.Keyring)
	sourceDir := firstNonEmpty(opts.sourceDir, cfg.SourceDir)
	sourceURL := firstNonEmpty(opts.sourceURL, cfg.SourceURL)
	buildArgs := opts.buildArgs
	if len(buildArgs) == 0 {
		buildArgs = cfg.BuildArgs
	}
	verbose := opts.verbose || cfg.Options.Verbose

	dest, err = config.ExpandPath(dest)
	if err != nil {
		return err
	}
	if keyring != "" {
		if keyring, err = config.ExpandPath(keyring); err != nil {
			return err
		}
	}
	if sourceDir != "" {
		if sourceDir, err = config.ExpandPath(sourceDir); err != nil {
			return err
		}
	}

	logPath := cfg.Options.LogFile
	if logPath == "" {
		if logPath, err = defaultLogPath(); err != nil {
			return err
		}
	} else if logPath, err = config.ExpandPath(logPath); err != nil {
		return err
	}
	logger := newCLILogger(verbose, logPath)

	state, err := stateDir()
	if err != nil {
		return err
	}

	// An interrupted earlier install is worth knowing about before this one
	// writes into the same destination.
	if incomplete, err := transaction.FindIncomplete(state); err == nil {
		for _, txn := range incomplete {
			logger.Warn("previous install did not complete",
				"id", txn.ID, "state", string(txn.State), "phase", txn.Phase)
			txn.Complete()
			txn.Remove(state)
		}
	}

	lock, err := transaction.AcquireLock(state)
	if err != nil {
		return err
	}
	defer lock.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	op, err := acquire.Start(ctx, acquire.Request{
		Dest:        dest,
		Platform:    platformName,
		Version:     version,
		Rename:      cfg.Rename(),
		BaseURL:     baseURL,
		ChecksumURL: checksumURL,
		Keyring:     keyring,
		SourceDir:   sourceDir,
		SourceURL:   sourceURL,
		BuildArgs:   buildArgs,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	txn := transaction.New(op.ID(), dest, installedName(cfg, platformName), version, platform.Normalize(platformName))
	if err := txn.Save(state); err != nil {
		logger.Warn("journal write failed", "error", err)
	}

	for ev := range op.Events() {
		if line := renderEvent(ev); line != "" {
			fmt.Println(line)
		}
		// Output lines are too chatty to journal; milestones are enough.
		if ev.Line == "" {
			txn.SetPhase(ev.Phase.String())
			if err := txn.Save(state); err != nil {
				logger.Warn("journal write failed", "error", err)
			}
			if err := lock.Refresh(); err != nil {
				logger.Warn("lock refresh failed", "error", err)
			}
		}
	}

	path, err := op.Wait()
	if err != nil {
		txn.Fail(err)
		if saveErr := txn.Save(state); saveErr != nil {
			logger.Warn("journal write failed", "error", saveErr)
		}
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("install cancelled")
		}
		return err
	}

	txn.Complete()
	txn.Remove(state)

	fmt.Println()
	fmt.Printf("Installed %s\n", path)
	return nil
}

// loadConfig loads the config file. An explicit path must exist; the default
// path is optional.
func loadConfig(explicit string, verbose bool) (*config.Config, error) {
	path := explicit
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if findings := config.DetectSensitiveData(string(data)); len(findings) > 0 {
		fmt.Fprint(os.Stderr, config.FormatSensitiveDataWarning(findings))
	}

	parser := config.NewParser(platform.NewDetector())
	cfg, err := parser.ParseFile(context.Background(), path)
	if err != nil {
		return nil, fmt.Errorf("%s", config.FormatError(err, verbose))
	}
	return cfg, nil
}

// installedName computes the final binary name for the journal.
func installedName(cfg *config.Config, platformName string) string {
	name := platform.BinaryName(platform.Normalize(platformName))
	if rename := cfg.Rename(); rename != nil {
		if renamed := rename(name); renamed != "" {
			return renamed
		}
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// printInstallHelp prints help for the install command
func printInstallHelp() {
	fmt.Println("Usage: getpurs install [options]")
	fmt.Println()
	fmt.Println("Install the PureScript compiler. Downloads a prebuilt binary when the")
	fmt.Println("release ships one for this platform and it runs; otherwise builds from")
	fmt.Println("source with the Haskell stack toolchain.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help            Show this help message")
	fmt.Println("  -v, --verbose         Mirror all log output to stderr")
	fmt.Println("  -d, --dest <dir>      Installation directory (default ~/.local/bin)")
	fmt.Println("  -p, --platform <os>   Target platform (linux, darwin, windows; aliases accepted)")
	fmt.Println("  -V, --version <ver>   Compiler version (default " + download.DefaultVersion + ")")
	fmt.Println("  -c, --config <file>   Config file (default: the getpurs config directory)")
	fmt.Println("  --base-url <url>      Release download root override")
	fmt.Println("  --checksum-url <url>  SHA256 checksum file covering the release archive")
	fmt.Println("  --keyring <file>      GPG keyring for archive signature verification")
	fmt.Println("  --source-dir <dir>    Build from an existing source tree")
	fmt.Println("  --source-url <url>    Source tarball override for fallback builds")
	fmt.Println("  --build-arg <arg>     Extra stack build argument (repeatable)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  getpurs install                          Install for this machine")
	fmt.Println("  getpurs install -V 0.15.15 -d ~/bin      Pin version and directory")
	fmt.Println("  getpurs install -p win64                 Fetch the windows binary")
	fmt.Println("  getpurs install --build-arg --jobs --build-arg 4")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Requesting a platform other than this machine's disables the")
	fmt.Println("    source-build fallback and binary verification")
	fmt.Println("  - A config file can rename the installed binary; see 'getpurs init'")
	fmt.Println()
	os.Exit(0)
}
