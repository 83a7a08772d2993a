package main

import (
	"strings"
	"testing"
)

func TestParseInstallArgs(t *testing.T) {
	opts, err := parseInstallArgs([]string{
		"--dest", "~/bin",
		"-p", "win64",
		"-V", "0.15.15",
		"--base-url", "https://mirror.example.com/purescript",
		"--build-arg", "--jobs",
		"--build-arg", "4",
		"-v",
	})
	if err != nil {
		t.Fatalf("parseInstallArgs: %v", err)
	}

	if opts.dest != "~/bin" {
		t.Errorf("dest = %q", opts.dest)
	}
	if opts.platform != "win64" {
		t.Errorf("platform = %q", opts.platform)
	}
	if opts.version != "0.15.15" {
		t.Errorf("version = %q", opts.version)
	}
	if len(opts.buildArgs) != 2 || opts.buildArgs[1] != "4" {
		t.Errorf("buildArgs = %v", opts.buildArgs)
	}
	if !opts.verbose {
		t.Error("verbose not set")
	}
}

func TestParseInstallArgsUnknownOption(t *testing.T) {
	_, err := parseInstallArgs([]string{"--frobnicate"})
	if err == nil || !strings.Contains(err.Error(), "unknown option") {
		t.Errorf("error = %v, want unknown option", err)
	}
}

func TestParseInstallArgsMissingValue(t *testing.T) {
	for _, flag := range []string{"--dest", "--platform", "--version", "--build-arg", "--config"} {
		t.Run(flag, func(t *testing.T) {
			_, err := parseInstallArgs([]string{flag})
			if err == nil || !strings.Contains(err.Error(), "requires a value") {
				t.Errorf("error = %v, want missing value", err)
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "a", "b"); got != "a" {
		t.Errorf("firstNonEmpty = %q, want a", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty = %q, want empty", got)
	}
}
