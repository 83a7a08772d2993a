package config

import (
	"context"
	"strings"
	"testing"
)

func TestGenerateRoundTrip(t *testing.T) {
	original := &Config{
		Dest:      "~/.local/bin",
		Platform:  "linux",
		Version:   "0.15.15",
		BaseURL:   "https://mirror.example.com/purescript",
		SourceDir: "/srv/purescript",
		BuildArgs: []string{"--jobs", "4"},
		Options: Options{
			Verbose: true,
			LogFile: "~/.cache/getpurs/getpurs.log",
		},
	}

	code, err := NewGenerator().Generate(original)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	parsed, err := NewParser(nil).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("generated config does not parse: %v\n%s", err, code)
	}
	defer parsed.Close()

	if parsed.Dest != original.Dest {
		t.Errorf("Dest = %q, want %q", parsed.Dest, original.Dest)
	}
	if parsed.Version != original.Version {
		t.Errorf("Version = %q, want %q", parsed.Version, original.Version)
	}
	if len(parsed.BuildArgs) != len(original.BuildArgs) {
		t.Errorf("BuildArgs = %v, want %v", parsed.BuildArgs, original.BuildArgs)
	}
	if parsed.Options.Verbose != original.Options.Verbose {
		t.Error("Options.Verbose lost in round trip")
	}
	if parsed.Options.LogFile != original.Options.LogFile {
		t.Errorf("Options.LogFile = %q", parsed.Options.LogFile)
	}
}

func TestGenerateQuotesSpecialCharacters(t *testing.T) {
	cfg := &Config{Dest: `C:\Users\dev\bin`}

	code, err := NewGenerator().Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	parsed, err := NewParser(nil).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("generated config does not parse: %v\n%s", err, code)
	}
	defer parsed.Close()

	if parsed.Dest != cfg.Dest {
		t.Errorf("Dest = %q, want %q", parsed.Dest, cfg.Dest)
	}
}

func TestGenerateIncludesRenameStub(t *testing.T) {
	code, err := NewGenerator().Generate(Starter("~/.local/bin", "0.15.15"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(code, "-- rename = function") {
		t.Errorf("starter config missing the rename stub:\n%s", code)
	}
}
