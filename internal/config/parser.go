package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MercerHollowell/getpurs/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser parses Lua configs with platform detection.
type Parser struct {
	detector platform.Detector
	log      Logger
}

// NewParser creates a config parser with the given platform detector. A nil
// detector skips platform table injection.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, log: defaultLogger()}
}

// WithLogger sets the parser's logger and returns the parser.
func (p *Parser) WithLogger(log Logger) *Parser {
	if log != nil {
		p.log = log
	}
	return p
}

// ParseFile parses a Lua config file from disk.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%d bytes, maximum is %d", info.Size(), MaxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	p.log.Debug("parsing config file", "path", path, "size", info.Size())
	return p.ParseString(ctx, string(data))
}

// ParseString parses a Lua config from a string.
//
// The returned Config owns a live Lua VM when the config declares a rename
// function; the caller must Close it once the rename closure is no longer
// needed.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	keepVM := false
	defer func() {
		if !keepVM {
			L.Close()
		}
	}()

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	config, err := extractConfig(L)
	if err != nil {
		return nil, err
	}

	if config.rename != nil {
		config.vm = L
		keepVM = true
	}

	p.log.Debug("config parsed",
		"dest", config.Dest,
		"platform", config.Platform,
		"version", config.Version,
		"rename", config.rename != nil,
	)
	return config, nil
}

// ParseError represents a config parsing error with a friendly message.
type ParseError struct {
	Message string // user-friendly message
	Detail  string // technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig extracts the config from a Lua state. It expects a global
// "getpurs" table.
func extractConfig(L *lua.LState) (*Config, error) {
	global := L.GetGlobal(luaGlobalGetpurs)
	if global.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalGetpurs),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	config := &Config{}
	table := global.(*lua.LTable)

	config.Dest = stringField(table, luaFieldDest)
	config.Platform = stringField(table, luaFieldPlatform)
	config.Version = stringField(table, luaFieldVersion)
	config.BaseURL = stringField(table, luaFieldBaseURL)
	config.ChecksumURL = stringField(table, luaFieldChecksumURL)
	config.Keyring = stringField(table, luaFieldKeyring)
	config.SourceDir = stringField(table, luaFieldSourceDir)
	config.SourceURL = stringField(table, luaFieldSourceURL)

	if argsVal := table.RawGetString(luaFieldBuildArgs); argsVal.Type() == lua.LTTable {
		config.BuildArgs = extractStrings(argsVal.(*lua.LTable))
	}

	if renameVal := table.RawGetString(luaFieldRename); renameVal.Type() == lua.LTFunction {
		config.rename = renameVal.(*lua.LFunction)
	}

	if optsVal := table.RawGetString(luaFieldOptions); optsVal.Type() == lua.LTTable {
		config.Options = extractOptions(optsVal.(*lua.LTable))
	}

	if err := config.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return config, nil
}

func stringField(table *lua.LTable, field string) string {
	if val := table.RawGetString(field); val.Type() == lua.LTString {
		return val.String()
	}
	return ""
}

// extractStrings collects array-style string entries, skipping nil values
// left behind by platform conditionals like:
//
//	platform.is_linux and "--flag" or nil
func extractStrings(table *lua.LTable) []string {
	var out []string
	table.ForEach(func(key, value lua.LValue) {
		if value.Type() != lua.LTString {
			return
		}
		out = append(out, value.String())
	})
	return out
}

func extractOptions(table *lua.LTable) Options {
	options := Options{}
	if verboseVal := table.RawGetString(luaFieldVerbose); verboseVal.Type() == lua.LTBool {
		options.Verbose = bool(verboseVal.(lua.LBool))
	}
	options.LogFile = stringField(table, luaFieldLogFile)
	return options
}

// FormatError formats a ParseError for user display. In verbose mode, the
// raw Lua error is shown in full.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
