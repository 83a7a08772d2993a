package config

import (
	"bytes"
	"strings"
	"time"
)

// Generator generates Lua configuration code from Go structs.
type Generator struct {
	indent string
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ", // Two spaces
	}
}

// Generate generates Lua code from a Config struct. The output is formatted,
// human-readable, and parses back into an equivalent Config. Rename
// functions cannot be generated; a commented stub is written instead so
// users discover the hook.
func (g *Generator) Generate(config *Config) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("-- getpurs configuration\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(time.Now().Format(time.RFC3339))
	buf.WriteString("\n\n")

	buf.WriteString(luaGlobalGetpurs + " = {\n")

	g.writeStringField(&buf, luaFieldDest, config.Dest)
	g.writeStringField(&buf, luaFieldPlatform, config.Platform)
	g.writeStringField(&buf, luaFieldVersion, config.Version)
	g.writeStringField(&buf, luaFieldBaseURL, config.BaseURL)
	g.writeStringField(&buf, luaFieldChecksumURL, config.ChecksumURL)
	g.writeStringField(&buf, luaFieldKeyring, config.Keyring)
	g.writeStringField(&buf, luaFieldSourceDir, config.SourceDir)
	g.writeStringField(&buf, luaFieldSourceURL, config.SourceURL)

	if len(config.BuildArgs) > 0 {
		g.writeBuildArgs(&buf, config.BuildArgs)
	}

	buf.WriteString("\n")
	buf.WriteString(g.indent)
	buf.WriteString("-- " + luaFieldRename + " = function(name) return name end,\n")

	if config.Options.Verbose || config.Options.LogFile != "" {
		g.writeOptions(&buf, config.Options)
	}

	buf.WriteString("}\n")

	return buf.String(), nil
}

func (g *Generator) writeStringField(buf *bytes.Buffer, field, value string) {
	if value == "" {
		return
	}
	buf.WriteString(g.indent)
	buf.WriteString(field)
	buf.WriteString(" = ")
	buf.WriteString(g.quoteLuaString(value))
	buf.WriteString(",\n")
}

func (g *Generator) writeBuildArgs(buf *bytes.Buffer, args []string) {
	buf.WriteString(g.indent)
	buf.WriteString(luaFieldBuildArgs + " = {\n")
	for _, arg := range args {
		buf.WriteString(g.indent)
		buf.WriteString(g.indent)
		buf.WriteString(g.quoteLuaString(arg))
		buf.WriteString(",\n")
	}
	buf.WriteString(g.indent)
	buf.WriteString("},\n")
}

func (g *Generator) writeOptions(buf *bytes.Buffer, options Options) {
	buf.WriteString("\n")
	buf.WriteString(g.indent)
	buf.WriteString(luaFieldOptions + " = {\n")
	if options.Verbose {
		buf.WriteString(g.indent)
		buf.WriteString(g.indent)
		buf.WriteString(luaFieldVerbose + " = true,\n")
	}
	if options.LogFile != "" {
		buf.WriteString(g.indent)
		buf.WriteString(g.indent)
		buf.WriteString(luaFieldLogFile + " = ")
		buf.WriteString(g.quoteLuaString(options.LogFile))
		buf.WriteString(",\n")
	}
	buf.WriteString(g.indent)
	buf.WriteString("},\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}

// Starter returns the config written by the init command: the built-in
// defaults spelled out so users have something concrete to edit.
func Starter(dest, version string) *Config {
	return &Config{
		Dest:    dest,
		Version: version,
	}
}
