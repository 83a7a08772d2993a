package acquire

import (
	"strings"
	"time"
	"unicode"

	"github.com/MercerHollowell/getpurs/internal/download"
	"github.com/MercerHollowell/getpurs/internal/platform"
)

const (
	// DefaultVerifyTimeout bounds subprocess probes and binary verification.
	DefaultVerifyTimeout = 50 * time.Second
	// DefaultMaxOutput caps captured subprocess output.
	DefaultMaxOutput = 1 << 20
)

// Limits bounds the subprocesses an acquisition spawns (the toolchain probe
// and the downloaded-binary verification). Builds are not bounded here;
// compiling the compiler legitimately takes a long time.
type Limits struct {
	// Timeout per subprocess (default DefaultVerifyTimeout).
	Timeout time.Duration
	// MaxOutput caps captured subprocess output in bytes (default DefaultMaxOutput).
	MaxOutput int64
}

// Request describes one acquisition. Dest is the only required field.
type Request struct {
	// Dest is the directory the compiler binary is installed into.
	Dest string

	// Platform selects the target OS. Empty means the running host; alias
	// names like "win64" or "osx" are accepted. Requesting a platform other
	// than the host disables verification and the source-build fallback.
	Platform string

	// Version is the compiler release to acquire (default download.DefaultVersion).
	Version string

	// Rename maps the default binary name ("purs" or "purs.exe") to the
	// installed file name. It must return a plain file name. Nil keeps the
	// default.
	Rename func(name string) string

	// BaseURL overrides the release download root.
	BaseURL string

	// ChecksumURL optionally points at a SHA256 checksum file covering the
	// release archive.
	ChecksumURL string

	// Keyring is an optional GPG keyring path used to verify the release
	// archive's detached signature.
	Keyring string

	// SourceDir points a fallback build at an existing source tree instead
	// of downloading one.
	SourceDir string

	// SourceURL overrides the source tarball location for fallback builds.
	SourceURL string

	// BuildArgs are extra arguments appended to the toolchain build command.
	BuildArgs []string

	// Limits bounds probe and verification subprocesses.
	Limits Limits

	// Logger receives operational logs. Nil discards them.
	Logger Logger
}

// resolved is a validated request with every default filled in.
type resolved struct {
	dest        string
	platform    string // canonical target OS
	arch        string // normalized host architecture
	native      bool
	version     string
	fetchName   string // installed name for the download path
	buildName   string // installed name for the build path
	baseURL     string
	checksumURL string
	keyring     string
	sourceDir   string
	sourceURL   string
	buildArgs   []string
	limits      Limits
	log         Logger
}

func (r Request) resolve() (*resolved, error) {
	if strings.TrimSpace(r.Dest) == "" {
		return nil, &ArgumentError{Field: "dest", Reason: "must be a non-empty directory path"}
	}

	arch, err := platform.NativeArch()
	if err != nil {
		return nil, &ArgumentError{Field: "platform", Reason: err.Error()}
	}

	osName := platform.Normalize(r.Platform)
	native := osName == platform.Native()

	rename := r.Rename
	if rename == nil {
		rename = func(name string) string { return name }
	}

	fetchName := rename(platform.BinaryName(osName))
	if reason := checkName(fetchName); reason != "" {
		return nil, &ArgumentError{Field: "rename", Reason: reason}
	}
	// The build always runs natively, so its default name can differ from
	// the download's for cross-platform requests.
	buildName := rename(platform.BinaryName(platform.Native()))
	if reason := checkName(buildName); reason != "" {
		return nil, &ArgumentError{Field: "rename", Reason: reason}
	}

	version := r.Version
	if version == "" {
		version = download.DefaultVersion
	}

	limits := r.Limits
	if limits.Timeout <= 0 {
		limits.Timeout = DefaultVerifyTimeout
	}
	if limits.MaxOutput <= 0 {
		limits.MaxOutput = DefaultMaxOutput
	}

	log := r.Logger
	if log == nil {
		log = defaultLogger()
	}

	return &resolved{
		dest:        r.Dest,
		platform:    osName,
		arch:        arch,
		native:      native,
		version:     version,
		fetchName:   fetchName,
		buildName:   buildName,
		baseURL:     r.BaseURL,
		checksumURL: r.ChecksumURL,
		keyring:     r.Keyring,
		sourceDir:   r.SourceDir,
		sourceURL:   r.SourceURL,
		buildArgs:   r.BuildArgs,
		limits:      limits,
		log:         log,
	}, nil
}

// checkName rejects renamed binary names that would escape the destination
// directory or corrupt terminal output.
func checkName(name string) string {
	if name == "" {
		return "rename returned an empty name"
	}
	if strings.ContainsAny(name, `/\`) {
		return "renamed binary must not contain path separators"
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "renamed binary must not contain control characters"
		}
	}
	return ""
}
