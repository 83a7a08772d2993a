package config

// Lua schema field names and globals
const (
	luaGlobalGetpurs    = "getpurs"
	luaFieldDest        = "dest"
	luaFieldPlatform    = "platform"
	luaFieldVersion     = "version"
	luaFieldBaseURL     = "base_url"
	luaFieldChecksumURL = "checksum_url"
	luaFieldKeyring     = "keyring"
	luaFieldSourceDir   = "source_dir"
	luaFieldSourceURL   = "source_url"
	luaFieldBuildArgs   = "build_args"
	luaFieldRename      = "rename"
	luaFieldOptions     = "options"
	luaFieldVerbose     = "verbose"
	luaFieldLogFile     = "log_file"
)

// Validation limits
const (
	// MaxConfigSize caps the config file size read from disk.
	MaxConfigSize = 256 << 10
	// MaxBuildArgs caps the build_args list length.
	MaxBuildArgs = 64
	// MaxBuildArgLength caps a single build argument.
	MaxBuildArgLength = 256
	// MaxVersionLength caps the version string.
	MaxVersionLength = 64
)
