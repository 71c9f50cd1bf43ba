package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalGitrel     = "gitrel"
	luaFieldGitHub      = "github"
	luaFieldInstall     = "install"
	luaFieldVerify      = "verify"
	luaFieldLog         = "log"
	luaFieldToken       = "token"
	luaFieldAPIURL      = "api_url"
	luaFieldPerPage     = "per_page"
	luaFieldMaxPages    = "max_pages"
	luaFieldBinDir      = "bin_dir"
	luaFieldStrip       = "strip"
	luaFieldRequireSum  = "require_checksum"
	luaFieldKeyring     = "keyring"
	luaFieldMinisignKey = "minisign_key"
	luaFieldLevel       = "level"
)

// Files inside the config directory
const (
	ConfigFileName    = "config.lua"
	TokenFileName     = "github_token.plain"
	GitignoreFileName = ".gitignore"
	AppDirName        = "gitrel"
)

// Environment variables
const (
	EnvConfigDir   = "GITREL_CONFIG_DIR"
	EnvToken       = "GITREL_TOKEN"
	EnvGitHubToken = "GITHUB_TOKEN"
)

// Defaults
const (
	DefaultAPIURL     = "https://api.github.com"
	DefaultPerPage    = 25
	DefaultMaxPages   = 5
	DefaultLogLevel   = "warn"
	MaxPerPage        = 100
	MaxConfigSize     = 1 << 20
	DefaultParseLimit = 5 * time.Second
)
