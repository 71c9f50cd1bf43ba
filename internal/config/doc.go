// Package config loads gitrel's user configuration and locates its files.
//
// # Files
//
// Everything lives in one directory, chosen by --config-dir, then
// GITREL_CONFIG_DIR, then <user config dir>/gitrel:
//   - config.lua: optional settings, evaluated in a sandboxed Lua VM
//   - packages.toml: the installed package registry
//   - github_token.plain: optional token, listed in .gitignore
//
// # Schema
//
//	gitrel = {
//	  github  = { token = nil, api_url = "https://api.github.com", per_page = 25, max_pages = 5 },
//	  install = { bin_dir = nil, strip = false },
//	  verify  = { require_checksum = false, keyring = nil, minisign_key = nil },
//	  log     = { level = "warn" },
//	}
//
// Every field is optional. The read-only platform table is available, so
// values can depend on the host:
//
//	gitrel = {
//	  install = { bin_dir = platform.is_windows and "~/tools" or "~/.local/bin" },
//	}
//
// # Sandbox
//
// os, io, debug, module loading and metatable access are removed before the
// file runs. Evaluation is bounded by a call stack limit, a registry limit
// and a timeout of DefaultParseLimit unless the context sets a deadline.
//
// # Tokens
//
// ResolveToken checks, in order: the --token flag, GITREL_TOKEN,
// GITHUB_TOKEN, gitrel.github.token, the token file. A token written into
// config.lua is logged as a warning by ParseFile.
package config
