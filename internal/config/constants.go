package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalGetnode = "getnode"
	luaFieldMirror   = "mirror"
	luaFieldCacheDir = "cache_dir"
	luaFieldRetries  = "retries"
	luaFieldTimeout  = "timeout"
	luaFieldProgress = "progress"
	luaFieldKeyring  = "keyring"
)

// Limits applied to config files.
const (
	MaxConfigSize = 1 << 20
	MaxRetries    = 10
	ParseTimeout  = 5 * time.Second
)

// Environment variables and file names.
const (
	EnvConfigPath  = "GETNODE_CONFIG"
	ConfigDirName  = "getnode"
	ConfigFileName = "config.lua"
)
