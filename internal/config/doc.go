// Package config loads getnode's optional Lua configuration file.
//
// The file is executed by gopher-lua in a sandbox: no os, io or debug
// libraries, no module loading, no raw table access, and a parse timeout.
// A read-only platform table describing the host is injected first, so a
// config can branch on it:
//
//	getnode = {
//	  mirror    = platform.is_linux and "https://mirror.example/dist" or nil,
//	  cache_dir = "~/.cache/node",
//	  retries   = 5,
//	  timeout   = "2m",
//	  progress  = true,
//	  keyring   = "~/.config/getnode/nodejs-keys.gpg",
//	}
//
// Every field is optional. Command line flags and environment variables
// take precedence over the file.
package config
