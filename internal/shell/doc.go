// Package shell prints the commands that put an installed Node.js release
// on PATH for the caller's shell.
//
// Typical use:
//
//	eval "$(getnode --env bash 20.5.0)"
//	getnode --env fish 20.5.0 | source
//
// # Shell Detection
//
// With --env auto the shell is detected by:
//  1. $SHELL environment variable (most reliable)
//  2. Parent process name, read with gopsutil (fallback)
//
// Supported shells are bash, zsh, fish and PowerShell.
package shell
