package shell

import (
	"fmt"
	"strings"
)

// Environment returns the commands that prepend binDir to PATH in shell.
func Environment(shell ShellType, binDir string) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}

	switch shell {
	case ShellFish:
		return fmt.Sprintf("set -gx PATH %s $PATH\n", quoteFish(binDir)), nil
	case ShellPowerShell:
		return fmt.Sprintf("$env:PATH = %s + [IO.Path]::PathSeparator + $env:PATH\n", quotePowerShell(binDir)), nil
	default:
		return fmt.Sprintf("export PATH=%s:\"$PATH\"\n", quotePOSIX(binDir)), nil
	}
}

func quotePOSIX(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func quoteFish(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func quotePowerShell(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
