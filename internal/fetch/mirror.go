package fetch

import (
	"os"
	"strings"

	"github.com/ZebulonRouseFrantzich/getnode/internal/install"
)

// DefaultMirror is the official Node.js distribution server.
const DefaultMirror = install.DefaultMirror

// MirrorEnvVars are consulted in order by MirrorFromEnv. They are the
// variables other Node.js version managers use for the same purpose.
var MirrorEnvVars = []string{
	"NODE_MIRROR",
	"NVM_NODEJS_ORG_MIRROR",
	"N_NODE_MIRROR",
	"NODIST_NODE_MIRROR",
}

// MirrorFromEnv returns the first mirror set in the environment, or "".
func MirrorFromEnv() string {
	for _, name := range MirrorEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// ResolveMirror returns the first non-empty candidate without trailing
// slashes, or DefaultMirror.
func ResolveMirror(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimRight(strings.TrimSpace(c), "/"); c != "" {
			return c
		}
	}
	return DefaultMirror
}
