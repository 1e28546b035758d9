package build

import (
	"fmt"
	"runtime"
)

// Set at link time with -ldflags "-X github.com/rohmanhakim/ssr-renderer/internal/build.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// Info is the one-line banner printed by `ssr version`.
func Info() string {
	return fmt.Sprintf("ssr %s (built %s, %s)", FullVersion(), BuildTime, runtime.Version())
}
