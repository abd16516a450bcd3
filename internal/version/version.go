// Package version provides version information for hostgate.
// The Version variable is set at build time via ldflags.
package version

// Version is the current version of hostgate.
// Set at build time via: -ldflags "-X github.com/xdg/hostgate/internal/version.Version=v1.0.0"
// Defaults to "dev" for development builds.
var Version = "dev"

// APIVersion is the wire protocol version reported by GET /status.
// It changes only when request or response shapes change incompatibly.
const APIVersion = "1.0"
