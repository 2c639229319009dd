// Package version holds the build version, overridable at link time with
// -ldflags "-X github.com/shiftwatch/shiftwatch/internal/version.Version=...".
package version

// Version is the current server version.
var Version = "0.4.0"
