// Package version holds the build version.
package version

// Version is overridden at build time via -ldflags.
var Version = "1.0.0"
