// Package versioninfo holds build-time version metadata for the aish binary.
package versioninfo

// Version is the aish version. Overridden at build time via
// -ldflags "-X github.com/aishell/cli/cmd/aish/cli/versioninfo.Version=...".
var Version = "dev"

// Commit is the git commit the binary was built from.
var Commit = "unknown"
