// Package version exposes build-time version information for the benchwalk binary.
package version

// Version is the semantic version of the binary, set via -ldflags at build time.
var Version = "dev"

// Commit is the git commit the binary was built from, set via -ldflags.
var Commit = "<unknown>"

// Date is the build timestamp, set via -ldflags.
var Date = "<unknown>"
