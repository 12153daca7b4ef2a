// Package version carries build-time version metadata.
package version

// Populated via -ldflags at release time.
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)
