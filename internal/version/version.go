// Package version holds build metadata stamped via ldflags.
package version

//nolint:revive // Overwritten by -ldflags at release build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)
