// Package version reports the build of the monitoring plugins.
package version

import "runtime/debug"

// These variables are set via ldflags during build
//
//nolint:gochecknoglobals // These are intentionally global for ldflags injection
var (
	version = "dev"
	buildID = "dev"
)

// GetVersion returns the ldflags version, or the module version when the
// binary was built with go install.
func GetVersion() string {
	if version != "dev" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}

	return version
}

// GetBuildID returns the current build ID
func GetBuildID() string {
	return buildID
}

// GetFullVersion returns version with build ID
func GetFullVersion() string {
	return GetVersion() + " (build: " + buildID + ")"
}

// Banner is the --version line of a plugin binary.
func Banner(program string) string {
	return program + " " + GetFullVersion()
}
