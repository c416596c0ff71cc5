// Package version reports the tyname build version.
package version

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version returns the module version when installed with `go install
// ...@version`, and "devel-<VERSION>+<revision>" for development builds.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	return fromBuildInfo(strings.TrimSpace(embeddedVersion), info, ok)
}

// GoVersion returns the toolchain the binary was built with.
func GoVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

func fromBuildInfo(base string, info *debug.BuildInfo, ok bool) string {
	if !ok || info == nil {
		return base
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var rev string
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			rev = s.Value[:7]
			break
		}
	}
	if rev != "" {
		return "devel-" + base + "+" + rev
	}
	return "devel-" + base
}
