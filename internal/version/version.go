// Package version reports the program version from ldflags or build info.
package version

import "runtime/debug"

// maxDevelLen bounds "devel+<revision>" strings.
const maxDevelLen = 20

// Effective returns v when set at build time, otherwise the module version or
// the VCS revision recorded by the Go toolchain.
func Effective(v string) string {
	if v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	return fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) string {
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision == "" {
		return "devel"
	}
	ver := "devel+" + revision
	if len(ver) > maxDevelLen {
		ver = ver[:maxDevelLen]
	}
	if dirty {
		ver += "+dirty"
	}
	return ver
}
