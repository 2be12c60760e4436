package version

import "runtime/debug"

// Version is the current mcpbridge version.
var Version = "0.0.0-dev"

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	// When mcpbridge is the main module, its version is recorded there rather
	// than in the dependency list.
	if info.Main.Path == modulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
		return
	}

	// Otherwise look through the binary's dependencies.
	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			Version = dep.Version
		}
	}
}

const modulePath = "github.com/dogmatiq/mcpbridge"
