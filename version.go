package swallow

import "runtime/debug"

// BuildVersion can be set at build time via
// -ldflags "-X github.com/aretw0/swallow.BuildVersion=v1.2.3".
var BuildVersion = ""

// Version returns BuildVersion, falling back to the module version recorded
// in the binary.
func Version() string {
	if BuildVersion != "" {
		return BuildVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
