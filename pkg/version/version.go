// Package version reports the fedipage build version.
package version

import "fmt"

// Set at build time with -ldflags "-X github.com/fedipage/fedipage/pkg/version.version=...".
//
//nolint:gochecknoglobals // Linker-injected build metadata.
var (
	version = "dev"
	commit  = ""
)

// GetVersion returns the build version, with the short commit when known.
func GetVersion() string {
	if commit == "" {
		return version
	}
	short := commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", version, short)
}
