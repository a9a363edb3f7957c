// Package buildinfo carries version metadata for the kestrel host tools,
// injected at link time via -ldflags.
package buildinfo

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "unknown"
)

// Short returns the most specific identifier available, for the CLI
// version string.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}
