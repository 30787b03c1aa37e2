package version

import "regexp"

// Release builds set Version with -ldflags "-X oss.terrastruct.com/texmath/lib/version.Version=...".
var Version = "v0.1.0-HEAD"

var semver = regexp.MustCompile(`[0-9]+\.[0-9]+\.[0-9]+`)

// OnlyNumbers returns the MAJOR.MINOR.PATCH part of Version.
func OnlyNumbers() string {
	return semver.FindString(Version)
}
