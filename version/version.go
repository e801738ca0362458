package version

import "fmt"

// VERSION is overridden at build time with -ldflags "-X".
var VERSION = "dev"

// AppVersion returns the string used to identify this application in the
// documents that it generates.
func AppVersion() string {
	return fmt.Sprintf("rdss-datacite-transcoder %s", VERSION)
}
