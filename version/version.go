package version

import (
	"fmt"
	"strings"
	"sync"
)

// buildCharacters lists the characters allowed in appBuild.
const buildCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

const (
	appName  = "ulordd"
	appMajor = 1
	appMinor = 2
	appPatch = 0
)

// appBuild is set at link time with
// '-ldflags "-X github.com/ulordnet/ulordd/version.appBuild=foo"'.
// A value containing characters outside buildCharacters is ignored.
var appBuild string

var (
	version     string
	versionOnce sync.Once
)

// Version returns the semantic version of ulordd, followed by the build
// metadata when there is any.
func Version() string {
	versionOnce.Do(func() {
		version = fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
		if build := sanitizeBuild(appBuild); build != "" {
			version = version + "-" + build
		}
	})
	return version
}

// UserAgent returns the name and version of ulordd in the BIP-0014 format
// used by Ulord nodes, e.g. "/ulordd:1.2.0/".
func UserAgent() string {
	return fmt.Sprintf("/%s:%s/", appName, Version())
}

// sanitizeBuild returns build unless it contains a character outside
// buildCharacters, in which case it returns an empty string.
func sanitizeBuild(build string) string {
	for _, r := range build {
		if !strings.ContainsRune(buildCharacters, r) {
			return ""
		}
	}
	return build
}
