package version

import (
	"fmt"
	"io"
	"runtime"
)

// Version number set by the build
var Version = ""

// Commit id set by the build
var Commit = ""

// GlobalUserAgent the useragent sent with API requests unless a client
// overrides it
var GlobalUserAgent = fmt.Sprintf("webinspectapi/%s (%s %s)", shortVersion(), runtime.GOOS, runtime.GOARCH)

// PrintVersion writes the build information to w
func PrintVersion(w io.Writer) {
	if len(Version) > 0 {
		fmt.Fprintf(w, "Version: %v\n", Version)

		if len(Commit) > 0 {
			fmt.Fprintf(w, "Commit: %v\n", Commit)
		}
	} else {
		fmt.Fprintln(w, "Version information not available")
	}

	fmt.Fprintf(w, "User-Agent: %v\n", GlobalUserAgent)
}

func shortVersion() string {
	if len(Version) > 0 {
		if len(Commit) > 0 {
			return Version + "@" + Commit
		}
		return Version
	}
	return "unknown"
}

// UserAgent returns the default user agent
func UserAgent() string {
	return GlobalUserAgent
}
