package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortVersion(t *testing.T) {
	defer func(v, c string) {
		Version, Commit = v, c
	}(Version, Commit)

	Version, Commit = "", ""
	assert.Equal(t, "unknown", shortVersion())

	Version = "1.2.0"
	assert.Equal(t, "1.2.0", shortVersion())

	Commit = "abc123"
	assert.Equal(t, "1.2.0@abc123", shortVersion())
}

func TestUserAgent(t *testing.T) {
	assert.Contains(t, UserAgent(), "webinspectapi/")
	assert.Contains(t, UserAgent(), runtime.GOOS)
}

func TestPrintVersion(t *testing.T) {
	defer func(v, c string) {
		Version, Commit = v, c
	}(Version, Commit)

	var buf strings.Builder

	Version, Commit = "", ""
	PrintVersion(&buf)
	assert.True(t, strings.HasPrefix(buf.String(), "Version information not available\n"))

	buf.Reset()
	Version, Commit = "1.2.0", "abc123"
	PrintVersion(&buf)
	assert.True(t, strings.HasPrefix(buf.String(), "Version: 1.2.0\nCommit: abc123\n"))
	assert.Contains(t, buf.String(), "User-Agent: webinspectapi/")
}
