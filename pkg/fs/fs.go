package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileExists checks to see if a path exists and is a file
func FileExists(path string) bool {
	info, err := os.Stat(path)

	if err != nil && !os.IsNotExist(err) {
		return false
	}

	return info != nil && err == nil && !info.IsDir()
}

// CleanJoin checks to make sure that the joined path stays inside prefix, this
// is to control for path traversal (e.g. a scan ID of "../../etc/x")
func CleanJoin(prefix string, elem string) (string, error) {
	cleanPrefix := filepath.Clean(prefix)
	destPath := filepath.Join(cleanPrefix, elem)

	dir := cleanPrefix
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}

	if destPath == cleanPrefix || !strings.HasPrefix(destPath, dir) {
		return "", fmt.Errorf("illegal file path: path=%q", elem)
	}

	return destPath, nil
}
