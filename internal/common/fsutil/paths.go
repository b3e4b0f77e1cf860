// fsutil/paths.go
package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// GetExtension returns the file extension with the dot (e.g., ".txt")
func GetExtension(path string) string {
	return filepath.Ext(path)
}

// GetFileNameWithoutExt returns the file name without its extension
func GetFileNameWithoutExt(path string) string {
	baseName := filepath.Base(path)
	extension := filepath.Ext(baseName)
	return baseName[:len(baseName)-len(extension)]
}

// ExpandTilde expands a leading ~ to the user's home directory
func ExpandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
