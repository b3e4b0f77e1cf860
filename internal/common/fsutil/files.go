// fsutil/files.go
package fsutil

import (
	"os"
)

// FileExists checks if a file exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsReadable checks if a file can be opened for reading by the current user
func IsReadable(path string) bool {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// IsReadableFile reports whether path names an existing regular file that can be read
func IsReadableFile(path string) bool {
	return FileExists(path) && IsReadable(path)
}
