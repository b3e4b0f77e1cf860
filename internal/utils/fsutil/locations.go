// fsutil/locations.go
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/osutil"
)

// CatalogDirName is the directory holding workflow documents inside config and data dirs
const CatalogDirName = "workflows"

// GetHomeDir returns the user's home directory
func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return home, nil
}

// GetConfigDir returns the appropriate configuration directory for the application
func GetConfigDir(appName string) (string, error) {
	// In development mode, use a local config directory
	if osutil.IsDevEnvironment() {
		return "config", nil
	}

	home, err := GetHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case osutil.Windows:
		// Windows: %APPDATA%\appName
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, appName), nil

	case osutil.MacOS:
		// macOS: ~/Library/Application Support/appName
		return filepath.Join(home, "Library", "Application Support", appName), nil

	default:
		// Linux/Unix: ~/.config/appName (XDG Base Directory specification)
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, appName), nil
	}
}

// GetSystemConfigDir returns the system-wide configuration directory
func GetSystemConfigDir(appName string) (string, error) {
	switch runtime.GOOS {
	case osutil.Windows:
		return filepath.Join(programDataDir(), appName), nil
	case osutil.MacOS:
		return filepath.Join("/Library", "Application Support", appName), nil
	default:
		return filepath.Join("/etc", appName), nil
	}
}

// GetSystemDataDir returns the system-wide data directory
func GetSystemDataDir(appName string) (string, error) {
	// In development mode, use a local data directory
	if osutil.IsDevEnvironment() {
		return "data", nil
	}

	switch runtime.GOOS {
	case osutil.Windows:
		return filepath.Join(programDataDir(), appName, "Data"), nil

	case osutil.MacOS:
		return filepath.Join("/Library", "Application Support", appName), nil

	default:
		// Linux/Unix: /usr/share/appName, preferring /usr/local/share when present
		local := filepath.Join("/usr/local/share", appName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
		return filepath.Join("/usr/share", appName), nil
	}
}

// GetLogDir returns the appropriate log directory for the application
func GetLogDir(appName string) (string, error) {
	// In development mode, use a local logs directory
	if osutil.IsDevEnvironment() {
		return "logs", nil
	}

	home, err := GetHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case osutil.Windows:
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(localAppData, appName, "Logs"), nil

	case osutil.MacOS:
		return filepath.Join(home, "Library", "Logs", appName), nil

	default:
		stateHome := os.Getenv("XDG_STATE_HOME")
		if stateHome == "" {
			stateHome = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(stateHome, appName, "logs"), nil
	}
}

// GetTempDir returns a temporary directory for the application
func GetTempDir(appName string) (string, error) {
	return filepath.Join(os.TempDir(), appName), nil
}

// GetBuiltinCatalogDir returns the directory holding workflows shipped with the application
func GetBuiltinCatalogDir(appName string) (string, error) {
	dataDir, err := GetSystemDataDir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, CatalogDirName), nil
}

// GetUserCatalogDir returns the directory holding the user's own workflows
func GetUserCatalogDir(appName string) (string, error) {
	configDir, err := GetConfigDir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, CatalogDirName), nil
}

func programDataDir() string {
	programData := os.Getenv("ProgramData")
	if programData != "" {
		return programData
	}
	systemDrive := os.Getenv("SystemDrive")
	if systemDrive == "" {
		systemDrive = "C:"
	}
	return filepath.Join(systemDrive, "ProgramData")
}
