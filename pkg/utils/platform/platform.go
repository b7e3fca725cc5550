// Package platform concentrates the OS-specific path and naming
// conventions of the installer.
package platform

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/m-mizutani/goerr/v2"
)

// Identifier returns the platform string used to match release assets,
// e.g. "linux-x64", "macos-arm64", "windows-x64".
func Identifier() string {
	system := runtime.GOOS
	if system == "darwin" {
		system = "macos"
	}

	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "arm64"
	}

	return system + "-" + arch
}

// ExeSuffix returns ".exe" on Windows, otherwise an empty string.
func ExeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// DefaultInstallDir returns the conventional per-user install location for
// the game.
func DefaultInstallDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve home directory")
	}

	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "Programs", "ROLLER"), nil
		}
		return filepath.Join(home, "AppData", "Local", "Programs", "ROLLER"), nil
	case "darwin":
		return filepath.Join(home, "Applications", "ROLLER"), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "ROLLER"), nil
		}
		return filepath.Join(home, ".local", "share", "ROLLER"), nil
	}
}
