// Package paths resolves the configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "devotional"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "DEVOTIONAL_CONFIG_DIR"
	EnvDataDir   = "DEVOTIONAL_DATA_DIR"
)

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/devotional (fallback ~/.config/devotional)
// Others:  os.UserConfigDir()/devotional
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/devotional (fallback ~/.local/share/devotional)
// Others:  os.UserConfigDir()/devotional
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func userDir(xdgVar, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir applies flag > DEVOTIONAL_CONFIG_DIR > DefaultConfigDir.
// Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir applies flag > DEVOTIONAL_DATA_DIR > config.yaml data_dir >
// DefaultDataDir. The environment outranks the file so containers can
// relocate the database without editing config.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(DefaultDataDir, flag, os.Getenv(EnvDataDir), configValue)
}

func resolve(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}
