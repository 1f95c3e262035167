// Package config locates tusk's configuration files and stores credentials.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the tusk configuration directory.
// Respects XDG_CONFIG_HOME on Unix, APPDATA on Windows.
func Dir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, "tusk")
}

// InitFile returns the path to init.lua
func InitFile() string {
	return filepath.Join(Dir(), "init.lua")
}

// CredentialsFile returns the path to credentials.toml
func CredentialsFile() string {
	return filepath.Join(Dir(), "credentials.toml")
}

// LogFile returns the path of the debug log.
func LogFile() string {
	return filepath.Join(Dir(), "tusk.log")
}
