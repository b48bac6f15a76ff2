package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPaths are searched in order when no config file is given.
var DefaultConfigPaths = []string{
	"bedrockproxy.yaml",
	"bedrockproxy.yml",
	"bedrockproxy.toml",
	"bedrockproxy.json",
	"~/.config/bedrockproxy/config.yaml",
}

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// IsFile reports whether path names an existing regular file.
func IsFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// ResolveConfigPath picks the config file to load. An explicit path must
// exist. Otherwise the first existing candidate wins, and "" means none was
// found.
func ResolveConfigPath(explicit string, candidates ...string) (string, error) {
	if explicit != "" {
		p, err := ExpandHome(explicit)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("config file %s: not found", explicit)
			}
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return p, nil
	}
	for _, c := range candidates {
		p, err := ExpandHome(c)
		if err != nil {
			continue
		}
		if IsFile(p) {
			return p, nil
		}
	}
	return "", nil
}
