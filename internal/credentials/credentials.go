// Package credentials stores the server URL and token used by auth login.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appDir   = "sonar-cli"
	fileName = "config.yaml"
)

// StoredConfig is the on-disk shape of the credentials file.
type StoredConfig struct {
	URL   string `yaml:"url,omitempty"`
	Token string `yaml:"token,omitempty"`
}

// Empty reports whether nothing has been stored.
func (s StoredConfig) Empty() bool {
	return s.URL == "" && s.Token == ""
}

// Store reads and writes one credentials file.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the store under the XDG config directory.
func DefaultStore() *Store {
	return NewStore(filepath.Join(xdg.ConfigHome, appDir, fileName))
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Load returns the stored credentials. A missing or unreadable file yields an
// empty config; stored credentials are a fallback, never a hard requirement.
func (s *Store) Load() StoredConfig {
	var cfg StoredConfig
	data, err := os.ReadFile(s.path)
	if err != nil {
		return StoredConfig{}
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return StoredConfig{}
	}
	return cfg
}

// Save writes the credentials with owner-only permissions.
func (s *Store) Save(cfg StoredConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(s.path, 0o600)
}

// Remove deletes the credentials file. Removing a missing file is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// MaskToken hides all but the first and last four characters of a token.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
