package main

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultConfigName = ".keydrop.toml"
	defaultDBName     = ".keydrop.db"

	// envConfigPathKey overrides the default config file location.
	envConfigPathKey = "KEYDROP_CONFIG_PATH"
)

// ConfigError wraps a config validation or load failure with the field
// that caused it.
type ConfigError struct {
	Opt string
	Err error
}

func (e *ConfigError) Error() string {
	return "config: " + strings.Join([]string{e.Opt, e.Err.Error()}, ": ")
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config is keydrop's on-disk configuration. Every field is optional;
// zero values fall back to the core's own defaults.
//
//nolint:tagalign
type Config struct {
	Vault     VaultConfig      `toml:"vault" json:"vault"`
	Sync      *SyncConfig      `toml:"sync" comment:"Remote sync endpoint. Leave unset to use keydrop only as a local vault." json:"sync"`
	Clipboard *ClipboardConfig `toml:"clipboard" comment:"Both copy and paste commands must be either both set or both unset." json:"clipboard"`

	path string
}

//nolint:tagalign,tagliatelle
type VaultConfig struct {
	Path            string `toml:"path,commented" comment:"vault database path (default: '~/.keydrop.db' if not set)" json:"path,omitempty"`
	AutoLockTimeout string `toml:"auto_lock_timeout,commented" comment:"idle time before the vault re-locks itself (default: '5m')" json:"auto_lock_timeout,omitempty"`
}

//nolint:tagalign,tagliatelle
type SyncConfig struct {
	ServerURL    string `toml:"server_url,commented" comment:"base URL of the sync server" json:"server_url,omitempty"`
	PollInterval string `toml:"poll_interval,commented" comment:"how often background sync and command polling run (default: '30s')" json:"poll_interval,omitempty"`
}

//nolint:tagalign,tagliatelle
type ClipboardConfig struct {
	CopyCmd    []string `toml:"copy_cmd,commented" comment:"command used to copy to the clipboard (default: ['xsel', '-ib'])" json:"copy_cmd,omitempty"`
	PasteCmd   []string `toml:"paste_cmd,commented" comment:"command used to paste from the clipboard (default: ['xsel', '-ob'])" json:"paste_cmd,omitempty"`
	ClearAfter string   `toml:"clear_after,commented" comment:"how long a copied secret stays on the clipboard before being cleared (default: '20s')" json:"clear_after,omitempty"`
}

func newConfig() *Config {
	return &Config{
		Sync:      &SyncConfig{},
		Clipboard: &ClipboardConfig{},
	}
}

// LoadConfig loads the config from path, or from the default location
// if path is empty. A missing file at the default location is not an
// error; it simply yields an empty config.
func LoadConfig(path string) (*Config, error) {
	defaultPath, err := defaultConfigPath()
	if err != nil {
		return nil, err
	}

	configPath := cmp.Or(path, defaultPath)

	c, err := parseConfig(configPath)
	if err != nil {
		if len(path) == 0 && errors.Is(err, fs.ErrNotExist) {
			c = newConfig()
		} else {
			return nil, err
		}
	} else {
		c.path = configPath
	}

	return c, c.validate()
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: user home dir: %w", err)
	}

	path := filepath.Join(home, defaultConfigName)
	if p, ok := os.LookupEnv(envConfigPathKey); ok {
		path = p
	}

	return path, nil
}

func parseConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: stat file: %w", err)
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	c := newConfig()
	if err := toml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("config: parse file: %w", err)
	}

	return c, nil
}

func (c *Config) validate() error {
	if c == nil {
		return &ConfigError{Err: errors.New("cannot validate a nil config")}
	}

	if c.hasPartialClipboard() {
		return &ConfigError{Opt: "clipboard", Err: errors.New("both copy_cmd and paste_cmd must be set or unset together")}
	}

	if _, err := c.autoLockTimeout(); err != nil {
		return &ConfigError{Opt: "vault.auto_lock_timeout", Err: err}
	}

	if _, err := c.pollInterval(); err != nil {
		return &ConfigError{Opt: "sync.poll_interval", Err: err}
	}

	if _, err := c.clearAfter(); err != nil {
		return &ConfigError{Opt: "clipboard.clear_after", Err: err}
	}

	return nil
}

func (c *Config) hasPartialClipboard() bool {
	return (len(c.Clipboard.CopyCmd) == 0) != (len(c.Clipboard.PasteCmd) == 0)
}

func (c *Config) dbPath() (string, error) {
	if len(c.Vault.Path) > 0 {
		return c.Vault.Path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: user home dir: %w", err)
	}

	return filepath.Join(home, defaultDBName), nil
}

func (c *Config) autoLockTimeout() (time.Duration, error) {
	if len(c.Vault.AutoLockTimeout) == 0 {
		return 0, nil
	}

	return time.ParseDuration(c.Vault.AutoLockTimeout)
}

func (c *Config) pollInterval() (time.Duration, error) {
	if c.Sync == nil || len(c.Sync.PollInterval) == 0 {
		return 0, nil
	}

	return time.ParseDuration(c.Sync.PollInterval)
}

func (c *Config) clearAfter() (time.Duration, error) {
	if c.Clipboard == nil || len(c.Clipboard.ClearAfter) == 0 {
		return 0, nil
	}

	return time.ParseDuration(c.Clipboard.ClearAfter)
}
