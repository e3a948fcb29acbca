package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
)

func TestLoadConfigMissingFileYieldsEmptyConfig(t *testing.T) {
	t.Setenv(envConfigPathKey, filepath.Join(t.TempDir(), "does-not-exist.toml"))

	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := newConfig()
	if diff := gocmp.Diff(want, c, gocmp.AllowUnexported(Config{})); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keydrop.toml")

	raw := `
[vault]
path = "/tmp/vault.db"
auto_lock_timeout = "5m"

[sync]
server_url = "https://sync.example.com"
poll_interval = "30s"

[clipboard]
copy_cmd = ["xsel", "-ib"]
paste_cmd = ["xsel", "-ob"]
clear_after = "10s"
`

	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if c.Vault.Path != "/tmp/vault.db" {
		t.Errorf("Vault.Path = %q, want /tmp/vault.db", c.Vault.Path)
	}

	if timeout, err := c.autoLockTimeout(); err != nil || timeout.String() != "5m0s" {
		t.Errorf("autoLockTimeout() = %v, %v, want 5m0s, nil", timeout, err)
	}

	if c.Sync.ServerURL != "https://sync.example.com" {
		t.Errorf("Sync.ServerURL = %q, want https://sync.example.com", c.Sync.ServerURL)
	}

	wantCopyCmd := []string{"xsel", "-ib"}
	if diff := gocmp.Diff(wantCopyCmd, c.Clipboard.CopyCmd); diff != "" {
		t.Errorf("Clipboard.CopyCmd mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigRejectsPartialClipboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keydrop.toml")

	raw := `
[clipboard]
copy_cmd = ["xsel", "-ib"]
`

	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadConfig(path)

	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("LoadConfig error = %v, want *ConfigError", err)
	}

	if ce.Opt != "clipboard" {
		t.Errorf("ConfigError.Opt = %q, want clipboard", ce.Opt)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keydrop.toml")

	raw := `
[vault]
auto_lock_timeout = "not-a-duration"
`

	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig: expected error for invalid duration, got nil")
	}
}
