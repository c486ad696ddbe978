package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JAR_INDEXER_HOME", "")
	t.Setenv("JAR_INDEXER_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	// A missing file pointed at by env is tolerated only when not explicit;
	// here it is explicit via env, so expect the error.
	if _, err := Load(""); err == nil {
		t.Fatal("explicit missing config file accepted")
	}

	t.Setenv("JAR_INDEXER_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DownloadRetries != 3 || cfg.LockWait != 5*time.Second {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.BaseDir == "" {
		t.Fatal("base dir not defaulted")
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
base_dir: /var/lib/jarindexer
mirrors:
  - https://repo1.maven.org/maven2/{group}/{artifact}/{version}/{artifact}-{version}-sources.jar
download_retries: 5
download_timeout: 90s
default_git_ref: main
lock_wait: 2s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("JAR_INDEXER_HOME", "")
	t.Setenv("JAR_INDEXER_CONFIG", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseDir != "/var/lib/jarindexer" {
		t.Fatalf("base dir = %q", cfg.BaseDir)
	}
	if len(cfg.Mirrors) != 1 {
		t.Fatalf("mirrors = %v", cfg.Mirrors)
	}
	if cfg.DownloadRetries != 5 || cfg.DownloadTimeout != 90*time.Second || cfg.LockWait != 2*time.Second {
		t.Fatalf("budgets = %+v", cfg)
	}
	if cfg.DefaultGitRef != "main" {
		t.Fatalf("default git ref = %q", cfg.DefaultGitRef)
	}

	// Env wins over file.
	t.Setenv("JAR_INDEXER_HOME", "/custom/home")
	t.Setenv("JAR_INDEXER_DEFAULT_GIT_REF", "develop")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load with env: %v", err)
	}
	if cfg.BaseDir != "/custom/home" || cfg.DefaultGitRef != "develop" {
		t.Fatalf("env precedence broken: %+v", cfg)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("git_timeout: sometimes\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("bad duration accepted")
	}
}
