package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	baseDirEnv       = "JAR_INDEXER_HOME"
	configPathEnv    = "JAR_INDEXER_CONFIG"
	defaultGitRefEnv = "JAR_INDEXER_DEFAULT_GIT_REF"

	defaultBaseDirName = ".jar-indexer"
	configFileName     = "config.yaml"
)

// Config carries the few runtime knobs the server has. Precedence is
// defaults, then the YAML config file, then environment variables.
type Config struct {
	BaseDir         string
	Mirrors         []string
	DownloadRetries int
	DownloadTimeout time.Duration
	GitTimeout      time.Duration
	DefaultGitRef   string
	LockWait        time.Duration
}

func Default() *Config {
	return &Config{
		DownloadRetries: 3,
		DownloadTimeout: 60 * time.Second,
		GitTimeout:      5 * time.Minute,
		LockWait:        5 * time.Second,
	}
}

type fileConfig struct {
	BaseDir         string   `yaml:"base_dir"`
	Mirrors         []string `yaml:"mirrors"`
	DownloadRetries int      `yaml:"download_retries"`
	DownloadTimeout string   `yaml:"download_timeout"`
	GitTimeout      string   `yaml:"git_timeout"`
	DefaultGitRef   string   `yaml:"default_git_ref"`
	LockWait        string   `yaml:"lock_wait"`
}

// Load builds the effective configuration. An explicit path overrides the
// JAR_INDEXER_CONFIG env var, which overrides the default location under the
// base dir. A missing config file is not an error.
func Load(path string) (*Config, error) {
	// Opportunistic .env loading for local development.
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = strings.TrimSpace(os.Getenv(configPathEnv))
		explicit = path != ""
	}
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, defaultBaseDirName, configFileName)
		}
	}
	if path != "" {
		if err := applyFile(cfg, path, explicit); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv(baseDirEnv)); v != "" {
		cfg.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv(defaultGitRefEnv)); v != "" {
		cfg.DefaultGitRef = v
	}

	if cfg.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home dir: %w", err)
		}
		cfg.BaseDir = filepath.Join(home, defaultBaseDirName)
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string, explicit bool) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.BaseDir != "" {
		cfg.BaseDir = fc.BaseDir
	}
	if len(fc.Mirrors) > 0 {
		cfg.Mirrors = fc.Mirrors
	}
	if fc.DownloadRetries > 0 {
		cfg.DownloadRetries = fc.DownloadRetries
	}
	if fc.DefaultGitRef != "" {
		cfg.DefaultGitRef = fc.DefaultGitRef
	}
	for _, d := range []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{fc.DownloadTimeout, &cfg.DownloadTimeout, "download_timeout"},
		{fc.GitTimeout, &cfg.GitTimeout, "git_timeout"},
		{fc.LockWait, &cfg.LockWait, "lock_wait"},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config %s: invalid %s %q: %w", path, d.name, d.raw, err)
		}
		*d.dst = parsed
	}
	return nil
}
