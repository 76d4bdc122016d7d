// Package config loads redline settings from an optional YAML file and
// REDLINE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/redline/docx"
	"github.com/tsawler/redline/store"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the CLI and library callers.
type Config struct {
	// Author is used for edits whose batch names no author.
	Author string `yaml:"author"`
	// Mode is the traversal mode anchors resolve against: skip or insertions.
	Mode string `yaml:"mode"`
	// RelaxAttempts is how many relaxed anchor retries a not-found edit gets.
	RelaxAttempts int    `yaml:"relax_attempts"`
	StopOnFailure bool   `yaml:"stop_on_failure"`
	LogLevel      string `yaml:"log_level"`

	Store store.Config `yaml:"store"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Author:   "Unknown Author",
		Mode:     "skip",
		LogLevel: "info",
		Store: store.Config{
			Backend: "fs",
			Dir:     "./data/documents",
		},
	}
}

// Load reads path (if non-empty and present) over the defaults, then
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Author = getenv("REDLINE_AUTHOR", c.Author)
	c.Mode = getenv("REDLINE_MODE", c.Mode)
	c.RelaxAttempts = getenvInt("REDLINE_RELAX_ATTEMPTS", c.RelaxAttempts)
	c.StopOnFailure = getenvBool("REDLINE_STOP_ON_FAILURE", c.StopOnFailure)
	c.LogLevel = getenv("REDLINE_LOG_LEVEL", c.LogLevel)

	c.Store.Backend = getenv("REDLINE_STORE_BACKEND", c.Store.Backend)
	c.Store.Dir = getenv("REDLINE_STORE_DIR", c.Store.Dir)
	c.Store.Endpoint = getenv("REDLINE_S3_ENDPOINT", c.Store.Endpoint)
	c.Store.Bucket = getenv("REDLINE_S3_BUCKET", c.Store.Bucket)
	c.Store.AccessKey = getenv("REDLINE_S3_ACCESS_KEY", c.Store.AccessKey)
	c.Store.SecretKey = getenv("REDLINE_S3_SECRET_KEY", c.Store.SecretKey)
	c.Store.Region = getenv("REDLINE_S3_REGION", c.Store.Region)
	c.Store.UseSSL = getenvBool("REDLINE_S3_USE_SSL", c.Store.UseSSL)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RelaxAttempts < 0 {
		return fmt.Errorf("relax_attempts must not be negative, got %d", c.RelaxAttempts)
	}
	switch c.Store.Backend {
	case "", "fs":
		if c.Store.Dir == "" {
			return errors.New("store.dir is required for the fs backend")
		}
	case "minio", "s3":
		if c.Store.Endpoint == "" || c.Store.Bucket == "" {
			return errors.New("store.endpoint and store.bucket are required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// RevisionMode returns the parsed Mode. Call after Validate.
func (c Config) RevisionMode() docx.RevisionMode {
	m, _ := ParseMode(c.Mode)
	return m
}

// Level returns the parsed LogLevel. Call after Validate.
func (c Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseMode maps "skip" and "insertions" to a traversal mode.
func ParseMode(s string) (docx.RevisionMode, error) {
	switch strings.ToLower(s) {
	case "", "skip":
		return docx.SkipRevisions, nil
	case "insertions":
		return docx.WithInsertions, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want skip or insertions)", s)
}

// ParseLevel maps debug, info, warn and error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
