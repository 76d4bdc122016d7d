// Package store keeps uploaded documents under generated keys so that a
// document can be uploaded once, edited in place and downloaded later.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no object exists under a key.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for empty keys, absolute keys and keys
	// that leave the store root.
	ErrInvalidKey = errors.New("invalid key")
)

// Store is an object store for document bytes.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a backend.
type Config struct {
	Backend   string `yaml:"backend"` // fs or minio
	Dir       string `yaml:"dir"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Open returns the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "fs":
		return NewFileStore(cfg.Dir)
	case "minio", "s3":
		return NewMinioStore(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// NewKey returns a fresh random key with the given extension, e.g.
// "3b241101-e2bb-4255-8caf-4136c566a962.docx".
func NewKey(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return uuid.NewString() + ext
}

// Upload stores data under a new key and returns the key.
func Upload(ctx context.Context, s Store, data []byte, ext, contentType string) (string, error) {
	key := NewKey(ext)
	if err := s.Put(ctx, key, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Update replaces the object under key with the result of fn applied to
// its current bytes.
func Update(ctx context.Context, s Store, key, contentType string, fn func([]byte) ([]byte, error)) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	out, err := fn(data)
	if err != nil {
		return err
	}
	if bytes.Equal(out, data) {
		return nil
	}
	return s.Put(ctx, key, out, contentType)
}

// cleanKey validates key and returns it in canonical slash form.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return c, nil
}
