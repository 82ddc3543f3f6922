// Package cache stores raw LLM answers so identical prompts are not paid for
// twice. Only the uncorrected answer is cached; post-processing always reruns
// against the current catalog.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/findmindisc/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key hashes its parts into a cache key. Parts are separated so that
// ("ab", "c") and ("a", "bc") never collide.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "findmindisc:v1:" + hex.EncodeToString(hash[:])
}

// Open builds the configured cache: memory in front of disk.
// It returns nil when caching is disabled.
func Open(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	ttl := time.Duration(cfg.TTL) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	dir, err := ExpandHome(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return NewMemoryCache(ttl, 10*time.Minute), nil
	}

	disk := NewDiskCache(dir, ttl)
	disk.maxBytes = int64(cfg.MaxSize) * 1024 * 1024
	return NewLayeredCache(NewMemoryCache(ttl, 10*time.Minute), disk), nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
