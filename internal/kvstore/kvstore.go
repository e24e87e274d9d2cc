// Package kvstore implements the local key/value store: a small file-backed
// string store with one file per key, standing in for the browser's
// persistent storage when the backend runs offline from the cloud store.
//
// The read side never fails outward: a missing key, unreadable file, or
// malformed JSON value is reported as a miss and the caller's declared
// default stands. The write side returns errors so the façade — the one
// layer allowed to decide — can log and continue.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store is a directory-backed key/value store. Values are strings; JSON
// helpers are layered on top. Safe for use from a single process; there is
// no cross-process locking.
type Store struct {
	dir string
	log *slog.Logger
}

// New creates the backing directory if needed and returns a Store.
func New(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore.New: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Get returns the raw string value for key. The second return is false when
// the key is absent or unreadable; read failures are logged, never returned.
func (s *Store) Get(key string) (string, bool) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("kvstore read failed", "key", key, "error", err)
		}
		return "", false
	}
	return string(b), true
}

// Set stores value under key, atomically via a temp-file rename so a crash
// mid-write never leaves a truncated value behind.
func (s *Store) Set(key, value string) error {
	tmp, err := os.CreateTemp(s.dir, "."+sanitize(key)+".tmp-")
	if err != nil {
		return fmt.Errorf("kvstore.Set %q: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("kvstore.Set %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore.Set %q: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore.Set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("kvstore.Remove %q: %w", key, err)
	}
	return nil
}

// Has reports whether key currently holds a value.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Available probes the store with a throwaway write and delete. It returns
// false on any failure (read-only filesystem, quota exhaustion, deleted
// backing directory) so callers can skip local persistence cleanly.
func (s *Store) Available() bool {
	const probe = "availability_probe"
	if err := s.Set(probe, "1"); err != nil {
		return false
	}
	if err := s.Remove(probe); err != nil {
		return false
	}
	return true
}

// GetJSON decodes the value under key into dest. It returns false — leaving
// dest exactly as the caller initialized it — when the key is absent or the
// stored value is not valid JSON for dest. Malformed data is a cache miss,
// never an error.
func (s *Store) GetJSON(key string, dest any) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.log.Warn("kvstore value is not valid JSON, using default", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key.
func (s *Store) SetJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvstore.SetJSON %q: %w", key, err)
	}
	return s.Set(key, string(b))
}

// path maps a key to its backing file. Keys are sanitized so a hostile or
// malformed key can never escape the store directory.
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, sanitize(key)+".json")
}

func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		default:
			return '-'
		}
	}, key)
}
