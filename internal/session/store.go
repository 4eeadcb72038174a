// Package session manages the persisted credential session and its lifecycle
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Persisted entry keys. The platform's web client stores the same two
// values as browser cookies.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// DefaultTTL matches the platform's 30-day cookie expiry.
const DefaultTTL = 30 * 24 * time.Hour

// Store is the credential persistence capability: a named-value jar with
// per-entry expiry. Alternate backends (encrypted file, OS keychain,
// server-side session) substitute here without touching call sites.
type Store interface {
	// Get returns the value for name, or false if absent or expired.
	Get(name string) (string, bool)

	// Set stores a value. ttl <= 0 means DefaultTTL.
	Set(name, value string, ttl time.Duration) error

	// Remove deletes a value. Removing an absent name is not an error.
	Remove(name string) error
}

// entry is the on-disk representation of one stored value.
type entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileStore persists entries as a JSON document on disk. Reads and
// writes are synchronous; single-process access is assumed.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore creates a file-backed store at path. The file and parent
// directory are created lazily on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) load() (map[string]entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	entries := map[string]entry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt session file: treat as empty rather than locking the
		// user out of re-authenticating.
		return map[string]entry{}, nil
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Get implements Store.
func (s *FileStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false
	}

	e, ok := entries[name]
	if !ok {
		return "", false
	}
	if s.now().After(e.ExpiresAt) {
		return "", false
	}
	return e.Value, true
}

// Set implements Store.
func (s *FileStore) Set(name, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	now := s.now()
	entries[name] = entry{Value: value, ExpiresAt: now.Add(ttl)}

	// Prune expired entries while we hold the file anyway.
	for k, e := range entries {
		if now.After(e.ExpiresAt) {
			delete(entries, k)
		}
	}

	return s.save(entries)
}

// Remove implements Store.
func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := entries[name]; !ok {
		return nil
	}
	delete(entries, name)
	return s.save(entries)
}

// MemoryStore is an in-process Store used by tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]entry{}, now: time.Now}
}

// Get implements Store.
func (s *MemoryStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok || s.now().After(e.ExpiresAt) {
		return "", false
	}
	return e.Value, true
}

// Set implements Store.
func (s *MemoryStore) Set(name, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = entry{Value: value, ExpiresAt: s.now().Add(ttl)}
	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, name)
	return nil
}
