// Package storage persists the bearer token and the store slices between
// runs, filling the role browser localStorage plays for the web storefront.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenKey is the well-known key the bearer token lives under.
const TokenKey = "authToken"

// Store is a small file-backed key/value store. One key maps to one file
// inside the state directory; writes go through a temp file and rename.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New opens (creating if needed) a Store rooted at dir.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage: state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SetItem stores a raw string value under key.
func (s *Store) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(key, []byte(value))
}

// GetItem reads the raw string value stored under key. The second return is
// false when the key is absent.
func (s *Store) GetItem(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// RemoveItem deletes the value stored under key. Removing an absent key is
// not an error.
func (s *Store) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}

// SaveJSON marshals value and stores it under key.
func (s *Store) SaveJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: marshal %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(key, data)
}

// LoadJSON reads the value stored under key into out. The return is false
// when the key is absent or unreadable.
func (s *Store) LoadJSON(key string, out any) bool {
	s.mu.Lock()
	data, err := os.ReadFile(s.path(key))
	s.mu.Unlock()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// Token returns the persisted bearer token, satisfying the transport's token
// source.
func (s *Store) Token() (string, bool) {
	value, ok := s.GetItem(TokenKey)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// SetToken persists the bearer token.
func (s *Store) SetToken(token string) error {
	return s.SetItem(TokenKey, token)
}

// ClearToken removes the persisted bearer token.
func (s *Store) ClearToken() error {
	return s.RemoveItem(TokenKey)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".state")
}

func (s *Store) writeFile(key string, data []byte) error {
	final := s.path(key)
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("storage: replace %s: %w", key, err)
	}
	return nil
}
