// Package store provides the key-value persistence layer backing the vault.
// Values are opaque strings; callers encrypt anything sensitive before it
// gets here.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/keywarden/keywarden/internal/fileutil"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

const (
	// storeFilePermissions is the permission mode for the store file.
	storeFilePermissions = 0o600

	// storeDirPermissions is the permission mode for the store directory.
	storeDirPermissions = 0o750
)

// ErrCorruptStore indicates the store file is malformed JSON. Unlike a
// cache, the store is durable data, so corruption is surfaced rather than
// silently discarded.
var ErrCorruptStore = wardenerr.WithSuggestion(wardenerr.ErrStorageFailure,
	"the data file is not valid JSON; restore it from a backup")

// KV is the storage interface the vault persists through.
type KV interface {
	// Get retrieves a value. The second return reports presence.
	Get(key string) (string, bool, error)

	// Set stores a value, overwriting any previous one.
	Set(key, value string) error

	// Remove deletes a key. Removing an absent key is not an error.
	Remove(key string) error

	// Keys returns all stored keys in sorted order.
	Keys() ([]string, error)
}

// Compile-time interface check
var _ KV = (*FileStore)(nil)

// FileStore implements KV as a JSON map in a single file. Every mutation
// rewrites the file atomically, so the file never holds a partial update.
// Safe for concurrent use within one process.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a file-backed store at the given path. The file is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get retrieves a value.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}

	value, ok := entries[key]
	return value, ok, nil
}

// Set stores a value, overwriting any previous one.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	entries[key] = value
	return s.persist(entries)
}

// Remove deletes a key. Removing an absent key is not an error.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := entries[key]; !ok {
		return nil
	}

	delete(entries, key)
	return s.persist(entries)
}

// Keys returns all stored keys in sorted order.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}

// Path returns the store file path.
func (s *FileStore) Path() string {
	return s.path
}

// load reads the store file. A missing file yields an empty map.
//
//nolint:funcorder // Keeping helper methods together
func (s *FileStore) load() (map[string]string, error) {
	// #nosec G304 -- store path is internally constructed
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptStore, err.Error())
	}

	if entries == nil {
		entries = make(map[string]string)
	}

	return entries, nil
}

// persist writes the full map atomically.
//
//nolint:funcorder // Keeping helper methods together
func (s *FileStore) persist(entries map[string]string) error {
	if err := fileutil.EnsureDir(filepath.Dir(s.path), storeDirPermissions); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}

	if err := fileutil.WriteAtomic(s.path, data, storeFilePermissions); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}

	return nil
}
