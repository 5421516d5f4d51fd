package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fedipage/fedipage/internal/clock"
)

const (
	entryFileExtension = ".json"
	bytesPerMB         = 1024 * 1024
)

// Common store errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// Stats summarizes the store contents.
type Stats struct {
	Directory  string
	Entries    int
	Expired    int
	SizeBytes  int64
	TTLSeconds int
	MaxSizeMB  int
}

// FileStore keeps entries as JSON files in one directory. It is safe for
// concurrent use within a process.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int
	maxSizeMB  int
	clock      clock.TimeSource

	mu sync.RWMutex
}

// StoreOption configures a FileStore.
type StoreOption func(*FileStore)

// WithTimeSource sets the clock used for entry timestamps and expiry.
func WithTimeSource(ts clock.TimeSource) StoreOption {
	return func(s *FileStore) { s.clock = ts }
}

// NewFileStore creates a store in directory, creating it if needed. A
// disabled store accepts no operations. maxSizeMB of 0 means unlimited.
func NewFileStore(directory string, enabled bool, ttlSeconds, maxSizeMB int, opts ...StoreOption) (*FileStore, error) {
	s := &FileStore{
		directory:  directory,
		enabled:    enabled,
		ttlSeconds: ttlSeconds,
		maxSizeMB:  maxSizeMB,
		clock:      clock.NewRealTimeSource(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !enabled {
		return s, nil
	}

	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return s, nil
}

// IsEnabled reports whether the store is active.
func (s *FileStore) IsEnabled() bool {
	return s.enabled
}

// Directory returns the store directory.
func (s *FileStore) Directory() string {
	return s.directory
}

// Get returns a live entry. Expired entries are removed and reported as
// ErrCacheExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	entry, err := s.Peek(key)
	if err != nil {
		return nil, err
	}
	if entry.IsExpiredAt(s.clock.Now()) {
		_ = s.Delete(key)
		return nil, ErrCacheExpired
	}
	return entry, nil
}

// Peek returns an entry whether or not it has expired.
func (s *FileStore) Peek(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.keyToFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

// Set stores data under key with the store's TTL, replacing any previous
// entry. Writes are atomic.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	entry := NewEntry(key, data, s.ttlSeconds, s.clock.Now())
	entryData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.keyToFilePath(key)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, entryData, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

// SetJSON marshals v and stores it under key.
func (s *FileStore) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.Set(key, data)
}

// Delete removes an entry. Missing entries are not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.keyToFilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.listLocked()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if err := os.Remove(f.path); err != nil {
			return removed, fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(f.path), err)
		}
		removed++
	}
	return removed, nil
}

// CleanupExpired removes expired and unreadable entries and returns how many
// were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.listLocked()
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	removed := 0
	for _, f := range files {
		if f.entry == nil || f.entry.IsExpiredAt(now) {
			if os.Remove(f.path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// EnforceMaxSize removes the oldest entries until the store fits in
// maxSizeMB and returns how many were removed.
func (s *FileStore) EnforceMaxSize() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}
	if s.maxSizeMB <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.listLocked()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, f := range files {
		total += f.size
	}
	limit := int64(s.maxSizeMB) * bytesPerMB

	sort.Slice(files, func(i, j int) bool { return files[i].created().Before(files[j].created()) })
	removed := 0
	for _, f := range files {
		if total <= limit {
			break
		}
		if os.Remove(f.path) == nil {
			total -= f.size
			removed++
		}
	}
	return removed, nil
}

// Prune runs CleanupExpired followed by EnforceMaxSize.
func (s *FileStore) Prune() (int, error) {
	expired, err := s.CleanupExpired()
	if err != nil {
		return expired, err
	}
	evicted, err := s.EnforceMaxSize()
	return expired + evicted, err
}

// Stats reports entry counts and total size.
func (s *FileStore) Stats() (Stats, error) {
	if !s.enabled {
		return Stats{}, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.listLocked()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Directory:  s.directory,
		Entries:    len(files),
		TTLSeconds: s.ttlSeconds,
		MaxSizeMB:  s.maxSizeMB,
	}
	now := s.clock.Now()
	for _, f := range files {
		st.SizeBytes += f.size
		if f.entry == nil || f.entry.IsExpiredAt(now) {
			st.Expired++
		}
	}
	return st, nil
}

// Count returns the number of entries, including expired ones.
func (s *FileStore) Count() (int, error) {
	st, err := s.Stats()
	return st.Entries, err
}

// Size returns the total size of the entries in bytes.
func (s *FileStore) Size() (int64, error) {
	st, err := s.Stats()
	return st.SizeBytes, err
}

type storedFile struct {
	path  string
	size  int64
	entry *Entry
}

// created orders unreadable files first for eviction.
func (f storedFile) created() time.Time {
	if f.entry == nil {
		return time.Time{}
	}
	return f.entry.CreatedAt
}

// listLocked reads every entry file. Unparseable files get a nil entry.
// Callers must hold s.mu.
func (s *FileStore) listLocked() ([]storedFile, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var files []storedFile
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryFileExtension {
			continue
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			continue
		}
		f := storedFile{path: filepath.Join(s.directory, de.Name()), size: info.Size()}
		if data, readErr := os.ReadFile(f.path); readErr == nil {
			var entry Entry
			if json.Unmarshal(data, &entry) == nil {
				f.entry = &entry
			}
		}
		files = append(files, f)
	}
	return files, nil
}

// keyToFilePath converts a key to a filesystem-safe path.
func (s *FileStore) keyToFilePath(key string) string {
	safeKey := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.directory, safeKey+entryFileExtension)
}
