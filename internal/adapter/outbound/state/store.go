package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/alexwatever/wept/internal/port/outbound"
)

// FileKVStore is an outbound.KVStore backed by a single JSON file.
// Reads take a shared lock and always see the latest file contents, so two
// processes sharing the file observe each other's writes.
type FileKVStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileKVStore creates a store for the given file path. The parent
// directory is created on first write.
func NewFileKVStore(path string, logger *slog.Logger) *FileKVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileKVStore{
		path:   path,
		logger: logger,
	}
}

// Get returns the value stored under key.
func (s *FileKVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(flockShared)
	if err != nil {
		return "", false, err
	}
	defer unlock()

	file, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := file.Entries[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *FileKVStore) Set(_ context.Context, key, value string) error {
	return s.update(func(f *StoreFile) bool {
		if cur, ok := f.Entries[key]; ok && cur == value {
			return false
		}
		f.Entries[key] = value
		return true
	})
}

// Delete removes key.
func (s *FileKVStore) Delete(_ context.Context, key string) error {
	return s.update(func(f *StoreFile) bool {
		if _, ok := f.Entries[key]; !ok {
			return false
		}
		delete(f.Entries, key)
		return true
	})
}

// Close implements outbound.KVStore. The file store holds no open handles.
func (s *FileKVStore) Close() error { return nil }

// Path returns the configured file path.
func (s *FileKVStore) Path() string {
	return s.path
}

// Exists returns true if the store file exists on disk.
func (s *FileKVStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// update applies fn to the current file contents and writes the result.
//
// The write sequence is:
//  1. Acquire in-process mutex
//  2. Acquire exclusive flock on path+".lock"
//  3. Load the current file (or a fresh one)
//  4. Apply fn; stop if it reports no change
//  5. Copy current file to path+".bak"
//  6. Write to path+".tmp", fsync, rename over path
func (s *FileKVStore) update(fn func(*StoreFile) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	unlock, err := s.lock(flockLock)
	if err != nil {
		return err
	}
	defer unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	if !fn(file) {
		return nil
	}
	file.UpdatedAt = time.Now().UTC()

	if currentData, readErr := os.ReadFile(s.path); readErr == nil {
		bakPath := s.path + ".bak"
		if writeErr := os.WriteFile(bakPath, currentData, 0600); writeErr != nil {
			s.logger.Warn("failed to create backup", "error", writeErr)
		}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on store file", "error", err)
	}

	s.logger.Debug("store saved", "path", s.path, "entries", len(file.Entries))
	return nil
}

// lock opens the lock file and acquires it with acquire. The returned
// function releases the lock and closes the file.
func (s *FileKVStore) lock(acquire func(uintptr) error) (func(), error) {
	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Directory missing: nothing has been written yet.
			return func() {}, nil
		}
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := acquire(lockFile.Fd()); err != nil {
		_ = lockFile.Close()
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}
	return func() {
		_ = flockUnlock(lockFile.Fd())
		_ = lockFile.Close()
	}, nil
}

// load reads the store file. A missing file yields an empty store.
func (s *FileKVStore) load() (*StoreFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return newStoreFile(), nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				s.logger.Warn("store file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var file StoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	if file.Entries == nil {
		file.Entries = map[string]string{}
	}
	return &file, nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *FileKVStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to store: %w", err)
	}
	return nil
}

var _ outbound.KVStore = (*FileKVStore)(nil)
