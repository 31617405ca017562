// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
)

// DefaultFileName is the snapshot file name used beneath the cache directory.
const DefaultFileName = "cache.json"

// Dir resolves the base cache directory.
// Precedence:
//  1. VHSEC_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/vhsec
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("VHSEC_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "vhsec"), true
	}
	return "", false
}

// DefaultPath returns the snapshot path beneath Dir, or "" when no directory
// can be resolved.
func DefaultPath() string {
	base, ok := Dir()
	if !ok {
		return ""
	}
	return filepath.Join(base, DefaultFileName)
}

// Enabled returns true unless VHSEC_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("VHSEC_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// FileStore keeps the snapshot as a single JSON object in a file. The file is
// read whole and overwritten whole; there is no locking between processes.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the snapshot. A missing file is an empty snapshot, not an error.
func (s *FileStore) Load(_ context.Context) (Snapshot, error) {
	if s.Path == "" {
		return nil, errors.New("cache file path is empty")
	}

	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("no cache file at %s", s.Path)
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return Snapshot{}, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse cache file %s: %w", s.Path, err)
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

// Save overwrites the file with snap, creating parent directories as needed.
func (s *FileStore) Save(_ context.Context, snap Snapshot) error {
	if s.Path == "" {
		return errors.New("cache file path is empty")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// FileInfo describes the snapshot file on disk.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	Exists  bool
}

// Stat reports on the snapshot file. A missing file is not an error.
func (s *FileStore) Stat() (FileInfo, error) {
	info := FileInfo{Path: s.Path}
	fi, err := os.Stat(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("failed to stat cache file: %w", err)
	}
	info.Size = fi.Size()
	info.ModTime = fi.ModTime()
	info.Exists = true
	return info, nil
}

// String implements fmt.Stringer.
func (s *FileStore) String() string {
	return "file:" + s.Path
}
