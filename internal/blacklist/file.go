// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package blacklist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/metrics"
)

// FileSet is a line-delimited blacklist file.
type FileSet struct {
	path string

	// mu serializes Add within the process; flock covers other processes.
	mu sync.Mutex
}

// NewFileSet returns a FileSet for path. The file is created on first Add.
func NewFileSet(path string) (*FileSet, error) {
	if path == "" {
		return nil, errors.New("blacklist path is required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create blacklist directory %s: %w", dir, err)
		}
	}
	return &FileSet{path: path}, nil
}

// Path returns the blacklist file path.
func (s *FileSet) Path() string {
	return s.path
}

// Backend implements Set.
func (s *FileSet) Backend() string {
	return BackendFile
}

// List reads the whole file. A missing file is an empty blacklist.
func (s *FileSet) List(_ context.Context) ([]string, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open blacklist: %w", err)
	}
	defer f.Close()

	if err := lockShared(f); err != nil {
		return nil, fmt.Errorf("lock blacklist: %w", err)
	}
	defer unlock(f)

	return readIDs(f)
}

// Contains implements Set.
func (s *FileSet) Contains(ctx context.Context, id string) (bool, error) {
	id, err := normalizeID(id)
	if err != nil {
		return false, err
	}
	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range ids {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

// Add appends id unless it is already listed. The read and the append happen
// under an exclusive lock on the file.
func (s *FileSet) Add(_ context.Context, id string) (added bool, err error) {
	defer func() { metrics.RecordBlacklistAdd(BackendFile, added, err) }()

	id, err = normalizeID(id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return false, fmt.Errorf("open blacklist: %w", err)
	}
	defer f.Close()

	if err = lockExclusive(f); err != nil {
		return false, fmt.Errorf("lock blacklist: %w", err)
	}
	defer unlock(f)

	content, err := io.ReadAll(f)
	if err != nil {
		return false, fmt.Errorf("read blacklist: %w", err)
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == id {
			logging.Debug().Str("media_id", id).Msg("Media already blacklisted")
			return false, nil
		}
	}

	entry := id + "\n"
	if len(content) > 0 && content[len(content)-1] != '\n' {
		entry = "\n" + entry
	}
	if _, err = f.Seek(0, io.SeekEnd); err != nil {
		return false, fmt.Errorf("seek blacklist: %w", err)
	}
	if _, err = f.WriteString(entry); err != nil {
		return false, fmt.Errorf("append blacklist: %w", err)
	}
	if err = f.Sync(); err != nil {
		return false, fmt.Errorf("sync blacklist: %w", err)
	}
	return true, nil
}

// Close implements Set. FileSet holds no open handles.
func (s *FileSet) Close() error {
	return nil
}

// readIDs returns the trimmed, non-empty, distinct lines of r in order.
func readIDs(r io.Reader) ([]string, error) {
	ids := []string{}
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read blacklist: %w", err)
	}
	return ids, nil
}
