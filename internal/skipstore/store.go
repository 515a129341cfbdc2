// Package skipstore persists the set of meeting IDs a user has dismissed.
// It implements the window.SkipChecker capability.
package skipstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// fileFormat is the on-disk JSON shape.
type fileFormat struct {
	Skipped []string `json:"skipped"`
}

// Store is a file-backed skip set. All methods are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	ids  map[string]struct{}
}

// Load reads the skip file at path. A missing file yields an empty store;
// the file is created on the first Add.
func Load(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("skip file path is empty")
	}
	s := &Store{path: path, ids: make(map[string]struct{})}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, err
	}
	for _, id := range ff.Skipped {
		s.ids[id] = struct{}{}
	}
	return s, nil
}

// IsSkipped reports whether meetingID has been dismissed.
func (s *Store) IsSkipped(meetingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[meetingID]
	return ok, nil
}

// Add records meetingID as dismissed and persists the set.
func (s *Store) Add(meetingID string) error {
	if meetingID == "" {
		return errors.New("meeting id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[meetingID]; ok {
		return nil
	}
	s.ids[meetingID] = struct{}{}
	return s.save()
}

// Remove un-dismisses meetingID and persists the set.
func (s *Store) Remove(meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[meetingID]; !ok {
		return nil
	}
	delete(s.ids, meetingID)
	return s.save()
}

// List returns the dismissed IDs, sorted.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// save writes atomically via a temp file plus rename, 0600. Caller holds mu.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data, err := json.MarshalIndent(fileFormat{Skipped: ids}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".skips-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
