// Package store persists workflow state documents atomically to disk,
// tolerating crashes and concurrent writers per spec.md §4.3/§5.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	lanes "github.com/lanesdev/lanes"
	"github.com/lanesdev/lanes/workflow"
)

// Store saves and loads a workflow.State document at a fixed path, using
// a write-to-temp-then-rename protocol so readers never observe a
// partial write.
type Store struct {
	path string
}

// New returns a Store bound to the given state file path. path is not
// created or validated until Save/Load is called.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the target state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the state document. It returns (nil, nil) if the
// file does not exist. Parse and permission errors are returned to the
// caller, never swallowed.
func (s *Store) Load() (*workflow.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, lanes.WrapSubjectError(lanes.KindIO, "failed to read state file", s.path, err)
	}

	var state workflow.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, lanes.WrapSubjectError(lanes.KindParse, "failed to parse state file", s.path, err)
	}
	return &state, nil
}

// Save atomically writes state to the target path. It writes to a
// sibling temp file named after the process id, fsyncs it, then renames
// it over the target so the rename is an atomic same-directory replace.
func (s *Store) Save(state *workflow.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return lanes.WrapError(lanes.KindIO, "failed to marshal state", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return lanes.WrapSubjectError(lanes.KindIO, "failed to create state directory", dir, err)
		}
	}

	tempFile := fmt.Sprintf("%s.tmp.%d", s.path, os.Getpid())

	f, err := os.OpenFile(tempFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return lanes.WrapSubjectError(lanes.KindIO, "failed to open temp state file", tempFile, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return lanes.WrapSubjectError(lanes.KindIO, "failed to write temp state file", tempFile, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return lanes.WrapSubjectError(lanes.KindIO, "failed to sync temp state file", tempFile, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return lanes.WrapSubjectError(lanes.KindIO, "failed to close temp state file", tempFile, err)
	}

	if err := os.Rename(tempFile, s.path); err != nil {
		os.Remove(tempFile)
		return lanes.WrapSubjectError(lanes.KindIO, "failed to rename temp state file", tempFile, err)
	}

	return nil
}
