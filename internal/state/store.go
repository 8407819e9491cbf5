// Package state persists the monitor's run status so other commands can
// inspect a live daemon.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoRun is returned by Load when no run file exists on disk.
var ErrNoRun = errors.New("no monitor run recorded")

// Store persists a Run to disk.
type Store interface {
	Save(r *Run) error
	Load() (*Run, error) // returns ErrNoRun if none exists
	Delete() error
}

// diskStore is the concrete Store that writes to the XDG data directory.
type diskStore struct {
	path string // full path to run.json
}

// NewStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/autocommit/run.json or ~/.local/share/autocommit/run.json
func NewStore() (Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "run.json")}, nil
}

// dataDir returns the autocommit-specific XDG data directory.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "autocommit"), nil
}

// Save marshals r to JSON and writes it atomically via a temp file + os.Rename.
func (d *diskStore) Save(r *Run) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding run status: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(d.path), "run-*.json.tmp")
	if err != nil {
		return fmt.Errorf("writing run status: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing run status: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing run status: %w", err)
	}

	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("replacing run status: %w", err)
	}
	return nil
}

// Load reads and unmarshals the run file.
// Returns ErrNoRun if the file does not exist.
func (d *diskStore) Load() (*Run, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoRun
		}
		return nil, fmt.Errorf("reading run status: %w", err)
	}

	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding run status: %w", err)
	}
	return &r, nil
}

// Delete removes the run file from disk.
func (d *diskStore) Delete() error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing run status: %w", err)
	}
	return nil
}
