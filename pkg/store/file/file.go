// Package file stores flow documents as JSON files in a directory.
package file

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/store"
)

// Store keeps one <id>.json file per flow.
type Store struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// New creates a file store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/ivrflow/flows/
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "ivrflow", "flows")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "create flow dir")
	}
	return &Store{baseDir: baseDir, now: time.Now}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Save writes d, assigning an id on first save.
func (s *Store) Save(ctx context.Context, d *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID != "" && !store.ValidID(d.ID) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid flow id %q", d.ID)
	}
	store.Prepare(d, s.now())

	data, err := document.Marshal(d)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "marshal flow")
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(s.baseDir, d.ID+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "create flow file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrCodeInternal, err, "write flow file")
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "write flow file")
	}
	if err := os.Rename(tmp.Name(), s.path(d.ID)); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "write flow file")
	}
	return nil
}

// Load reads the flow with the given id.
func (s *Store) Load(ctx context.Context, id string) (*document.Document, error) {
	if !store.ValidID(id) {
		return nil, store.NotFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.NotFound(id)
		}
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read flow file")
	}
	return document.Unmarshal(data)
}

// List reads every flow file in the directory. Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read flow dir")
	}

	var out []store.Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		d, err := document.Unmarshal(data)
		if err != nil {
			continue
		}
		if d.ID == "" {
			d.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		out = append(out, store.SummaryOf(d))
	}
	slices.SortFunc(out, func(a, b store.Summary) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

// Delete removes the flow file.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !store.ValidID(id) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeInternal, err, "remove flow file")
	}
	return nil
}

// Close implements [store.Store].
func (s *Store) Close() error { return nil }

// Path returns the base directory for flow files.
func (s *Store) Path() string { return s.baseDir }

var _ store.Store = (*Store)(nil)
