package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/viben/internal/logging"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
)

// DefaultDir is used when New receives an empty directory.
const DefaultDir = "tutorials"

// Store implements ports.TutorialStore using the local filesystem.
// Each tutorial is an indented JSON file named after its sanitized id.
// A file's modification time is its createdAt in listings.
type Store struct {
	BasePath string
	logger   *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger reports skipped files and write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a new Store rooted at basePath.
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	s := &Store{BasePath: basePath, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(key string) string {
	return filepath.Join(s.BasePath, key+".json")
}

// Save persists the tutorial atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, t *domain.Tutorial) error {
	key, err := ports.SanitizeID(t.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return &domain.StorageError{Op: "save", ID: key, Err: fmt.Errorf("marshal: %w", err)}
	}

	if err := s.writeAtomic(key, data); err != nil {
		s.logger.Error("Failed to write tutorial", "tutorial_id", key, "err", err)
		return &domain.StorageError{Op: "save", ID: key, Err: err}
	}
	return nil
}

func (s *Store) writeAtomic(key string, data []byte) error {
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}

	// same directory keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(key)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load retrieves a tutorial from its JSON file.
func (s *Store) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return nil, err
	}
	t, _, err := s.read(key)
	return t, err
}

func (s *Store) read(key string) (*domain.Tutorial, time.Time, error) {
	path := s.path(key)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, domain.NotFoundError("tutorial", key)
		}
		return nil, time.Time{}, &domain.StorageError{Op: "load", ID: key, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, domain.NotFoundError("tutorial", key)
		}
		return nil, time.Time{}, &domain.StorageError{Op: "load", ID: key, Err: err}
	}

	var t domain.Tutorial
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, time.Time{}, &domain.StorageError{Op: "load", ID: key, Err: fmt.Errorf("corrupt file: %w", err)}
	}
	return &t, info.ModTime(), nil
}

type stored struct {
	tutorial *domain.Tutorial
	modTime  time.Time
	key      string
}

// scan loads every readable tutorial, newest first. Unreadable files are skipped.
func (s *Store) scan(ctx context.Context) ([]stored, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.StorageError{Op: "list", Err: err}
	}

	var out []stored
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		t, modTime, err := s.read(key)
		if err != nil {
			s.logger.Warn("Skipping unreadable tutorial file", "file", name, "err", err)
			continue
		}
		out = append(out, stored{tutorial: t, modTime: modTime, key: key})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].modTime.Equal(out[j].modTime) {
			return out[i].key < out[j].key
		}
		return out[i].modTime.After(out[j].modTime)
	})
	return out, nil
}

// List returns summaries of every readable tutorial, newest first.
func (s *Store) List(ctx context.Context) ([]domain.TutorialSummary, error) {
	all, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TutorialSummary, 0, len(all))
	for _, st := range all {
		out = append(out, st.tutorial.Summarize(st.modTime))
	}
	return out, nil
}

// FindBySourceRecordID returns the newest tutorial generated from recordID.
func (s *Store) FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error) {
	if recordID != "" {
		all, err := s.scan(ctx)
		if err != nil {
			return nil, err
		}
		for _, st := range all {
			if st.tutorial.Source.AirtableRecordID == recordID {
				return st.tutorial, nil
			}
		}
	}
	return nil, domain.NotFoundError("tutorial for record", recordID)
}

// Delete removes the tutorial file.
func (s *Store) Delete(ctx context.Context, id string) error {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.StorageError{Op: "delete", ID: key, Err: err}
	}
	return nil
}
