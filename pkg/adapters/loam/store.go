package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/viben/internal/logging"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
)

// DefaultDir is used when New receives an empty directory.
const DefaultDir = "tutorials"

// TutorialMetadata is the document header of a stored tutorial.
// The tutorial JSON itself is the document content.
type TutorialMetadata struct {
	ID             string `json:"id" mapstructure:"id"`
	SourceRecordID string `json:"source_record_id" mapstructure:"source_record_id"`
	// SavedAt is in Unix microseconds.
	SavedAt int64 `json:"saved_at" mapstructure:"saved_at"`
}

// Store implements ports.TutorialStore over a Loam repository.
// Each tutorial is one document keyed by its sanitized id.
type Store struct {
	Dir    string
	repo   *loam.TypedRepository[TutorialMetadata]
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger reports skipped documents.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New initializes an unversioned Loam repository rooted at dir.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		dir = DefaultDir
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	repo, err := loam.Init(absPath, loam.WithVersioning(false), loam.WithForceTemp(false))
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repository: %w", err)
	}

	s := &Store{
		Dir:    absPath,
		repo:   loam.NewTypedRepository[TutorialMetadata](repo),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save writes the tutorial document, stamping it with the save time.
func (s *Store) Save(ctx context.Context, t *domain.Tutorial) error {
	key, err := ports.SanitizeID(t.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return &domain.StorageError{Op: "save", ID: key, Err: fmt.Errorf("marshal: %w", err)}
	}

	err = s.repo.Save(ctx, &loam.DocumentModel[TutorialMetadata]{
		ID:      key,
		Content: string(data),
		Data: TutorialMetadata{
			ID:             key,
			SourceRecordID: t.Source.AirtableRecordID,
			SavedAt:        time.Now().UnixMicro(),
		},
	})
	if err != nil {
		return &domain.StorageError{Op: "save", ID: key, Err: err}
	}
	return nil
}

// Load retrieves a tutorial document.
func (s *Store) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return nil, err
	}
	t, _, err := s.read(ctx, key)
	return t, err
}

func (s *Store) read(ctx context.Context, key string) (*domain.Tutorial, TutorialMetadata, error) {
	if len(s.files(key)) == 0 {
		return nil, TutorialMetadata{}, domain.NotFoundError("tutorial", key)
	}
	doc, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, TutorialMetadata{}, &domain.StorageError{Op: "load", ID: key, Err: err}
	}
	t, err := decode(key, doc.Content)
	if err != nil {
		return nil, TutorialMetadata{}, err
	}
	return t, doc.Data, nil
}

func decode(key, content string) (*domain.Tutorial, error) {
	var t domain.Tutorial
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &t); err != nil {
		return nil, &domain.StorageError{Op: "load", ID: key, Err: fmt.Errorf("corrupt document: %w", err)}
	}
	return &t, nil
}

// files returns the on-disk documents for key, whatever their extension.
// Sanitized keys carry no glob metacharacters.
func (s *Store) files(key string) []string {
	matches, _ := filepath.Glob(filepath.Join(s.Dir, key+".*"))
	return matches
}

type stored struct {
	tutorial *domain.Tutorial
	meta     TutorialMetadata
	key      string
}

// scan decodes every tutorial document, newest first. Unreadable ones are skipped.
func (s *Store) scan(ctx context.Context) ([]stored, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Err: err}
	}

	out := make([]stored, 0, len(docs))
	for _, doc := range docs {
		key := doc.Data.ID
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(doc.ID), filepath.Ext(doc.ID))
		}
		if len(s.files(key)) == 0 {
			continue
		}
		t, err := decode(key, doc.Content)
		if err != nil {
			s.logger.Warn("Skipping unreadable tutorial document", "document", doc.ID, "err", err)
			continue
		}
		out = append(out, stored{tutorial: t, meta: doc.Data, key: key})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].meta.SavedAt == out[j].meta.SavedAt {
			return out[i].key < out[j].key
		}
		return out[i].meta.SavedAt > out[j].meta.SavedAt
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
		out = append(out, st.tutorial.Summarize(time.UnixMicro(st.meta.SavedAt)))
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

// Delete removes the tutorial document from the repository directory.
func (s *Store) Delete(ctx context.Context, id string) error {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return err
	}
	for _, path := range s.files(key) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &domain.StorageError{Op: "delete", ID: key, Err: err}
		}
	}
	return nil
}
