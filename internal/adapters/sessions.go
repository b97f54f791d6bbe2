package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/ports"
)

// DefaultSessionDir is used when NewSessionStore receives an empty path.
var DefaultSessionDir = filepath.Join(".viben", "sessions")

// SavedSession is a named playback snapshot for one tutorial.
type SavedSession struct {
	Name       string         `json:"name"`
	TutorialID string         `json:"tutorialId"`
	State      playback.State `json:"state"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// SessionStore keeps playback snapshots as JSON files so the terminal
// player can resume where a learner stopped.
type SessionStore struct {
	BasePath string
	now      func() time.Time
}

// NewSessionStore creates a SessionStore rooted at basePath.
func NewSessionStore(basePath string) *SessionStore {
	if basePath == "" {
		basePath = DefaultSessionDir
	}
	return &SessionStore{BasePath: basePath, now: time.Now}
}

func (s *SessionStore) path(name string) (string, error) {
	key, err := ports.SanitizeID(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.BasePath, key+".json"), nil
}

// Save writes the snapshot. Pending advances are dropped since their timers
// do not survive the process.
func (s *SessionStore) Save(ctx context.Context, name, tutorialID string, st playback.State) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	st.Pending = nil

	data, err := json.MarshalIndent(SavedSession{
		Name:       name,
		TutorialID: tutorialID,
		State:      st,
		UpdatedAt:  s.now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	return os.Rename(tmp.Name(), p)
}

// Load reads a snapshot by name.
func (s *SessionStore) Load(ctx context.Context, name string) (*SavedSession, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NotFoundError("session", name)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var saved SavedSession
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &saved, nil
}

// Delete removes a snapshot. Missing snapshots are not an error.
func (s *SessionStore) Delete(ctx context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns the saved session names in lexical order.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)
	return names, nil
}
