package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "viben:tutorial:"

// Store implements ports.TutorialStore using Redis.
//
// Layout under the prefix:
//   - <prefix><id>: the tutorial JSON
//   - <prefix>@index: ZSET of ids scored by save time (microseconds)
//   - <prefix>@source:<record id>: ZSET of tutorial ids generated from that
//     record, scored by save time
//
// Sanitized ids never contain "@", so the bookkeeping keys cannot collide.
type Store struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored tutorials.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromURL creates a store from a redis:// URL.
func NewFromURL(url string, opts ...Option) (*Store, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so a Locker can share it.
func (s *Store) Client() backend.UniversalClient {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "@index"
}

func (s *Store) sourceKey(recordID string) string {
	return s.prefix + "@source:" + recordID
}

// Save persists the tutorial JSON, refreshes its index score and adds it to
// its source record's set.
func (s *Store) Save(ctx context.Context, t *domain.Tutorial) error {
	id, err := ports.SanitizeID(t.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return &domain.StorageError{Op: "save", ID: id, Err: fmt.Errorf("marshal: %w", err)}
	}

	// an update may move the tutorial to another record
	previous, _ := s.Load(ctx, id)
	rec := t.Source.AirtableRecordID
	score := float64(time.Now().UnixMicro())

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(id), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: id})
	if previous != nil && previous.Source.AirtableRecordID != "" && previous.Source.AirtableRecordID != rec {
		pipe.ZRem(ctx, s.sourceKey(previous.Source.AirtableRecordID), id)
	}
	if rec != "" {
		pipe.ZAdd(ctx, s.sourceKey(rec), backend.Z{Score: score, Member: id})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return &domain.StorageError{Op: "save", ID: id, Err: err}
	}
	return nil
}

// Load retrieves a tutorial.
func (s *Store) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return nil, err
	}
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.NotFoundError("tutorial", key)
		}
		return nil, &domain.StorageError{Op: "load", ID: key, Err: err}
	}
	return decode(key, val)
}

func decode(id, val string) (*domain.Tutorial, error) {
	var t domain.Tutorial
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return nil, &domain.StorageError{Op: "load", ID: id, Err: fmt.Errorf("corrupt value: %w", err)}
	}
	return &t, nil
}

// List returns summaries newest first.
// Index entries whose value has expired are pruned lazily.
func (s *Store) List(ctx context.Context) ([]domain.TutorialSummary, error) {
	members, err := s.client.ZRevRangeWithScores(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Err: err}
	}
	if len(members) == 0 {
		return []domain.TutorialSummary{}, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = s.key(m.Member.(string))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Err: err}
	}

	out := make([]domain.TutorialSummary, 0, len(members))
	var stale []any
	for i, m := range members {
		id := m.Member.(string)
		raw, ok := values[i].(string)
		if !ok {
			stale = append(stale, id)
			continue
		}
		t, err := decode(id, raw)
		if err != nil {
			continue
		}
		out = append(out, t.Summarize(time.UnixMicro(int64(m.Score))))
	}

	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, &domain.StorageError{Op: "list", Err: fmt.Errorf("prune expired: %w", err)}
		}
	}
	return out, nil
}

// FindBySourceRecordID returns the newest surviving tutorial generated from
// the record. Stale set members are pruned on the way.
func (s *Store) FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error) {
	if recordID == "" {
		return nil, domain.NotFoundError("tutorial for record", recordID)
	}
	ids, err := s.client.ZRevRange(ctx, s.sourceKey(recordID), 0, -1).Result()
	if err != nil {
		return nil, &domain.StorageError{Op: "find", ID: recordID, Err: err}
	}

	var stale []any
	defer func() {
		if len(stale) > 0 {
			_ = s.client.ZRem(ctx, s.sourceKey(recordID), stale...).Err()
		}
	}()
	for _, id := range ids {
		t, err := s.Load(ctx, id)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && t.Source.AirtableRecordID != recordID) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, domain.NotFoundError("tutorial for record", recordID)
}

// Delete removes the tutorial, its index entry and its record set membership.
func (s *Store) Delete(ctx context.Context, id string) error {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return err
	}

	// a corrupt value is still deleted; its set membership is pruned by Find
	existing, _ := s.Load(ctx, key)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)
	if existing != nil && existing.Source.AirtableRecordID != "" {
		pipe.ZRem(ctx, s.sourceKey(existing.Source.AirtableRecordID), key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return &domain.StorageError{Op: "delete", ID: key, Err: err}
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
