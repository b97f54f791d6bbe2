package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// tutorialRow keeps the listing columns next to the full JSON payload.
type tutorialRow struct {
	ID             string `gorm:"primaryKey;size:128"`
	SourceRecordID string `gorm:"index;size:128"`
	Title          string
	Tool           string `gorm:"size:128"`
	Difficulty     string `gorm:"size:32"`
	CardCount      int
	Payload        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index"`
}

func (tutorialRow) TableName() string {
	return "tutorials"
}

// Store implements ports.TutorialStore on top of GORM.
// Listings are ordered by the last save time, which is also reported as createdAt.
type Store struct {
	db *gorm.DB
}

// Open connects with the named driver ("sqlite" or "postgres") and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return New(db)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&tutorialRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tutorials table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the tutorial row.
func (s *Store) Save(ctx context.Context, t *domain.Tutorial) error {
	id, err := ports.SanitizeID(t.ID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return &domain.StorageError{Op: "save", ID: id, Err: fmt.Errorf("marshal: %w", err)}
	}

	now := time.Now()
	row := tutorialRow{
		ID:             id,
		SourceRecordID: t.Source.AirtableRecordID,
		Title:          t.Title,
		Tool:           t.Tool,
		Difficulty:     string(t.Difficulty),
		CardCount:      len(t.Cards),
		Payload:        string(payload),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"source_record_id", "title", "tool", "difficulty", "card_count", "payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return &domain.StorageError{Op: "save", ID: id, Err: err}
	}
	return nil
}

// Load retrieves a tutorial by id.
func (s *Store) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return nil, err
	}
	var row tutorialRow
	err = s.db.WithContext(ctx).Where("id = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError("tutorial", key)
		}
		return nil, &domain.StorageError{Op: "load", ID: key, Err: err}
	}
	return row.decode()
}

func (r *tutorialRow) decode() (*domain.Tutorial, error) {
	var t domain.Tutorial
	if err := json.Unmarshal([]byte(r.Payload), &t); err != nil {
		return nil, &domain.StorageError{Op: "load", ID: r.ID, Err: fmt.Errorf("corrupt payload: %w", err)}
	}
	return &t, nil
}

// List returns summaries from the listing columns, newest first.
func (s *Store) List(ctx context.Context) ([]domain.TutorialSummary, error) {
	var rows []tutorialRow
	err := s.db.WithContext(ctx).
		Select("id", "title", "tool", "difficulty", "card_count", "updated_at").
		Order("updated_at DESC").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Err: err}
	}

	out := make([]domain.TutorialSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.TutorialSummary{
			ID:         r.ID,
			Title:      r.Title,
			Tool:       r.Tool,
			Difficulty: domain.Difficulty(r.Difficulty),
			CardCount:  r.CardCount,
			CreatedAt:  r.UpdatedAt,
		})
	}
	return out, nil
}

// FindBySourceRecordID returns the most recently saved tutorial for recordID.
func (s *Store) FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error) {
	if recordID == "" {
		return nil, domain.NotFoundError("tutorial for record", recordID)
	}
	var row tutorialRow
	err := s.db.WithContext(ctx).
		Where("source_record_id = ?", recordID).
		Order("updated_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError("tutorial for record", recordID)
		}
		return nil, &domain.StorageError{Op: "find", ID: recordID, Err: err}
	}
	return row.decode()
}

// Delete removes the row.
func (s *Store) Delete(ctx context.Context, id string) error {
	key, err := ports.SanitizeID(id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", key).Delete(&tutorialRow{}).Error; err != nil {
		return &domain.StorageError{Op: "delete", ID: key, Err: err}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
