package ports

import (
	"context"

	"github.com/aretw0/viben/pkg/domain"
)

// RecordQuery filters a record listing.
type RecordQuery struct {
	Offset     string
	PageSize   int
	Tag        string
	Difficulty string
	Search     string
}

// RecordSource is the source-record collaborator.
type RecordSource interface {
	// Get returns the record with the given id.
	// Returns an error matching domain.ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (*domain.SourceRecord, error)

	// List returns one page of records matching the query.
	List(ctx context.Context, query RecordQuery) (*domain.RecordPage, error)
}
