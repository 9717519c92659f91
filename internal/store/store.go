// Package store is the record store for the catalog: one Collection per
// record kind, backed by MongoDB or by an in-memory map with the same
// semantics.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrDanglingReference is returned by populate when a reference points
	// at a record that does not exist.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrDuplicate is returned when a write would violate a unique field.
	ErrDuplicate = errors.New("duplicate record")
)

// Filter is a field-equality mapping keyed by stored (bson) field name.
// A nil or empty filter matches every record. Matching an array field
// against a scalar tests membership.
type Filter map[string]any

type SortField struct {
	Field string
	Desc  bool
}

type FindOptions struct {
	Sort   []SortField
	Fields []string
}

type FindOption func(*FindOptions)

func Asc(field string) FindOption {
	return func(o *FindOptions) {
		o.Sort = append(o.Sort, SortField{Field: field})
	}
}

func Desc(field string) FindOption {
	return func(o *FindOptions) {
		o.Sort = append(o.Sort, SortField{Field: field, Desc: true})
	}
}

// Select limits the stored fields loaded into each result. The id is always loaded.
func Select(fields ...string) FindOption {
	return func(o *FindOptions) {
		o.Fields = append(o.Fields, fields...)
	}
}

func buildFindOptions(opts []FindOption) FindOptions {
	var o FindOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Collection is the persistence contract for one record kind.
type Collection[T any] interface {
	Find(ctx context.Context, filter Filter, opts ...FindOption) ([]T, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (T, error)
	// FindByIDs returns the records that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Insert(ctx context.Context, rec T) (T, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, rec T) (T, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// Document constrains record types to pointers exposing the shared Base.
type Document[T any] interface {
	*T
	Meta() *models.Base
}
