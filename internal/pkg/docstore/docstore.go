// Package docstore defines the collection-oriented document store that every
// repository in the service is built on, together with the helpers shared by
// its implementations (memory, postgres and sqlite).
package docstore

import (
	"context"
	"fmt"
	"regexp"
)

// FieldID is the document key holding the document id. Stores always write it.
const FieldID = "id"

// Operator is a filter comparison.
type Operator string

const (
	OpEqual Operator = "=="
	OpIn    Operator = "in"
)

// Filter restricts a query to documents whose top-level Field satisfies Op.
// For OpIn, Value is a []any of accepted values.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Eq matches documents where field equals value.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// In matches documents where field equals any of values.
func In(field string, values ...any) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

// OrderBy sorts query results on a top-level field.
type OrderBy struct {
	Field string
	Desc  bool
}

// Query describes a filtered, ordered read of one collection.
type Query struct {
	Filters []Filter
	OrderBy []OrderBy
	Limit   int
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate rejects field names that are not plain identifiers. SQL backends
// interpolate field names into JSON paths, so this check is mandatory.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if !fieldNamePattern.MatchString(f.Field) {
			return fmt.Errorf("%w: %q", ErrInvalidField, f.Field)
		}
		switch f.Op {
		case OpEqual:
		case OpIn:
			if _, ok := f.Value.([]any); !ok {
				return fmt.Errorf("%w: %q expects a list value", ErrInvalidField, f.Field)
			}
		default:
			return fmt.Errorf("%w: unsupported operator %q", ErrInvalidField, f.Op)
		}
	}
	for _, o := range q.OrderBy {
		if !fieldNamePattern.MatchString(o.Field) {
			return fmt.Errorf("%w: %q", ErrInvalidField, o.Field)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidField)
	}
	return nil
}

// Unsubscribe stops a subscription. Calling it more than once is safe.
type Unsubscribe func()

// Store is the persistent document-collection interface the repositories
// depend on.
type Store interface {
	// Get returns the document or an error wrapping ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create inserts a document whose id is not yet taken, or fails with an
	// error wrapping ErrAlreadyExists. Of several concurrent creators of one
	// id exactly one succeeds.
	Create(ctx context.Context, collection, id string, doc Document) error
	// Put creates or replaces a document.
	Put(ctx context.Context, collection, id string, doc Document) error
	// Update merges fields into an existing document's top level.
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Subscribe delivers the full query result to fn immediately and again
	// after every committed mutation touching a matching document.
	Subscribe(ctx context.Context, collection string, q Query, fn func([]Document)) (Unsubscribe, error)

	// RunInTransaction runs fn atomically. Store calls made with the context
	// passed to fn join the transaction; nested calls reuse it.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	Close() error
}
