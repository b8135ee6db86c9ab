// Package document implements the domain repositories on top of a
// docstore.Store, one collection per entity kind.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/shopspring/decimal"
)

const (
	CollectionEmployees       = "employees"
	CollectionLeaveTypes      = "leave_types"
	CollectionLeaveRequests   = "leave_requests"
	CollectionLeaveBalances   = "leave_balances"
	CollectionPolicies        = "policies"
	CollectionAcknowledgments = "policy_acknowledgments"
	CollectionMeetings        = "performance_meetings"
	CollectionNotifications   = "notifications"
	CollectionActivityLogs    = "activity_logs"
)

// collection maps one entity type onto a store collection.
type collection[T any] struct {
	store    docstore.Store
	name     string
	encode   func(T) docstore.Document
	decode   func(docstore.Document) T
	notFound error
}

// translate joins store not-found errors with the entity's sentinel.
func (c collection[T]) translate(err error) error {
	if err != nil && errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", c.notFound, err)
	}
	return err
}

func (c collection[T]) get(ctx context.Context, id string) (T, error) {
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		var zero T
		return zero, c.translate(err)
	}
	return c.decode(doc), nil
}

func (c collection[T]) create(ctx context.Context, id string, v T) error {
	return c.store.Create(ctx, c.name, id, c.encode(v))
}

func (c collection[T]) put(ctx context.Context, id string, v T) error {
	return c.store.Put(ctx, c.name, id, c.encode(v))
}

func (c collection[T]) update(ctx context.Context, id string, fields docstore.Document) error {
	return c.translate(c.store.Update(ctx, c.name, id, fields))
}

func (c collection[T]) query(ctx context.Context, q docstore.Query) ([]T, error) {
	docs, err := c.store.Query(ctx, c.name, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		out = append(out, c.decode(doc))
	}
	return out, nil
}

func (c collection[T]) watch(ctx context.Context, q docstore.Query, fn func([]T)) (func(), error) {
	unsub, err := c.store.Subscribe(ctx, c.name, q, func(docs []docstore.Document) {
		out := make([]T, 0, len(docs))
		for _, doc := range docs {
			out = append(out, c.decode(doc))
		}
		fn(out)
	})
	if err != nil {
		return nil, err
	}
	return unsub, nil
}

func encodeDecimal(d decimal.Decimal) string {
	return d.String()
}

func decodeDecimal(doc docstore.Document, key string) decimal.Decimal {
	d, err := decimal.NewFromString(doc.String(key))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
