package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/jackc/pgx/v5"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
)`

// Store keeps every collection in a single JSONB table. Subscriptions are
// driven by writes made through this process.
type Store struct {
	pool     database.Pool
	watchers *docstore.Watchers
}

var _ docstore.Store = (*Store)(nil)

func NewStore(pool database.Pool) *Store {
	return &Store{
		pool:     pool,
		watchers: docstore.NewWatchers(),
	}
}

// Watchers exposes the subscription registry.
func (s *Store) Watchers() *docstore.Watchers {
	return s.watchers
}

// EnsureSchema creates the documents table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return docstore.Wrap("schema", "documents", "", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	q := s.getQuerier(ctx)

	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	if s.txFrom(ctx) != nil {
		query += ` FOR UPDATE`
	}

	var raw []byte
	err := q.QueryRow(ctx, query, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docstore.NotFound(collection, id)
		}
		return nil, docstore.Wrap("get", collection, id, err)
	}
	doc, err := docstore.Unmarshal(raw)
	if err != nil {
		return nil, docstore.Wrap("get", collection, id, err)
	}
	return doc, nil
}

// Create relies on the primary key: a concurrent insert of the same id waits
// for the other transaction and then does nothing.
func (s *Store) Create(ctx context.Context, collection, id string, doc docstore.Document) error {
	raw, err := docstore.Marshal(id, doc)
	if err != nil {
		return docstore.Wrap("create", collection, id, err)
	}
	after, err := docstore.Unmarshal(raw)
	if err != nil {
		return docstore.Wrap("create", collection, id, err)
	}

	query := `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (collection, id) DO NOTHING`

	tag, err := s.getQuerier(ctx).Exec(ctx, query, collection, id, string(raw))
	if err != nil {
		return docstore.Wrap("create", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.AlreadyExists(collection, id)
	}
	s.emit(ctx, collection, nil, after)
	return nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc docstore.Document) error {
	raw, err := docstore.Marshal(id, doc)
	if err != nil {
		return docstore.Wrap("put", collection, id, err)
	}

	query := `
		WITH old AS (
			SELECT data FROM documents WHERE collection = $1 AND id = $2
		)
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
		RETURNING (SELECT data FROM old), data`

	var beforeRaw, afterRaw []byte
	if err := s.getQuerier(ctx).QueryRow(ctx, query, collection, id, string(raw)).Scan(&beforeRaw, &afterRaw); err != nil {
		return docstore.Wrap("put", collection, id, err)
	}
	s.emitRaw(ctx, collection, beforeRaw, afterRaw)
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return docstore.Wrap("update", collection, id, err)
	}

	query := `
		WITH old AS (
			SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE
		)
		UPDATE documents d
		SET data = d.data || $3::jsonb || jsonb_build_object('id', $2::text), updated_at = NOW()
		FROM old
		WHERE d.collection = $1 AND d.id = $2
		RETURNING old.data, d.data`

	var beforeRaw, afterRaw []byte
	err = s.getQuerier(ctx).QueryRow(ctx, query, collection, id, string(patch)).Scan(&beforeRaw, &afterRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docstore.NotFound(collection, id)
		}
		return docstore.Wrap("update", collection, id, err)
	}
	s.emitRaw(ctx, collection, beforeRaw, afterRaw)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2 RETURNING data`

	var beforeRaw []byte
	err := s.getQuerier(ctx).QueryRow(ctx, query, collection, id).Scan(&beforeRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docstore.NotFound(collection, id)
		}
		return docstore.Wrap("delete", collection, id, err)
	}
	s.emitRaw(ctx, collection, beforeRaw, nil)
	return nil
}

// buildQuery renders q against the documents table. Field names have been
// validated as identifiers before they are interpolated.
func buildQuery(collection string, q docstore.Query) (string, []any, error) {
	var sb strings.Builder
	args := []any{collection}
	sb.WriteString(`SELECT data FROM documents WHERE collection = $1`)

	for _, f := range q.Filters {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		args = append(args, string(raw))
		switch f.Op {
		case docstore.OpEqual:
			fmt.Fprintf(&sb, ` AND data->'%s' = $%d::jsonb`, f.Field, len(args))
		case docstore.OpIn:
			fmt.Fprintf(&sb, ` AND $%d::jsonb @> jsonb_build_array(data->'%s')`, len(args), f.Field)
		}
	}

	if len(q.OrderBy) > 0 {
		sb.WriteString(` ORDER BY `)
		for i, o := range q.OrderBy {
			if i > 0 {
				sb.WriteString(`, `)
			}
			fmt.Fprintf(&sb, `data->'%s'`, o.Field)
			if o.Desc {
				sb.WriteString(` DESC NULLS LAST`)
			} else {
				sb.WriteString(` ASC NULLS FIRST`)
			}
		}
		sb.WriteString(`, id`)
	} else {
		sb.WriteString(` ORDER BY id`)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	return sb.String(), args, nil
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	query, args, err := buildQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.getQuerier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, docstore.Wrap("query", collection, "", err)
	}
	defer rows.Close()

	docs := []docstore.Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, docstore.Wrap("query", collection, "", err)
		}
		doc, err := docstore.Unmarshal(raw)
		if err != nil {
			return nil, docstore.Wrap("query", collection, "", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, docstore.Wrap("query", collection, "", err)
	}
	return docs, nil
}

func (s *Store) Subscribe(ctx context.Context, collection string, q docstore.Query, fn func([]docstore.Document)) (docstore.Unsubscribe, error) {
	return s.watchers.Watch(ctx, collection, q, func(ctx context.Context) ([]docstore.Document, error) {
		return s.Query(ctx, collection, q)
	}, fn)
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.withTransaction(ctx, fn)
}

// Close stops subscriptions. The pool is owned by the caller.
func (s *Store) Close() error {
	s.watchers.Close()
	return nil
}

func (s *Store) emitRaw(ctx context.Context, collection string, beforeRaw, afterRaw []byte) {
	var before, after docstore.Document
	if len(beforeRaw) > 0 {
		before, _ = docstore.Unmarshal(beforeRaw)
	}
	if len(afterRaw) > 0 {
		after, _ = docstore.Unmarshal(afterRaw)
	}
	s.emit(ctx, collection, before, after)
}
