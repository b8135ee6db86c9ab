// Package sqlite is a docstore.Store persisted to a single SQLite table of
// JSON documents. It suits single-node deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

type txState struct {
	tx      *sql.Tx
	owner   *Store
	pending []change
}

type change struct {
	collection    string
	before, after docstore.Document
}

// Store uses one connection, so statements and transactions are serialised
// by database/sql.
type Store struct {
	db       *sql.DB
	watchers *docstore.Watchers
}

var _ docstore.Store = (*Store)(nil)

// NewStore opens (or creates) the database at path. Use ":memory:" for a
// throwaway database.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "hris-dataflow.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (collection, id)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}

	return &Store{db: db, watchers: docstore.NewWatchers()}, nil
}

// Watchers exposes the subscription registry.
func (s *Store) Watchers() *docstore.Watchers {
	return s.watchers
}

func (s *Store) txFrom(ctx context.Context) *txState {
	st, ok := ctx.Value(txKey{}).(*txState)
	if !ok || st.owner != s {
		return nil
	}
	return st
}

func (s *Store) queryer(ctx context.Context) queryer {
	if st := s.txFrom(ctx); st != nil {
		return st.tx
	}
	return s.db
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (retErr error) {
	if s.txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return docstore.Wrap("begin", "", "", err)
	}
	st := &txState{tx: tx, owner: s}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return docstore.Wrap("commit", "", "", err)
	}
	for _, c := range st.pending {
		s.watchers.Notify(c.collection, c.before, c.after)
	}
	return nil
}

// write runs fn in the caller's transaction, or in a fresh one so that the
// before image and the write are atomic.
func (s *Store) write(ctx context.Context, fn func(ctx context.Context, q queryer, st *txState) error) error {
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		st := s.txFrom(ctx)
		return fn(ctx, st.tx, st)
	})
}

func (s *Store) get(ctx context.Context, q queryer, collection, id string) (docstore.Document, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.NotFound(collection, id)
		}
		return nil, docstore.Wrap("get", collection, id, err)
	}
	doc, err := docstore.Unmarshal([]byte(raw))
	if err != nil {
		return nil, docstore.Wrap("get", collection, id, err)
	}
	return doc, nil
}

func (s *Store) put(ctx context.Context, q queryer, collection, id string, raw []byte) error {
	_, err := q.ExecContext(ctx, `INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, id, string(raw), time.Now().UnixMilli())
	if err != nil {
		return docstore.Wrap("put", collection, id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	return s.get(ctx, s.queryer(ctx), collection, id)
}

func (s *Store) Create(ctx context.Context, collection, id string, doc docstore.Document) error {
	raw, err := docstore.Marshal(id, doc)
	if err != nil {
		return docstore.Wrap("create", collection, id, err)
	}
	after, err := docstore.Unmarshal(raw)
	if err != nil {
		return docstore.Wrap("create", collection, id, err)
	}
	return s.write(ctx, func(ctx context.Context, q queryer, st *txState) error {
		res, err := q.ExecContext(ctx, `INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (collection, id) DO NOTHING`,
			collection, id, string(raw), time.Now().UnixMilli())
		if err != nil {
			return docstore.Wrap("create", collection, id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return docstore.Wrap("create", collection, id, err)
		}
		if n == 0 {
			return docstore.AlreadyExists(collection, id)
		}
		st.pending = append(st.pending, change{collection: collection, after: after})
		return nil
	})
}

func (s *Store) Put(ctx context.Context, collection, id string, doc docstore.Document) error {
	raw, err := docstore.Marshal(id, doc)
	if err != nil {
		return docstore.Wrap("put", collection, id, err)
	}
	after, err := docstore.Unmarshal(raw)
	if err != nil {
		return docstore.Wrap("put", collection, id, err)
	}
	return s.write(ctx, func(ctx context.Context, q queryer, st *txState) error {
		before, err := s.get(ctx, q, collection, id)
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		if err := s.put(ctx, q, collection, id, raw); err != nil {
			return err
		}
		st.pending = append(st.pending, change{collection: collection, before: before, after: after})
		return nil
	})
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	return s.write(ctx, func(ctx context.Context, q queryer, st *txState) error {
		before, err := s.get(ctx, q, collection, id)
		if err != nil {
			return err
		}
		merged := make(docstore.Document, len(before)+len(fields))
		for k, v := range before {
			merged[k] = v
		}
		for k, v := range fields {
			merged[k] = v
		}
		raw, err := docstore.Marshal(id, merged)
		if err != nil {
			return docstore.Wrap("update", collection, id, err)
		}
		after, err := docstore.Unmarshal(raw)
		if err != nil {
			return docstore.Wrap("update", collection, id, err)
		}
		if err := s.put(ctx, q, collection, id, raw); err != nil {
			return err
		}
		st.pending = append(st.pending, change{collection: collection, before: before, after: after})
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.write(ctx, func(ctx context.Context, q queryer, st *txState) error {
		before, err := s.get(ctx, q, collection, id)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
			return docstore.Wrap("delete", collection, id, err)
		}
		st.pending = append(st.pending, change{collection: collection, before: before})
		return nil
	})
}

// sqlValue converts a filter value into what json_extract yields for it.
func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, int64, float64:
		return x, nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		return x.Float64()
	}
	return nil, fmt.Errorf("%w: unsupported filter value %T", docstore.ErrInvalidField, v)
}

func buildQuery(collection string, q docstore.Query) (string, []any, error) {
	var sb strings.Builder
	args := []any{collection}
	sb.WriteString(`SELECT data FROM documents WHERE collection = ?`)

	for _, f := range q.Filters {
		path := fmt.Sprintf(`json_extract(data, '$.%s')`, f.Field)
		switch f.Op {
		case docstore.OpEqual:
			if f.Value == nil {
				fmt.Fprintf(&sb, ` AND %s IS NULL`, path)
				continue
			}
			v, err := sqlValue(f.Value)
			if err != nil {
				return "", nil, err
			}
			args = append(args, v)
			fmt.Fprintf(&sb, ` AND %s = ?`, path)
		case docstore.OpIn:
			raw, err := json.Marshal(f.Value)
			if err != nil {
				return "", nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
			}
			args = append(args, string(raw))
			fmt.Fprintf(&sb, ` AND %s IN (SELECT value FROM json_each(?))`, path)
		}
	}

	sb.WriteString(` ORDER BY `)
	for _, o := range q.OrderBy {
		fmt.Fprintf(&sb, `json_extract(data, '$.%s')`, o.Field)
		if o.Desc {
			sb.WriteString(` DESC`)
		}
		sb.WriteString(`, `)
	}
	sb.WriteString(`id`)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(` LIMIT ?`)
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

	rows, err := s.queryer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, docstore.Wrap("query", collection, "", err)
	}
	defer func() { _ = rows.Close() }()

	docs := []docstore.Document{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, docstore.Wrap("query", collection, "", err)
		}
		doc, err := docstore.Unmarshal([]byte(raw))
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

func (s *Store) Close() error {
	s.watchers.Close()
	return s.db.Close()
}
