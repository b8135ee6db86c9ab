package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

type txState struct {
	tx      pgx.Tx
	owner   *Store
	pending []change
}

type change struct {
	collection    string
	before, after docstore.Document
}

// withTransaction executes fn inside a database transaction carried by ctx.
// A context that already holds a transaction of the same store is reused.
func (s *Store) withTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if st := s.txFrom(ctx); st != nil {
		return fn(ctx)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return docstore.Wrap("begin", "", "", fmt.Errorf("begin transaction: %w", err))
	}
	st := &txState{tx: tx, owner: s}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return docstore.Wrap("commit", "", "", fmt.Errorf("commit transaction: %w", err))
	}

	for _, c := range st.pending {
		s.watchers.Notify(c.collection, c.before, c.after)
	}
	return nil
}

func (s *Store) txFrom(ctx context.Context) *txState {
	st, ok := ctx.Value(txKey{}).(*txState)
	if !ok || st.owner != s {
		return nil
	}
	return st
}

// getQuerier returns either the transaction in ctx or the pool.
func (s *Store) getQuerier(ctx context.Context) database.Querier {
	if st := s.txFrom(ctx); st != nil {
		return st.tx
	}
	return s.pool
}

func (s *Store) emit(ctx context.Context, collection string, before, after docstore.Document) {
	if st := s.txFrom(ctx); st != nil {
		st.pending = append(st.pending, change{collection: collection, before: before, after: after})
		return
	}
	s.watchers.Notify(collection, before, after)
}
