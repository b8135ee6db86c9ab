// Package memory is an in-process docstore.Store used by tests and by
// single-node deployments that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
)

type txKey struct{}

type txState struct {
	store   *Store
	pending []change
}

type change struct {
	collection    string
	before, after docstore.Document
}

// Store keeps encoded documents in maps. Writers, including whole
// transactions, are serialised; readers never block on a transaction and may
// observe its uncommitted writes. A failed transaction restores the snapshot
// taken when it began.
type Store struct {
	writeMu sync.Mutex

	mu          sync.RWMutex
	collections map[string]map[string][]byte

	watchers *docstore.Watchers
}

var _ docstore.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string][]byte),
		watchers:    docstore.NewWatchers(),
	}
}

// Watchers exposes the subscription registry, mainly for error reporting hooks.
func (s *Store) Watchers() *docstore.Watchers {
	return s.watchers
}

func (s *Store) txFrom(ctx context.Context) *txState {
	tx, ok := ctx.Value(txKey{}).(*txState)
	if !ok || tx.store != s {
		return nil
	}
	return tx
}

// lockWrite serialises a write that is not already covered by a transaction.
func (s *Store) lockWrite(ctx context.Context) (*txState, func()) {
	tx := s.txFrom(ctx)
	if tx != nil {
		return tx, func() {}
	}
	s.writeMu.Lock()
	return nil, s.writeMu.Unlock
}

func (s *Store) read(collection, id string) (docstore.Document, []byte, error) {
	s.mu.RLock()
	raw, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, docstore.NotFound(collection, id)
	}
	doc, err := docstore.Unmarshal(raw)
	if err != nil {
		return nil, nil, docstore.Wrap("get", collection, id, err)
	}
	return doc, raw, nil
}

func (s *Store) write(collection, id string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	if raw == nil {
		delete(s.collections[collection], id)
		return
	}
	s.collections[collection][id] = raw
}

func (s *Store) emit(tx *txState, collection string, before, after docstore.Document) {
	if tx != nil {
		tx.pending = append(tx.pending, change{collection: collection, before: before, after: after})
		return
	}
	s.watchers.Notify(collection, before, after)
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, _, err := s.read(collection, id)
	return doc, err
}

func (s *Store) Create(ctx context.Context, collection, id string, doc docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, unlock := s.lockWrite(ctx)
	defer unlock()

	s.mu.RLock()
	_, taken := s.collections[collection][id]
	s.mu.RUnlock()
	if taken {
		return docstore.AlreadyExists(collection, id)
	}

	raw, err := docstore.Marshal(id, doc)
	if err != nil {
		return docstore.Wrap("create", collection, id, err)
	}
	after, err := docstore.Unmarshal(raw)
	if err != nil {
		return docstore.Wrap("create", collection, id, err)
	}
	s.write(collection, id, raw)
	s.emit(tx, collection, nil, after)
	return nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, unlock := s.lockWrite(ctx)
	defer unlock()

	raw, err := docstore.Marshal(id, doc)
	if err != nil {
		return docstore.Wrap("put", collection, id, err)
	}
	after, err := docstore.Unmarshal(raw)
	if err != nil {
		return docstore.Wrap("put", collection, id, err)
	}
	before, _, _ := s.read(collection, id)
	s.write(collection, id, raw)
	s.emit(tx, collection, before, after)
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, unlock := s.lockWrite(ctx)
	defer unlock()

	before, _, err := s.read(collection, id)
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
	s.write(collection, id, raw)
	s.emit(tx, collection, before, after)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, unlock := s.lockWrite(ctx)
	defer unlock()

	before, _, err := s.read(collection, id)
	if err != nil {
		return err
	}
	s.write(collection, id, nil)
	s.emit(tx, collection, before, nil)
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	docs := make([]docstore.Document, 0, len(s.collections[collection]))
	for id, raw := range s.collections[collection] {
		doc, err := docstore.Unmarshal(raw)
		if err != nil {
			s.mu.RUnlock()
			return nil, docstore.Wrap("query", collection, id, err)
		}
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	return docstore.Apply(docs, q), nil
}

func (s *Store) Subscribe(ctx context.Context, collection string, q docstore.Query, fn func([]docstore.Document)) (docstore.Unsubscribe, error) {
	return s.watchers.Watch(ctx, collection, q, func(ctx context.Context) ([]docstore.Document, error) {
		return s.Query(ctx, collection, q)
	}, fn)
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.txFrom(ctx) != nil {
		return fn(ctx)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snapshot := s.snapshot()
	tx := &txState{store: s}

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
			return
		}
		for _, c := range tx.pending {
			s.watchers.Notify(c.collection, c.before, c.after)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}

func (s *Store) snapshot() map[string]map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string][]byte, len(s.collections))
	for name, docs := range s.collections {
		cp := make(map[string][]byte, len(docs))
		for id, raw := range docs {
			cp[id] = raw
		}
		out[name] = cp
	}
	return out
}

func (s *Store) restore(snapshot map[string]map[string][]byte) {
	s.mu.Lock()
	s.collections = snapshot
	s.mu.Unlock()
}

// Close stops all subscriptions.
func (s *Store) Close() error {
	s.watchers.Close()
	return nil
}
