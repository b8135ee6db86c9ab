// Package docstoretest holds the behavioural suite every docstore.Store
// implementation must pass.
package docstoretest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) docstore.Store

const waitFor = 2 * time.Second

// Run executes the suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s docstore.Store)
	}{
		{"GetMissing", testGetMissing},
		{"PutGet", testPutGet},
		{"PutReplaces", testPutReplaces},
		{"Create", testCreate},
		{"ConcurrentFirstWriters", testConcurrentFirstWriters},
		{"Update", testUpdate},
		{"Delete", testDelete},
		{"QueryFilters", testQueryFilters},
		{"QueryOrderLimit", testQueryOrderLimit},
		{"QueryInvalidField", testQueryInvalidField},
		{"TransactionCommit", testTransactionCommit},
		{"TransactionRollback", testTransactionRollback},
		{"SubscribeInitialEmpty", testSubscribeInitialEmpty},
		{"SubscribeUpdates", testSubscribeUpdates},
		{"SubscribeLeavingResultSet", testSubscribeLeavingResultSet},
		{"SubscribeAfterCommitOnly", testSubscribeAfterCommitOnly},
		{"Unsubscribe", testUnsubscribe},
		{"SubscribeContextCancel", testSubscribeContextCancel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tt.fn(t, s)
		})
	}
}

func testGetMissing(t *testing.T, s docstore.Store) {
	_, err := s.Get(context.Background(), "people", "nobody")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testPutGet(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	err := s.Put(ctx, "people", "p1", docstore.Document{
		"name":      "Ana",
		"age":       31,
		"active":    true,
		"createdAt": docstore.Timestamp(createdAt),
		"address":   map[string]any{"city": "Bandung"},
		"tags":      []string{"a", "b"},
	})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "people", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", doc.ID())
	assert.Equal(t, "Ana", doc.String("name"))
	assert.Equal(t, 31, doc.Int("age"))
	assert.True(t, doc.Bool("active"))
	assert.True(t, createdAt.Equal(doc.Time("createdAt")))
	assert.Equal(t, "Bandung", doc.Doc("address").String("city"))
	assert.Equal(t, []string{"a", "b"}, doc.Strings("tags"))
}

func testPutReplaces(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "people", "p1", docstore.Document{"name": "Ana", "age": 31}))
	require.NoError(t, s.Put(ctx, "people", "p1", docstore.Document{"name": "Ana B"}))

	doc, err := s.Get(ctx, "people", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ana B", doc.String("name"))
	_, hasAge := doc["age"]
	assert.False(t, hasAge)
}

func testCreate(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "balances", "b1", docstore.Document{"remaining": "20"}))

	err := s.Create(ctx, "balances", "b1", docstore.Document{"remaining": "5"})
	assert.ErrorIs(t, err, docstore.ErrAlreadyExists)
	assert.False(t, docstore.IsStorageError(err))

	doc, err := s.Get(ctx, "balances", "b1")
	require.NoError(t, err)
	assert.Equal(t, "20", doc.String("remaining"))
	assert.Equal(t, "b1", doc.ID())

	// a failed create leaves the surrounding transaction usable
	err = s.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.Create(ctx, "balances", "b1", docstore.Document{}); !errors.Is(err, docstore.ErrAlreadyExists) {
			return errors.New("expected already exists")
		}
		return s.Update(ctx, "balances", "b1", docstore.Document{"remaining": "18"})
	})
	require.NoError(t, err)
	doc, err = s.Get(ctx, "balances", "b1")
	require.NoError(t, err)
	assert.Equal(t, "18", doc.String("remaining"))
}

// testConcurrentFirstWriters opens one counter from many transactions at
// once. Every writer must see the others' increments, including the one that
// created the document.
func testConcurrentFirstWriters(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	const writers = 8

	var g errgroup.Group
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			return s.RunInTransaction(ctx, func(ctx context.Context) error {
				doc, err := s.Get(ctx, "balances", "b1")
				if errors.Is(err, docstore.ErrNotFound) {
					doc = docstore.Document{"count": 0}
					err = s.Create(ctx, "balances", "b1", doc)
					if errors.Is(err, docstore.ErrAlreadyExists) {
						doc, err = s.Get(ctx, "balances", "b1")
					}
				}
				if err != nil {
					return err
				}
				return s.Put(ctx, "balances", "b1", docstore.Document{"count": doc.Int("count") + 1})
			})
		})
	}
	require.NoError(t, g.Wait())

	doc, err := s.Get(ctx, "balances", "b1")
	require.NoError(t, err)
	assert.Equal(t, writers, doc.Int("count"))
}

func testUpdate(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "people", "p1", docstore.Document{"name": "Ana", "age": 31}))
	require.NoError(t, s.Update(ctx, "people", "p1", docstore.Document{"age": 32, "team": "hr"}))

	doc, err := s.Get(ctx, "people", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc.String("name"))
	assert.Equal(t, 32, doc.Int("age"))
	assert.Equal(t, "hr", doc.String("team"))
	assert.Equal(t, "p1", doc.ID())

	err = s.Update(ctx, "people", "missing", docstore.Document{"age": 1})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testDelete(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "people", "p1", docstore.Document{"name": "Ana"}))
	require.NoError(t, s.Delete(ctx, "people", "p1"))

	_, err := s.Get(ctx, "people", "p1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "people", "p1"), docstore.ErrNotFound)
}

func seed(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	docs := map[string]docstore.Document{
		"n1": {"audience": "employee:e1", "read": false, "createdAt": int64(100)},
		"n2": {"audience": "role:hr", "read": false, "createdAt": int64(300)},
		"n3": {"audience": "broadcast", "read": true, "createdAt": int64(200)},
		"n4": {"audience": "employee:e2", "read": false, "createdAt": int64(400)},
	}
	for id, d := range docs {
		require.NoError(t, s.Put(ctx, "notifications", id, d))
	}
}

func ids(docs []docstore.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID())
	}
	return out
}

func testQueryFilters(t *testing.T, s docstore.Store) {
	seed(t, s)
	ctx := context.Background()

	docs, err := s.Query(ctx, "notifications", docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("read", false)},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"n1", "n2", "n4"}, ids(docs))

	docs, err = s.Query(ctx, "notifications", docstore.Query{
		Filters: []docstore.Filter{
			docstore.In("audience", "employee:e1", "role:hr", "broadcast"),
			docstore.Eq("read", false),
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"n1", "n2"}, ids(docs))

	docs, err = s.Query(ctx, "notifications", docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("createdAt", 200)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n3"}, ids(docs))

	docs, err = s.Query(ctx, "other", docstore.Query{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func testQueryOrderLimit(t *testing.T, s docstore.Store) {
	seed(t, s)
	ctx := context.Background()

	docs, err := s.Query(ctx, "notifications", docstore.Query{
		OrderBy: []docstore.OrderBy{{Field: "createdAt", Desc: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n4", "n2", "n3", "n1"}, ids(docs))

	docs, err = s.Query(ctx, "notifications", docstore.Query{
		OrderBy: []docstore.OrderBy{{Field: "createdAt"}},
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n3"}, ids(docs))
}

func testQueryInvalidField(t *testing.T, s docstore.Store) {
	_, err := s.Query(context.Background(), "notifications", docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("read'; DROP TABLE documents; --", false)},
	})
	assert.ErrorIs(t, err, docstore.ErrInvalidField)
}

func testTransactionCommit(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.Put(ctx, "balances", "b1", docstore.Document{"remaining": "20"}); err != nil {
			return err
		}
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.Update(ctx, "balances", "b1", docstore.Document{"remaining": "15"})
		})
	})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "balances", "b1")
	require.NoError(t, err)
	assert.Equal(t, "15", doc.String("remaining"))
}

func testTransactionRollback(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "balances", "b1", docstore.Document{"remaining": "20"}))

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.Update(ctx, "balances", "b1", docstore.Document{"remaining": "0"}); err != nil {
			return err
		}
		if err := s.Put(ctx, "requests", "r1", docstore.Document{"status": "pending"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	doc, err := s.Get(ctx, "balances", "b1")
	require.NoError(t, err)
	assert.Equal(t, "20", doc.String("remaining"))

	_, err = s.Get(ctx, "requests", "r1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func collect(t *testing.T, s docstore.Store, ctx context.Context, q docstore.Query) (<-chan []docstore.Document, docstore.Unsubscribe) {
	t.Helper()
	ch := make(chan []docstore.Document, 64)
	unsub, err := s.Subscribe(ctx, "notifications", q, func(docs []docstore.Document) {
		ch <- docs
	})
	require.NoError(t, err)
	return ch, unsub
}

func next(t *testing.T, ch <-chan []docstore.Document) []docstore.Document {
	t.Helper()
	select {
	case docs := <-ch:
		return docs
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for subscription delivery")
		return nil
	}
}

// nextMatching drains deliveries until one satisfies ok.
func nextMatching(t *testing.T, ch <-chan []docstore.Document, ok func([]docstore.Document) bool) []docstore.Document {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case docs := <-ch:
			if ok(docs) {
				return docs
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching subscription delivery")
			return nil
		}
	}
}

func quiet(t *testing.T, ch <-chan []docstore.Document) {
	t.Helper()
	select {
	case docs := <-ch:
		t.Fatalf("unexpected delivery: %v", ids(docs))
	case <-time.After(100 * time.Millisecond):
	}
}

func testSubscribeInitialEmpty(t *testing.T, s docstore.Store) {
	ch, unsub := collect(t, s, context.Background(), docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("audience", "employee:e1")},
	})
	defer unsub()

	// the initial result is delivered before Subscribe returns
	select {
	case docs := <-ch:
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	default:
		t.Fatal("initial delivery missing")
	}
}

func testSubscribeUpdates(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	ch, unsub := collect(t, s, ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("audience", "employee:e1")},
	})
	defer unsub()
	assert.Empty(t, next(t, ch))

	require.NoError(t, s.Put(ctx, "notifications", "n1", docstore.Document{"audience": "employee:e1", "read": false}))
	docs := nextMatching(t, ch, func(d []docstore.Document) bool { return len(d) == 1 })
	assert.Equal(t, []string{"n1"}, ids(docs))

	// unrelated documents do not wake the subscription
	require.NoError(t, s.Put(ctx, "notifications", "n2", docstore.Document{"audience": "employee:e2", "read": false}))
	quiet(t, ch)
}

func testSubscribeLeavingResultSet(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "notifications", "n1", docstore.Document{"audience": "employee:e1", "read": false}))

	ch, unsub := collect(t, s, ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("read", false)},
	})
	defer unsub()
	assert.Len(t, next(t, ch), 1)

	require.NoError(t, s.Update(ctx, "notifications", "n1", docstore.Document{"read": true}))
	docs := nextMatching(t, ch, func(d []docstore.Document) bool { return len(d) == 0 })
	assert.Empty(t, docs)
}

func testSubscribeAfterCommitOnly(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	ch, unsub := collect(t, s, ctx, docstore.Query{})
	defer unsub()
	assert.Empty(t, next(t, ch))

	_ = s.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.Put(ctx, "notifications", "n1", docstore.Document{"audience": "broadcast"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	quiet(t, ch)

	require.NoError(t, s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.Put(ctx, "notifications", "n2", docstore.Document{"audience": "broadcast"})
	}))
	docs := nextMatching(t, ch, func(d []docstore.Document) bool { return len(d) == 1 })
	assert.Equal(t, []string{"n2"}, ids(docs))
}

func testUnsubscribe(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	ch, unsub := collect(t, s, ctx, docstore.Query{})
	assert.Empty(t, next(t, ch))

	unsub()
	unsub()

	require.NoError(t, s.Put(ctx, "notifications", "n1", docstore.Document{"audience": "broadcast"}))
	quiet(t, ch)
}

func testSubscribeContextCancel(t *testing.T, s docstore.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	ch, unsub := collect(t, s, ctx, docstore.Query{})
	defer unsub()
	assert.Empty(t, next(t, ch))

	cancel()
	// give the watcher goroutine a moment to observe the cancellation
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, s.Put(context.Background(), "notifications", "n1", docstore.Document{"audience": "broadcast"}))
	quiet(t, ch)
}
