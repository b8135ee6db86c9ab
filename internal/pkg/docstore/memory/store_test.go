package memory

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore/docstoretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		return New()
	})
}

func TestStore_TransactionPanicRestoresSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "balances", "b1", docstore.Document{"remaining": "20"}))

	assert.Panics(t, func() {
		_ = s.RunInTransaction(ctx, func(ctx context.Context) error {
			_ = s.Update(ctx, "balances", "b1", docstore.Document{"remaining": "0"})
			panic("boom")
		})
	})

	doc, err := s.Get(ctx, "balances", "b1")
	require.NoError(t, err)
	assert.Equal(t, "20", doc.String("remaining"))

	// the write lock was released by the panicking transaction
	require.NoError(t, s.Put(ctx, "balances", "b2", docstore.Document{"remaining": "1"}))
}

func TestStore_StoredDocumentsAreIsolated(t *testing.T) {
	s := New()
	ctx := context.Background()
	input := docstore.Document{"tags": []string{"a"}}
	require.NoError(t, s.Put(ctx, "things", "t1", input))

	input["tags"] = []string{"mutated"}

	doc, err := s.Get(ctx, "things", "t1")
	require.NoError(t, err)
	doc["tags"] = []string{"also mutated"}

	again, err := s.Get(ctx, "things", "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Strings("tags"))
}

func TestStore_CanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "things", "t1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Put(ctx, "things", "t1", docstore.Document{}), context.Canceled)
}
