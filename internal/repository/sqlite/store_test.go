package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore/docstoretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		s, err := NewStore(":memory:")
		require.NoError(t, err)
		return s
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hris.db")
	ctx := context.Background()

	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "policies", "p1", docstore.Document{"title": "Remote work", "active": true}))
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	docs, err := s.Query(ctx, "policies", docstore.Query{Filters: []docstore.Filter{docstore.Eq("active", true)}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Remote work", docs[0].String("title"))
}

func TestBuildQuery(t *testing.T) {
	query, args, err := buildQuery("notifications", docstore.Query{
		Filters: []docstore.Filter{
			docstore.In("audience", "employee:e1", "broadcast"),
			docstore.Eq("read", false),
			docstore.Eq("deletedAt", nil),
		},
		OrderBy: []docstore.OrderBy{{Field: "createdAt", Desc: true}},
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT data FROM documents WHERE collection = ?`+
			` AND json_extract(data, '$.audience') IN (SELECT value FROM json_each(?))`+
			` AND json_extract(data, '$.read') = ?`+
			` AND json_extract(data, '$.deletedAt') IS NULL`+
			` ORDER BY json_extract(data, '$.createdAt') DESC, id LIMIT ?`,
		query)
	assert.Equal(t, []any{"notifications", `["employee:e1","broadcast"]`, int64(0), 10}, args)
}
