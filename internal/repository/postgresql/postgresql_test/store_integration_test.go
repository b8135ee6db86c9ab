package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/docstore/docstoretest"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// newTestDatabase connects to TEST_DATABASE_URL or skips the test.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolConfig{MaxConns: 4, MinConns: 1})
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(db.Close)
	return db
}

// truncateDocuments empties the documents table.
func truncateDocuments(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Exec(context.Background(), "TRUNCATE TABLE documents")
	require.NoError(t, err)
}

func TestStore_Contract(t *testing.T) {
	db := newTestDatabase(t)

	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		s := postgresql.NewStore(db)
		require.NoError(t, s.EnsureSchema(context.Background()))
		truncateDocuments(t, db)
		return s
	})
}
