package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestOpen_AppliesSchema(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Both tables must exist after migration.
	_, err = db.ExecContext(ctx, `INSERT INTO kv (key, value) VALUES ('k', x'01')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO webcache (cache_name, url, status, header, body) VALUES ('v1', 'http://a/', 200, '{}', x'00')`)
	require.NoError(t, err)
}
