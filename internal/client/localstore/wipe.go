package localstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkovs/weatherdeck/internal/client/repositories/kv"
)

// Wipe erases everything in the kv store: the favorites list and the
// session alike. It is the storage reset, not a logout; callers that need
// session-change notifications should log out through the SessionStore
// first.
func Wipe(ctx context.Context, db *sql.DB) error {
	if err := kv.NewSQLiteRepository(db).Clear(ctx); err != nil {
		return fmt.Errorf("failed to wipe local storage: %w", err)
	}
	return nil
}
