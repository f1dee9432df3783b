// Package refs clears external references to a stored file. Posts and
// messages are owned by other services; the only operation this
// subsystem performs against them is the bulk "set file pointer to NULL"
// that must precede a hard delete.
package refs

import (
	"context"
	"database/sql"
)

// Execer is the slice of *sql.DB / *sql.Tx the nullify statements need,
// so they can run inside the caller's delete transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NullifyPostRefs clears every post pointing at the file.
func NullifyPostRefs(ctx context.Context, ex Execer, fileID string) error {
	_, err := ex.ExecContext(ctx, `UPDATE posts SET file_id = NULL WHERE file_id = $1`, fileID)
	return err
}

// NullifyMessageRefs clears every message pointing at the file.
func NullifyMessageRefs(ctx context.Context, ex Execer, fileID string) error {
	_, err := ex.ExecContext(ctx, `UPDATE messages SET file_id = NULL WHERE file_id = $1`, fileID)
	return err
}
