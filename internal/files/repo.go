package files

import "context"

// Repo defines persistence for stored files. Create and Delete also
// move the owner's storage ledger: the quota reservation commits with
// the insert and the release commits with the removal, never separately.
type Repo interface {
	// Create persists the file and reserves its size against the
	// owner's quota in one step. Fails with ErrQuotaExceeded without
	// writing anything when the ceiling would be crossed.
	Create(ctx context.Context, f File) error
	// GetByID loads the full row including payload and thumbnail.
	GetByID(ctx context.Context, id string) (File, error)
	// GetMeta loads the row without its binary columns.
	GetMeta(ctx context.Context, id string) (File, error)
	// ListByUser returns the owner's files newest-first, metadata only.
	ListByUser(ctx context.Context, userID string) ([]File, error)
	// Delete hard-deletes the file after nulling every external
	// reference and deactivating its shares, releasing the owner's
	// ledger by exactly the file's size. Fails with ErrUnauthorized
	// when ownerID does not own the file.
	Delete(ctx context.Context, id, ownerID string) (File, error)
}
