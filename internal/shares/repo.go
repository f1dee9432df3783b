package shares

import (
	"context"
	"time"
)

// Repo persists share grants. Access is the only mutating read: it
// consumes one unit of the grant's budget, or flips the grant inactive
// when its expiry or limit is hit, atomically with the check.
type Repo interface {
	Create(ctx context.Context, g ShareGrant) error
	GetByID(ctx context.Context, id string) (ShareGrant, error)
	GetByToken(ctx context.Context, token string) (ShareGrant, error)
	// GetActiveByFile returns the file's active grant, ErrNotFound when
	// none exists. At most one active grant per file is maintained.
	GetActiveByFile(ctx context.Context, fileID string) (ShareGrant, error)
	// Access validates the grant against now and increments its access
	// count. Expiry and exhaustion persist active=false before the
	// sentinel is returned, so a failed access is also the state
	// transition.
	Access(ctx context.Context, token string, now time.Time) (ShareGrant, error)
	UpdateQR(ctx context.Context, id string, qr []byte) error
	// Deactivate is idempotent.
	Deactivate(ctx context.Context, id string) error
}
