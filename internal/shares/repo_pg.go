package shares

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

const grantColumns = `id, file_id, share_token, qr_code, expires_at, max_access_count, access_count, active, created_at`

func scanGrant(row interface{ Scan(dest ...any) error }) (ShareGrant, error) {
	var g ShareGrant
	var qr []byte
	var expiresAt sql.NullTime
	var maxCount sql.NullInt64
	err := row.Scan(
		&g.ID,
		&g.FileID,
		&g.ShareToken,
		&qr,
		&expiresAt,
		&maxCount,
		&g.AccessCount,
		&g.Active,
		&g.CreatedAt,
	)
	if err != nil {
		return ShareGrant{}, err
	}
	g.QRCode = qr
	if expiresAt.Valid {
		t := expiresAt.Time
		g.ExpiresAt = &t
	}
	if maxCount.Valid {
		n := int(maxCount.Int64)
		g.MaxAccessCount = &n
	}
	return g, nil
}

func (r *PGRepo) Create(ctx context.Context, g ShareGrant) error {
	const query = `
INSERT INTO public_shares (id, file_id, share_token, qr_code, expires_at, max_access_count, access_count, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	var expiresAt any
	if g.ExpiresAt != nil {
		expiresAt = *g.ExpiresAt
	}
	var maxCount any
	if g.MaxAccessCount != nil {
		maxCount = *g.MaxAccessCount
	}
	_, err := r.DB.ExecContext(ctx, query,
		g.ID,
		g.FileID,
		g.ShareToken,
		g.QRCode,
		expiresAt,
		maxCount,
		g.AccessCount,
		g.Active,
		g.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (ShareGrant, error) {
	g, err := scanGrant(r.DB.QueryRowContext(ctx,
		`SELECT `+grantColumns+` FROM public_shares WHERE id = $1 LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ShareGrant{}, ErrNotFound
	}
	return g, err
}

func (r *PGRepo) GetByToken(ctx context.Context, token string) (ShareGrant, error) {
	g, err := scanGrant(r.DB.QueryRowContext(ctx,
		`SELECT `+grantColumns+` FROM public_shares WHERE share_token = $1 LIMIT 1`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return ShareGrant{}, ErrNotFound
	}
	return g, err
}

func (r *PGRepo) GetActiveByFile(ctx context.Context, fileID string) (ShareGrant, error) {
	g, err := scanGrant(r.DB.QueryRowContext(ctx,
		`SELECT `+grantColumns+` FROM public_shares WHERE file_id = $1 AND active = TRUE ORDER BY created_at DESC LIMIT 1`, fileID))
	if errors.Is(err, sql.ErrNoRows) {
		return ShareGrant{}, ErrNotFound
	}
	return g, err
}

// Access locks the grant row so concurrent accesses serialize on the
// counter: with one unit of budget left, two in-flight requests can
// never both succeed.
func (r *PGRepo) Access(ctx context.Context, token string, now time.Time) (ShareGrant, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return ShareGrant{}, err
	}
	defer tx.Rollback()

	g, err := scanGrant(tx.QueryRowContext(ctx,
		`SELECT `+grantColumns+` FROM public_shares WHERE share_token = $1 FOR UPDATE`, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ShareGrant{}, ErrNotFound
		}
		return ShareGrant{}, err
	}

	if !g.Active {
		return ShareGrant{}, ErrShareInactive
	}
	if g.Expired(now) {
		if err := r.deactivateTx(ctx, tx, g.ID); err != nil {
			return ShareGrant{}, err
		}
		if err := tx.Commit(); err != nil {
			return ShareGrant{}, err
		}
		return ShareGrant{}, ErrShareExpired
	}
	if g.Exhausted() {
		if err := r.deactivateTx(ctx, tx, g.ID); err != nil {
			return ShareGrant{}, err
		}
		if err := tx.Commit(); err != nil {
			return ShareGrant{}, err
		}
		return ShareGrant{}, ErrShareLimitReached
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE public_shares SET access_count = access_count + 1 WHERE id = $1`, g.ID); err != nil {
		return ShareGrant{}, err
	}
	if err := tx.Commit(); err != nil {
		return ShareGrant{}, err
	}
	g.AccessCount++
	return g, nil
}

func (r *PGRepo) deactivateTx(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE public_shares SET active = FALSE WHERE id = $1`, id)
	return err
}

func (r *PGRepo) UpdateQR(ctx context.Context, id string, qr []byte) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE public_shares SET qr_code = $1 WHERE id = $2`, qr, id)
	return err
}

func (r *PGRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE public_shares SET active = FALSE WHERE id = $1`, id)
	return err
}

var _ Repo = (*PGRepo)(nil)
