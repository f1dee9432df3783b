package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

// Upsert creates or refreshes an owner row. The ledger counters are never
// touched here: storage_used only moves inside file write/delete
// transactions.
func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	quota := user.StorageQuota
	if quota <= 0 {
		quota = DefaultStorageQuota
	}
	role := user.Role
	if role == "" {
		role = "user"
	}
	const query = `
INSERT INTO users (id, email, display_name, role, storage_quota, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  display_name = EXCLUDED.display_name,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		role,
		quota,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, display_name, role, storage_quota, storage_used, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.Role,
		&user.StorageQuota,
		&user.StorageUsed,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = time.Now().UTC()
	}
	return user, nil
}

var _ Repo = (*PGRepo)(nil)
