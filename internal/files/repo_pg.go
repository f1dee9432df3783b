package files

import (
	"context"
	"database/sql"
	"errors"

	"mediavault-backend/internal/refs"
)

type PGRepo struct {
	DB *sql.DB
}

// Create inserts the file and reserves its size against the owner's
// quota in one transaction. The owner row is locked FOR UPDATE so
// concurrent uploads serialize on the ledger: with N bytes of headroom,
// two in-flight uploads of N bytes can never both commit.
func (r *PGRepo) Create(ctx context.Context, f File) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var used, quota int64
	err = tx.QueryRowContext(ctx,
		`SELECT storage_used, storage_quota FROM users WHERE id = $1 FOR UPDATE`,
		f.UserID,
	).Scan(&used, &quota)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.New("owner not found: " + f.UserID)
		}
		return err
	}
	if used+f.FileSize > quota {
		return ErrQuotaExceeded
	}

	const insert = `
INSERT INTO files (id, user_id, file_name, file_type, file_size, file_data, thumbnail, category, description, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = tx.ExecContext(ctx, insert,
		f.ID,
		f.UserID,
		f.FileName,
		f.FileType,
		f.FileSize,
		f.Data,
		f.Thumbnail,
		string(f.Category),
		f.Description,
		f.UploadedAt,
	)
	if err != nil {
		return classifyStorageErr(err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET storage_used = storage_used + $1, updated_at = now() WHERE id = $2`,
		f.FileSize, f.UserID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (File, error) {
	const query = `
SELECT id, user_id, file_name, file_type, file_size, file_data, thumbnail, category, description, removed, uploaded_at
FROM files
WHERE id = $1
LIMIT 1`
	var f File
	var thumbnail []byte
	var category string
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&f.ID,
		&f.UserID,
		&f.FileName,
		&f.FileType,
		&f.FileSize,
		&f.Data,
		&thumbnail,
		&category,
		&f.Description,
		&f.Removed,
		&f.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, err
	}
	f.Thumbnail = thumbnail
	f.Category = Category(category)
	if f.Removed {
		return File{}, ErrGone
	}
	return f, nil
}

func (r *PGRepo) GetMeta(ctx context.Context, id string) (File, error) {
	const query = `
SELECT id, user_id, file_name, file_type, file_size, category, description, removed, uploaded_at
FROM files
WHERE id = $1
LIMIT 1`
	var f File
	var category string
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&f.ID,
		&f.UserID,
		&f.FileName,
		&f.FileType,
		&f.FileSize,
		&category,
		&f.Description,
		&f.Removed,
		&f.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, err
	}
	f.Category = Category(category)
	if f.Removed {
		return File{}, ErrGone
	}
	return f, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]File, error) {
	const query = `
SELECT id, user_id, file_name, file_type, file_size, category, description, uploaded_at
FROM files
WHERE user_id = $1 AND removed = FALSE
ORDER BY uploaded_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []File{}
	for rows.Next() {
		var f File
		var category string
		if err := rows.Scan(
			&f.ID,
			&f.UserID,
			&f.FileName,
			&f.FileType,
			&f.FileSize,
			&category,
			&f.Description,
			&f.UploadedAt,
		); err != nil {
			return nil, err
		}
		f.Category = Category(category)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Delete hard-deletes a file and everything that points at it, all in
// one transaction so readers never observe a dangling reference:
//
//  1. lock the row and verify ownership
//  2. mark it removed so delivery paths answer 410 mid-flight
//  3. null post and message references
//  4. drop share grants
//  5. release the owner's ledger, floored at zero
//  6. delete the row
func (r *PGRepo) Delete(ctx context.Context, id, ownerID string) (File, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return File{}, err
	}
	defer tx.Rollback()

	var f File
	var category string
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, file_name, file_type, file_size, category, uploaded_at FROM files WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&f.ID, &f.UserID, &f.FileName, &f.FileType, &f.FileSize, &category, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, err
	}
	f.Category = Category(category)
	if f.UserID != ownerID {
		return File{}, ErrUnauthorized
	}

	if _, err := tx.ExecContext(ctx, `UPDATE files SET removed = TRUE WHERE id = $1`, id); err != nil {
		return File{}, err
	}
	if err := refs.NullifyPostRefs(ctx, tx, id); err != nil {
		return File{}, err
	}
	if err := refs.NullifyMessageRefs(ctx, tx, id); err != nil {
		return File{}, err
	}
	// Grants die with the file; the shares package only ever creates
	// rows for files that exist.
	if _, err := tx.ExecContext(ctx, `DELETE FROM public_shares WHERE file_id = $1`, id); err != nil {
		return File{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET storage_used = GREATEST(storage_used - $1, 0), updated_at = now() WHERE id = $2`,
		f.FileSize, f.UserID,
	); err != nil {
		return File{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id); err != nil {
		return File{}, err
	}

	if err := tx.Commit(); err != nil {
		return File{}, err
	}
	return f, nil
}

var _ Repo = (*PGRepo)(nil)
