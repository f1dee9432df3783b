package files

import (
	"context"
	"errors"
	"sort"
	"sync"

	"mediavault-backend/internal/users"
)

// MemoryRepo is an in-memory implementation of Repo. The owners repo
// doubles as the storage ledger; deletion cleanup (reference nulling,
// share teardown) is injected as hooks so this package does not depend
// on the packages that point at files.
type MemoryRepo struct {
	mu       sync.Mutex
	owners   *users.MemoryRepo
	data     map[string]File
	cleanups []func(ctx context.Context, fileID string) error
}

func NewMemoryRepo(owners *users.MemoryRepo) *MemoryRepo {
	return &MemoryRepo{
		owners: owners,
		data:   make(map[string]File),
	}
}

// AddCleanup registers a hook run during Delete, in registration order,
// before the ledger release. Hooks mirror the SQL cascade: null the
// post and message references, then drop share grants.
func (r *MemoryRepo) AddCleanup(fn func(ctx context.Context, fileID string) error) {
	r.cleanups = append(r.cleanups, fn)
}

func (r *MemoryRepo) Create(ctx context.Context, f File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.owners.Reserve(f.UserID, f.FileSize); err != nil {
		if errors.Is(err, users.ErrQuotaExceeded) {
			return ErrQuotaExceeded
		}
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[f.ID] = f
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.data[id]
	if !ok {
		return File{}, ErrNotFound
	}
	if f.Removed {
		return File{}, ErrGone
	}
	return f, nil
}

func (r *MemoryRepo) GetMeta(ctx context.Context, id string) (File, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return File{}, err
	}
	f.Data = nil
	f.Thumbnail = nil
	return f, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []File{}
	for _, f := range r.data {
		if f.UserID != userID || f.Removed {
			continue
		}
		f.Data = nil
		f.Thumbnail = nil
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id, ownerID string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}

	r.mu.Lock()
	f, ok := r.data[id]
	if !ok {
		r.mu.Unlock()
		return File{}, ErrNotFound
	}
	// A concurrent delete already claimed this file; only the claimant
	// may run the cleanup hooks and release the ledger.
	if f.Removed {
		r.mu.Unlock()
		return File{}, ErrNotFound
	}
	if f.UserID != ownerID {
		r.mu.Unlock()
		return File{}, ErrUnauthorized
	}
	f.Removed = true
	r.data[id] = f
	r.mu.Unlock()

	for _, fn := range r.cleanups {
		if err := fn(ctx, id); err != nil {
			return File{}, err
		}
	}
	r.owners.Release(f.UserID, f.FileSize)

	r.mu.Lock()
	delete(r.data, id)
	r.mu.Unlock()

	f.Data = nil
	f.Thumbnail = nil
	return f, nil
}

var _ Repo = (*MemoryRepo)(nil)
