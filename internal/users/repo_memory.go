package users

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQuotaExceeded is returned by Reserve when a reservation would push
// the owner over their storage ceiling.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// MemoryRepo is an in-memory implementation of Repo. It also carries the
// in-memory storage ledger used by the memory file repo: Reserve and
// Release perform the same check-then-mutate sequence the SQL
// transaction performs against the users row.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[user.ID]
	if ok {
		existing.Email = user.Email
		existing.DisplayName = user.DisplayName
		existing.UpdatedAt = time.Now().UTC()
		r.data[user.ID] = existing
		return nil
	}
	if user.StorageQuota <= 0 {
		user.StorageQuota = DefaultStorageQuota
	}
	if user.Role == "" {
		user.Role = "user"
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.data[user.ID] = user
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.data[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// Reserve atomically adds bytes to the owner's used counter, failing with
// ErrQuotaExceeded when the ceiling would be crossed.
func (r *MemoryRepo) Reserve(userID string, bytes int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	if user.StorageUsed+bytes > user.StorageQuota {
		return ErrQuotaExceeded
	}
	user.StorageUsed += bytes
	r.data[userID] = user
	return nil
}

// Release subtracts bytes from the owner's used counter, floored at zero.
func (r *MemoryRepo) Release(userID string, bytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.data[userID]
	if !ok {
		return
	}
	user.StorageUsed -= bytes
	if user.StorageUsed < 0 {
		user.StorageUsed = 0
	}
	r.data[userID] = user
}

var _ Repo = (*MemoryRepo)(nil)
