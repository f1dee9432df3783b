package shares

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo. The single mutex
// stands in for the row lock: access checks and counter moves happen
// under it.
type MemoryRepo struct {
	mu      sync.Mutex
	data    map[string]ShareGrant
	byToken map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:    make(map[string]ShareGrant),
		byToken: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, g ShareGrant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[g.ID] = g
	r.byToken[g.ShareToken] = g.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (ShareGrant, error) {
	if err := ctx.Err(); err != nil {
		return ShareGrant{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.data[id]
	if !ok {
		return ShareGrant{}, ErrNotFound
	}
	return g, nil
}

func (r *MemoryRepo) GetByToken(ctx context.Context, token string) (ShareGrant, error) {
	if err := ctx.Err(); err != nil {
		return ShareGrant{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.lookupToken(token)
	if !ok {
		return ShareGrant{}, ErrNotFound
	}
	return g, nil
}

func (r *MemoryRepo) GetActiveByFile(ctx context.Context, fileID string) (ShareGrant, error) {
	if err := ctx.Err(); err != nil {
		return ShareGrant{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var found ShareGrant
	ok := false
	for _, g := range r.data {
		if g.FileID != fileID || !g.Active {
			continue
		}
		if !ok || g.CreatedAt.After(found.CreatedAt) {
			found = g
			ok = true
		}
	}
	if !ok {
		return ShareGrant{}, ErrNotFound
	}
	return found, nil
}

func (r *MemoryRepo) Access(ctx context.Context, token string, now time.Time) (ShareGrant, error) {
	if err := ctx.Err(); err != nil {
		return ShareGrant{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.lookupToken(token)
	if !ok {
		return ShareGrant{}, ErrNotFound
	}
	if !g.Active {
		return ShareGrant{}, ErrShareInactive
	}
	if g.Expired(now) {
		g.Active = false
		r.data[g.ID] = g
		return ShareGrant{}, ErrShareExpired
	}
	if g.Exhausted() {
		g.Active = false
		r.data[g.ID] = g
		return ShareGrant{}, ErrShareLimitReached
	}
	g.AccessCount++
	r.data[g.ID] = g
	return g, nil
}

func (r *MemoryRepo) UpdateQR(ctx context.Context, id string, qr []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	g.QRCode = qr
	r.data[id] = g
	return nil
}

func (r *MemoryRepo) Deactivate(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.data[id]
	if !ok {
		return nil
	}
	g.Active = false
	r.data[id] = g
	return nil
}

// DeleteByFile drops every grant for a file. Wired as a file-deletion
// cleanup hook.
func (r *MemoryRepo) DeleteByFile(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, g := range r.data {
		if g.FileID == fileID {
			delete(r.byToken, g.ShareToken)
			delete(r.data, id)
		}
	}
	return nil
}

func (r *MemoryRepo) lookupToken(token string) (ShareGrant, bool) {
	id, ok := r.byToken[token]
	if !ok {
		return ShareGrant{}, false
	}
	g, ok := r.data[id]
	return g, ok
}

var _ Repo = (*MemoryRepo)(nil)
