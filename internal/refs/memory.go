package refs

import (
	"context"
	"sync"
)

// MemoryRefs is an in-memory table of entities holding nullable file
// pointers, used when no database is configured.
type MemoryRefs struct {
	mu   sync.Mutex
	data map[string]string // entity id -> file id
}

func NewMemoryRefs() *MemoryRefs {
	return &MemoryRefs{data: make(map[string]string)}
}

// Attach records that an entity references a file.
func (r *MemoryRefs) Attach(entityID, fileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[entityID] = fileID
}

// FileFor returns the file an entity points at, if any.
func (r *MemoryRefs) FileFor(entityID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fileID, ok := r.data[entityID]
	return fileID, ok && fileID != ""
}

// NullifyFileReferences clears every entity pointing at the file.
func (r *MemoryRefs) NullifyFileReferences(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, fid := range r.data {
		if fid == fileID {
			r.data[id] = ""
		}
	}
	return nil
}
