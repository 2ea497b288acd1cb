package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/haven/core"
)

// MemoryBlocklist keeps revoked token IDs in memory. Used when no Redis server is configured.
type MemoryBlocklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

var _ core.TokenBlocklist = (*MemoryBlocklist)(nil)

func NewMemoryBlocklist() *MemoryBlocklist {
	return &MemoryBlocklist{revoked: make(map[string]time.Time), now: time.Now}
}

func (b *MemoryBlocklist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for id, exp := range b.revoked {
		if !exp.After(now) {
			delete(b.revoked, id)
		}
	}
	if until.After(now) {
		b.revoked[tokenID] = until
	}
	return nil
}

func (b *MemoryBlocklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.revoked[tokenID]
	return ok && exp.After(b.now()), nil
}
