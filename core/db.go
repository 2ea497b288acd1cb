package core

import (
	"context"
	"time"
)

// Transactor runs units of work atomically.
type Transactor interface {
	// InTx runs fn within a single transaction, committed when fn returns nil and rolled back otherwise.
	// Repositories called with the ctx handed to fn take part in that transaction.
	// Nested calls join the outer transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenBlocklist keeps track of revoked auth tokens until they expire.
type TokenBlocklist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
