package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"cutroom/internal/domain/repositories"
)

// AdvisoryLockManager serializes mutations with transaction-scoped advisory locks.
// Locks are released by Postgres at commit or rollback.
type AdvisoryLockManager struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLockManager creates a lock manager backed by pg_advisory_xact_lock
func NewAdvisoryLockManager(pool *pgxpool.Pool) repositories.LockManager {
	return &AdvisoryLockManager{pool: pool}
}

// Lock blocks until the advisory lock for key is held by the context's transaction
func (m *AdvisoryLockManager) Lock(ctx context.Context, key string) (func(), error) {
	if repositories.GetTx(ctx) == nil {
		return nil, errors.New("advisory lock requires a transaction")
	}

	executor := GetExecutor(ctx, m.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return func() {}, nil
}
