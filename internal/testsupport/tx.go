package testsupport

import (
	"context"
	"sync"

	"cutroom/internal/domain/repositories"
)

// TxManager runs fn directly; there is no rollback in memory
type TxManager struct{}

func (TxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// KeyedLocks is a LockManager holding one mutex per key
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedLocks creates an empty lock table
func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyedLocks) Lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	var once sync.Once
	return func() { once.Do(l.Unlock) }, nil
}
