package repositories

import "context"

// LockManager serializes mutations that share a key.
// Lock must be called inside TransactionManager.ExecTx; implementations backed by
// transaction-scoped locks release on commit/rollback and return a no-op release.
type LockManager interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// ProjectLockKey scopes folder-tree mutations to one project
func ProjectLockKey(projectID string) string {
	return "project:" + projectID
}

// AssetLockKey scopes version-ledger mutations to one asset
func AssetLockKey(assetID string) string {
	return "asset:" + assetID
}
