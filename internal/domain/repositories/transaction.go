package repositories

import "context"

// TxFn is a function that runs within a transaction.
// The context it receives carries the transaction; repositories pick it up via GetTx.
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes fn within a transaction, committing if fn returns nil.
	// Nested calls join the outer transaction.
	ExecTx(ctx context.Context, fn TxFn) error
}
