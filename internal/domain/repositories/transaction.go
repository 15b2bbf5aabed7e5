package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
// Only single-store work is wrapped: DSpace calls are never part of a transaction.
type TransactionManager interface {
	// ExecTx executes fn within a transaction, committing if it returns nil
	ExecTx(ctx context.Context, fn TxFn) error
}
