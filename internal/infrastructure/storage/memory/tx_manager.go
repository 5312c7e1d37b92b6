package memory

import (
	"context"

	"stockroom/internal/core/tx"
)

// Compile-time check that TxManager implements tx.Manager.
var _ tx.Manager = (*TxManager)(nil)

// TxManager is a pass-through transaction manager. The map-backed stores
// apply each operation atomically on their own, so fn runs without any
// surrounding transaction.
type TxManager struct{}

// NewTxManager creates a pass-through transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// RunInTransaction executes fn directly.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
