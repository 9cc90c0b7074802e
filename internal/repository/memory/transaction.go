package memory

import (
	"context"

	"folio/internal/domain/repositories"
)

// TxManager satisfies TransactionManager for the in-memory
// repositories, which are individually atomic already. The callback
// runs directly; there is nothing to roll back.
type TxManager struct{}

// NewTxManager creates a pass-through transaction manager.
func NewTxManager() *TxManager { return &TxManager{} }

var _ repositories.TransactionManager = (*TxManager)(nil)

func (m *TxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
