package services

import (
	"context"
	"subsidy/internal/database"
	"subsidy/internal/logger"

	"gorm.io/gorm"
)

type transactionKey struct{}

// TransactionService runs a unit of work inside a single database
// transaction. Repositories pick the transaction up from the context via
// GetTransaction, so callers compose repository calls without threading
// *gorm.DB handles around.
type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("TransactionService"),
	}
}

func (s *TransactionService) Execute(
	ctx context.Context,
	fn func(txCtx context.Context) error,
) error {
	log := s.log.Function("Execute")

	err := s.db.SQLWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, transactionKey{}, tx)
		return fn(txCtx)
	})
	if err != nil {
		return log.Err("transaction failed", err)
	}

	return nil
}

// GetTransaction returns the transaction bound to the context, if any.
func GetTransaction(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(transactionKey{}).(*gorm.DB)
	return tx, ok
}
