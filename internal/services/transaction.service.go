package services

import (
	"context"
	"fmt"

	"echosorter/internal/database"
	"echosorter/internal/logger"

	"gorm.io/gorm"
)

// TransactionService runs a function inside one database transaction. Every
// reconciliation pass commits or rolls back as a unit; no other transaction
// ever observes a half-applied sync.
type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("transactionService"),
	}
}

// Execute runs fn within a transaction, committing on nil and rolling back on
// error. Panics roll back and come out as errors; a failed rollback after a
// panic crashes the service rather than risk committed partial state.
func (ts *TransactionService) Execute(
	ctx context.Context,
	fn func(context.Context, *gorm.DB) error,
) (err error) {
	log := ts.log.Function("Execute")

	tx := ts.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("panic during transaction: %v", r)
			log.Er("panic during transaction, rolling back", panicErr)

			if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
				log.Er("CRITICAL: failed to rollback after panic", rollbackErr, "panic", r)
				panic(fmt.Sprintf(
					"transaction rollback failed: %v (original panic: %v)",
					rollbackErr, r,
				))
			}

			err = panicErr
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
			log.Er("CRITICAL: failed to rollback after function error", rollbackErr,
				"originalError", err)
			return log.Error("transaction rollback failed",
				"rollbackError", rollbackErr, "originalError", err)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return log.Err("failed to commit transaction", err)
	}

	return nil
}
