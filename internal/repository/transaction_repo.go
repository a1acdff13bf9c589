// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"txledger/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations.
// Every method is scoped to a single owner.
type TransactionRepository interface {
	// CreateTransaction adds a new transaction record using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, tx *domain.Transaction) error
	// FindByOwner returns one page of owner's transactions matching filter,
	// newest first, together with the total number of matches.
	FindByOwner(ctx context.Context, q DBExecutor, owner uuid.UUID, filter domain.TransactionFilter, page domain.PageRequest) ([]domain.Transaction, int64, error)
	// FindOwned retrieves a transaction by id if owner owns it, or util.ErrNotFound.
	FindOwned(ctx context.Context, q DBExecutor, id, owner uuid.UUID) (*domain.Transaction, error)
	// DeleteTransaction hard-deletes an owned transaction, or returns util.ErrNotFound.
	DeleteTransaction(ctx context.Context, q DBExecutor, id, owner uuid.UUID) error
	// Summarize aggregates all of owner's transactions.
	Summarize(ctx context.Context, q DBExecutor, owner uuid.UUID) (*domain.Summary, error)
}
