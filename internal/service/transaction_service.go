// internal/service/transaction_service.go
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"txledger/internal/domain"
	"txledger/internal/repository"
	"txledger/pkg/db"
)

// TransactionService defines the interface for ledger business logic.
// Every operation is scoped to the owning user.
type TransactionService interface {
	Create(ctx context.Context, owner uuid.UUID, in domain.NewTransactionInput) (*domain.Transaction, error)
	List(ctx context.Context, owner uuid.UUID, filter domain.TransactionFilter, page domain.PageRequest) (*domain.TransactionPage, error)
	Get(ctx context.Context, id, owner uuid.UUID) (*domain.Transaction, error)
	Delete(ctx context.Context, id, owner uuid.UUID) error
	Summary(ctx context.Context, owner uuid.UUID) (*domain.Summary, error)
}

type transactionService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	transactionRepo repository.TransactionRepository
	maxPageSize     int
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewTransactionService creates a new instance of TransactionService.
func NewTransactionService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	transactionRepo repository.TransactionRepository,
	maxPageSize int,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) TransactionService {
	return &transactionService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		transactionRepo: transactionRepo,
		maxPageSize:     maxPageSize,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// Create records a new ledger entry for owner.
func (s *transactionService) Create(ctx context.Context, owner uuid.UUID, in domain.NewTransactionInput) (*domain.Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create transaction: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create transaction: transaction controller does not implement DBExecutor")
	}

	transaction := domain.NewTransaction(owner, in)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create transaction: failed to commit transaction: %w", err)
	}

	return transaction, nil
}

// List returns one page of owner's transactions matching filter.
func (s *transactionService) List(ctx context.Context, owner uuid.UUID, filter domain.TransactionFilter, page domain.PageRequest) (*domain.TransactionPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if err := page.Validate(s.maxPageSize); err != nil {
		return nil, err
	}

	items, total, err := s.transactionRepo.FindByOwner(ctx, s.dbExecutor, owner, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return domain.NewTransactionPage(items, total, page), nil
}

// Get returns one owned transaction; foreign and missing ids both yield ErrNotFound.
func (s *transactionService) Get(ctx context.Context, id, owner uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.FindOwned(ctx, s.dbExecutor, id, owner)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return transaction, nil
}

// Delete hard-deletes an owned transaction.
func (s *transactionService) Delete(ctx context.Context, id, owner uuid.UUID) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("delete transaction: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("delete transaction: transaction controller does not implement DBExecutor")
	}

	if _, err := s.transactionRepo.FindOwned(ctx, txExecutor, id, owner); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if err := s.transactionRepo.DeleteTransaction(ctx, txExecutor, id, owner); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("delete transaction: failed to commit transaction: %w", err)
	}
	return nil
}

// Summary aggregates owner's whole ledger.
func (s *transactionService) Summary(ctx context.Context, owner uuid.UUID) (*domain.Summary, error) {
	summary, err := s.transactionRepo.Summarize(ctx, s.dbExecutor, owner)
	if err != nil {
		return nil, fmt.Errorf("summarize transactions: %w", err)
	}
	return summary, nil
}
