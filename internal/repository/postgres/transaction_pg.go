// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"txledger/internal/domain"
	"txledger/internal/repository"
	"txledger/internal/util"
)

const transactionColumns = `id, user_id, amount, type, description, occurred_at, created_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, tx *domain.Transaction) error {
	query := `INSERT INTO transactions (id, user_id, amount, type, description, occurred_at, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`

	err := q.QueryRowContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Amount,
		tx.Type,
		tx.Description,
		tx.OccurredAt,
		tx.CreatedAt,
	).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindByOwner retrieves a filtered, paginated list of owner's transactions.
// It performs two queries: one for the total count and one for the page.
func (r *TransactionRepository) FindByOwner(ctx context.Context, q repository.DBExecutor, owner uuid.UUID, filter domain.TransactionFilter, page domain.PageRequest) ([]domain.Transaction, int64, error) {
	where, args := repository.TransactionPredicates(owner, filter).Where()

	var total int64
	countQuery := `SELECT COUNT(*) FROM transactions ` + where
	if err := q.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions for user %s: %w", owner, err)
	}

	transactions := []domain.Transaction{}
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM transactions %s
		ORDER BY occurred_at DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, transactionColumns, where, n+1, n+2)
	pageArgs := append(append([]interface{}{}, args...), page.Limit, page.Offset())
	if err := q.SelectContext(ctx, &transactions, query, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for user %s: %w", owner, err)
	}

	return transactions, total, nil
}

// FindOwned retrieves a transaction by id, scoped to owner.
func (r *TransactionRepository) FindOwned(ctx context.Context, q repository.DBExecutor, id, owner uuid.UUID) (*domain.Transaction, error) {
	var tx domain.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	err := q.GetContext(ctx, &tx, query, id, owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return &tx, nil
}

// DeleteTransaction removes an owned transaction.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, q repository.DBExecutor, id, owner uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`
	result, err := q.ExecContext(ctx, query, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting transaction %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

type summaryRow struct {
	TotalCredits decimal.Decimal `db:"total_credits"`
	TotalDebits  decimal.Decimal `db:"total_debits"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	Count        int64           `db:"transaction_count"`
}

// Summarize aggregates owner's ledger in a single query.
func (r *TransactionRepository) Summarize(ctx context.Context, q repository.DBExecutor, owner uuid.UUID) (*domain.Summary, error) {
	var row summaryRow
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE 0 END), 0) AS total_credits,
			COALESCE(SUM(CASE WHEN type = 'debit' THEN amount ELSE 0 END), 0) AS total_debits,
			COALESCE(SUM(amount), 0) AS total_amount,
			COUNT(*) AS transaction_count
		FROM transactions
		WHERE user_id = $1`
	if err := q.GetContext(ctx, &row, query, owner); err != nil {
		return nil, fmt.Errorf("failed to summarize transactions for user %s: %w", owner, err)
	}
	return domain.NewSummary(row.TotalCredits, row.TotalDebits, row.TotalAmount, row.Count), nil
}
