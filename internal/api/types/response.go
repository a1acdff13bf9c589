// internal/api/types/response.go
package types

import (
	"time"

	"github.com/google/uuid"

	"txledger/internal/domain"
)

// PaginatedResponse defines a generic structure for paginated API responses.
// T represents the type of data contained in the 'Items' slice.
type PaginatedResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Detail string            `json:"detail,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse maps a domain user, dropping the password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// NewTokenResponse maps a domain token pair.
func NewTokenResponse(p *domain.TokenPair) TokenResponse {
	return TokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken, TokenType: p.TokenType}
}

// TransactionResponse renders money as a string with two decimals.
type TransactionResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Amount      string    `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTransactionResponse maps a domain transaction.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount.StringFixed(domain.AmountScale),
		Type:        string(t.Type),
		Description: t.Description,
		Timestamp:   t.OccurredAt.UTC(),
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

// NewTransactionPageResponse maps a page of transactions.
func NewTransactionPageResponse(p *domain.TransactionPage) PaginatedResponse[TransactionResponse] {
	items := make([]TransactionResponse, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, NewTransactionResponse(&p.Items[i]))
	}
	return PaginatedResponse[TransactionResponse]{
		Items: items,
		Total: p.Total,
		Page:  p.Page,
		Size:  p.Size,
		Pages: p.Pages,
	}
}

// SummaryResponse is the ledger aggregate.
type SummaryResponse struct {
	TotalCredits     string `json:"total_credits"`
	TotalDebits      string `json:"total_debits"`
	CurrentBalance   string `json:"current_balance"`
	TransactionCount int64  `json:"transaction_count"`
	AvgTransaction   string `json:"avg_transaction"`
}

// NewSummaryResponse maps a domain summary.
func NewSummaryResponse(s *domain.Summary) SummaryResponse {
	return SummaryResponse{
		TotalCredits:     s.TotalCredits.StringFixed(domain.AmountScale),
		TotalDebits:      s.TotalDebits.StringFixed(domain.AmountScale),
		CurrentBalance:   s.CurrentBalance.StringFixed(domain.AmountScale),
		TransactionCount: s.TransactionCount,
		AvgTransaction:   s.AvgTransaction.StringFixed(domain.AmountScale),
	}
}
