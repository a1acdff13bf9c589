// internal/domain/transaction.go
package domain

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations

	"txledger/internal/util"
)

// TransactionType defines the direction of a ledger entry.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Amount and description limits, matching NUMERIC(10, 2) and VARCHAR(500).
const (
	AmountScale          = 2
	MaxDescriptionLength = 500
)

// maxAmount is the smallest value that no longer fits NUMERIC(10, 2).
var maxAmount = decimal.New(1, 8)

// Amounts outside these bounds are rejected before any arithmetic, since
// comparing or rescaling them allocates in proportion to the exponent.
const (
	minAmountExponent        = -(AmountScale + 8)
	maxAmountExponent        = 10
	maxAmountCoefficientBits = 128
)

// AmountInRange reports whether d is small enough in scale and magnitude
// to be compared safely.
func AmountInRange(d decimal.Decimal) bool {
	if exp := d.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return false
	}
	return d.Coefficient().BitLen() <= maxAmountCoefficientBits
}

// ParseTransactionType accepts exactly "credit" or "debit".
func ParseTransactionType(s string) (TransactionType, bool) {
	switch t := TransactionType(s); t {
	case TransactionTypeCredit, TransactionTypeDebit:
		return t, true
	}
	return "", false
}

// Transaction represents a ledger entry owned by a single user.
type Transaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`         // Owner, cascade-deleted with the user
	Amount      decimal.Decimal `db:"amount" json:"amount"`           // Always positive, NUMERIC(10, 2) in DB
	Type        TransactionType `db:"type" json:"type"`               // credit or debit carries the sign
	Description string          `db:"description" json:"description"` // 1..500 characters
	OccurredAt  time.Time       `db:"occurred_at" json:"timestamp"`   // Business time supplied by the caller
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`   // Timestamp of record creation
}

// NewTransactionInput is the caller-supplied part of a transaction.
type NewTransactionInput struct {
	Amount      decimal.Decimal
	Type        TransactionType
	Description string
	Timestamp   time.Time
}

// Validate checks every field and reports all problems at once.
func (in NewTransactionInput) Validate() error {
	verr := util.NewValidationError()
	if msg := ValidateAmount(in.Amount); msg != "" {
		verr.Add("amount", msg)
	}
	if _, ok := ParseTransactionType(string(in.Type)); !ok {
		verr.Add("type", "must be one of: credit, debit")
	}
	if msg := ValidateDescription(in.Description); msg != "" {
		verr.Add("description", msg)
	}
	if in.Timestamp.IsZero() {
		verr.Add("timestamp", "is required")
	}
	return verr.OrNil()
}

// ValidateAmount enforces 0 < amount < 10^8 with at most two fractional digits.
func ValidateAmount(amount decimal.Decimal) string {
	switch {
	case !AmountInRange(amount):
		return "is out of range"
	case !amount.IsPositive():
		return "must be greater than 0"
	case !amount.Equal(amount.Truncate(AmountScale)):
		return "must have at most 2 decimal places"
	case amount.GreaterThanOrEqual(maxAmount):
		return "must have at most 10 digits in total"
	}
	return ""
}

// ValidateDescription enforces a length of 1..500 characters.
func ValidateDescription(description string) string {
	n := utf8.RuneCountInString(description)
	switch {
	case n == 0:
		return "must not be empty"
	case n > MaxDescriptionLength:
		return "must be at most 500 characters"
	}
	return ""
}

// NewTransaction creates a new Transaction for owner from validated input.
// The business timestamp is kept as supplied, normalized to UTC.
func NewTransaction(owner uuid.UUID, in NewTransactionInput) *Transaction {
	txType, _ := ParseTransactionType(string(in.Type))
	return &Transaction{
		ID:          uuid.New(),
		UserID:      owner,
		Amount:      in.Amount,
		Type:        txType,
		Description: in.Description,
		OccurredAt:  in.Timestamp.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}

// TransactionFilter holds the optional list filters. Nil means "not set";
// both range ends are inclusive.
type TransactionFilter struct {
	Type      *TransactionType
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// Validate rejects negative amounts and inverted ranges.
func (f TransactionFilter) Validate() error {
	verr := util.NewValidationError()
	if f.Type != nil {
		if _, ok := ParseTransactionType(string(*f.Type)); !ok {
			verr.Add("type", "must be one of: credit, debit")
		}
	}
	if f.MinAmount != nil && !AmountInRange(*f.MinAmount) {
		verr.Add("min_amount", "is out of range")
	} else if f.MinAmount != nil && f.MinAmount.IsNegative() {
		verr.Add("min_amount", "must be greater than or equal to 0")
	}
	if f.MaxAmount != nil && !AmountInRange(*f.MaxAmount) {
		verr.Add("max_amount", "is out of range")
	} else if f.MaxAmount != nil && f.MaxAmount.IsNegative() {
		verr.Add("max_amount", "must be greater than or equal to 0")
	}
	if verr.HasErrors() {
		return verr
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		verr.Add("min_amount", "must not exceed max_amount")
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		verr.Add("start_date", "must not be after end_date")
	}
	return verr.OrNil()
}

// PageRequest is a 1-indexed page window.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Validate checks the page is at least 1 and the limit within 1..maxLimit.
func (p PageRequest) Validate(maxLimit int) error {
	verr := util.NewValidationError()
	if p.Page < 1 {
		verr.Add("page", "must be greater than or equal to 1")
	}
	if p.Limit < 1 || p.Limit > maxLimit {
		verr.Add("limit", "must be between 1 and "+strconv.Itoa(maxLimit))
	}
	return verr.OrNil()
}

// TransactionPage is one page of a filtered listing.
type TransactionPage struct {
	Items []Transaction
	Total int64
	Page  int
	Size  int
	Pages int
}

// NewTransactionPage computes Pages as ceil(total/size).
func NewTransactionPage(items []Transaction, total int64, page PageRequest) *TransactionPage {
	if items == nil {
		items = []Transaction{}
	}
	pages := 0
	if page.Limit > 0 {
		pages = int((total + int64(page.Limit) - 1) / int64(page.Limit))
	}
	return &TransactionPage{
		Items: items,
		Total: total,
		Page:  page.Page,
		Size:  page.Limit,
		Pages: pages,
	}
}

