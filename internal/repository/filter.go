// internal/repository/filter.go
package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"txledger/internal/domain"
)

// Predicate is a single SQL condition using '?' placeholders.
type Predicate struct {
	Expr string
	Args []interface{}
}

// OwnedBy restricts rows to those belonging to owner.
func OwnedBy(owner uuid.UUID) Predicate {
	return Predicate{Expr: "user_id = ?", Args: []interface{}{owner}}
}

// TypeIs restricts rows to one transaction type.
func TypeIs(t domain.TransactionType) Predicate {
	return Predicate{Expr: "type = ?", Args: []interface{}{string(t)}}
}

// OccurredFrom keeps rows whose business timestamp is at or after from.
func OccurredFrom(from time.Time) Predicate {
	return Predicate{Expr: "occurred_at >= ?", Args: []interface{}{from.UTC()}}
}

// OccurredUntil keeps rows whose business timestamp is at or before until.
func OccurredUntil(until time.Time) Predicate {
	return Predicate{Expr: "occurred_at <= ?", Args: []interface{}{until.UTC()}}
}

// AmountAtLeast keeps rows with amount >= lo.
func AmountAtLeast(lo decimal.Decimal) Predicate {
	return Predicate{Expr: "amount >= ?", Args: []interface{}{lo}}
}

// AmountAtMost keeps rows with amount <= hi.
func AmountAtMost(hi decimal.Decimal) Predicate {
	return Predicate{Expr: "amount <= ?", Args: []interface{}{hi}}
}

// Conjunction is a list of predicates joined with AND.
type Conjunction []Predicate

// Where renders the conjunction as a PostgreSQL WHERE clause with $n
// placeholders. An empty conjunction renders as an empty string.
func (c Conjunction) Where() (string, []interface{}) {
	if len(c) == 0 {
		return "", nil
	}
	exprs := make([]string, 0, len(c))
	var args []interface{}
	for _, p := range c {
		exprs = append(exprs, p.Expr)
		args = append(args, p.Args...)
	}
	return sqlx.Rebind(sqlx.DOLLAR, "WHERE "+strings.Join(exprs, " AND ")), args
}

// TransactionPredicates composes the owner scope with every filter that is set.
func TransactionPredicates(owner uuid.UUID, f domain.TransactionFilter) Conjunction {
	c := Conjunction{OwnedBy(owner)}
	if f.Type != nil {
		c = append(c, TypeIs(*f.Type))
	}
	if f.StartDate != nil {
		c = append(c, OccurredFrom(*f.StartDate))
	}
	if f.EndDate != nil {
		c = append(c, OccurredUntil(*f.EndDate))
	}
	if f.MinAmount != nil {
		c = append(c, AmountAtLeast(*f.MinAmount))
	}
	if f.MaxAmount != nil {
		c = append(c, AmountAtMost(*f.MaxAmount))
	}
	return c
}
