// internal/domain/summary.go
package domain

import "github.com/shopspring/decimal"

// Summary aggregates a user's ledger.
type Summary struct {
	TotalCredits     decimal.Decimal
	TotalDebits      decimal.Decimal
	CurrentBalance   decimal.Decimal
	TransactionCount int64
	AvgTransaction   decimal.Decimal
}

// NewSummary derives the balance and mean amount from raw aggregates.
// totalAmount is the sum of all amounts regardless of type. The mean is
// rounded to two places, half away from zero (decimal.DivRound), and is
// zero for an empty ledger.
func NewSummary(totalCredits, totalDebits, totalAmount decimal.Decimal, count int64) *Summary {
	avg := decimal.Zero
	if count > 0 {
		avg = totalAmount.DivRound(decimal.NewFromInt(count), AmountScale)
	}
	return &Summary{
		TotalCredits:     totalCredits,
		TotalDebits:      totalDebits,
		CurrentBalance:   totalCredits.Sub(totalDebits),
		TransactionCount: count,
		AvgTransaction:   avg,
	}
}
