package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/shopspring/decimal"
)

// uncategorized labels expenses recorded without a category.
const uncategorized = "Uncategorized"

// TransactionRangeReader is the slice of the transaction repository the aggregator needs.
type TransactionRangeReader interface {
	ListTransactionsInRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error)
}

// Aggregator folds a user's transactions for a period into a Summary.
type Aggregator struct {
	txs TransactionRangeReader
}

// NewAggregator creates an aggregator reading from txs.
func NewAggregator(txs TransactionRangeReader) *Aggregator {
	return &Aggregator{txs: txs}
}

// Aggregate summarizes transactions with OccurredAt in [start, end].
// It returns a nil summary when income and expense are both zero.
func (a *Aggregator) Aggregate(ctx context.Context, userID string, start, end time.Time) (*domain.Summary, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("Aggregate: %w: end %s before start %s",
			domain.ErrInvalidPeriod, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	txs, err := a.txs.ListTransactionsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("Aggregate: listing transactions: %w", err)
	}

	return Summarize(txs, start, end), nil
}

// Summarize is the pure part of Aggregate. Amounts accumulate in minor units
// and are converted to major units only when the summary is built.
func Summarize(txs []*domain.Transaction, start, end time.Time) *domain.Summary {
	var income, expense int64
	byCategory := make(map[string]int64)

	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionTypeIncome:
			income += tx.AmountMinor
		case domain.TransactionTypeExpense:
			expense += tx.AmountMinor
			name := strings.TrimSpace(tx.Category)
			if name == "" {
				name = uncategorized
			}
			byCategory[name] += tx.AmountMinor
		}
	}

	if income == 0 && expense == 0 {
		return nil
	}

	balance := income - expense

	return &domain.Summary{
		PeriodLabel:      PeriodLabel(start, end),
		PeriodStart:      start,
		PeriodEnd:        end,
		TotalIncome:      domain.ToMajorUnits(income),
		TotalExpense:     domain.ToMajorUnits(expense),
		AvailableBalance: domain.ToMajorUnits(balance),
		SavingsRate:      savingsRate(balance, income),
		TransactionCount: len(txs),
		Categories:       breakdown(byCategory, expense),
	}
}

// breakdown sorts categories by amount descending, then name ascending.
func breakdown(byCategory map[string]int64, totalExpense int64) []domain.CategoryBreakdown {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ai, aj := byCategory[names[i]], byCategory[names[j]]
		if ai != aj {
			return ai > aj
		}
		return names[i] < names[j]
	})

	result := make([]domain.CategoryBreakdown, 0, len(names))
	for _, name := range names {
		amount := byCategory[name]
		result = append(result, domain.CategoryBreakdown{
			Name:       name,
			Amount:     domain.ToMajorUnits(amount),
			Percentage: percentage(amount, totalExpense),
		})
	}
	return result
}

// percentage is round(100*part/total), half away from zero; 0 when total is 0.
func percentage(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).Round(0).IntPart())
}

// savingsRate is round2(100*balance/income); 0 when income <= 0.
func savingsRate(balance, income int64) float64 {
	if income <= 0 {
		return 0
	}
	rate, _ := decimal.NewFromInt(balance).Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(income)).Round(2).Float64()
	return rate
}
