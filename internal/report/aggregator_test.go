package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/infra/inmemory"
	"github.com/dvloznov/fingenius/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	janStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	janEnd   = time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC)
)

func tx(id, userID string, typ domain.TransactionType, category string, cents int64, at time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:          id,
		UserID:      userID,
		Title:       id,
		AmountMinor: cents,
		Type:        typ,
		Category:    category,
		OccurredAt:  at,
		CreatedAt:   at,
	}
}

func TestSummarize_IncomeAndCategories(t *testing.T) {
	txs := []*domain.Transaction{
		tx("salary", "u1", domain.TransactionTypeIncome, "salary", 100000, janStart.AddDate(0, 0, 1)),
		tx("food", "u1", domain.TransactionTypeExpense, "food", 30000, janStart.AddDate(0, 0, 2)),
		tx("rent", "u1", domain.TransactionTypeExpense, "rent", 50000, janStart.AddDate(0, 0, 3)),
	}

	got := report.Summarize(txs, janStart, janEnd)
	require.NotNil(t, got)

	assert.Equal(t, 1000.0, got.TotalIncome)
	assert.Equal(t, 800.0, got.TotalExpense)
	assert.Equal(t, 200.0, got.AvailableBalance)
	assert.Equal(t, 20.0, got.SavingsRate)
	assert.Equal(t, 3, got.TransactionCount)
	assert.Equal(t, []domain.CategoryBreakdown{
		{Name: "rent", Amount: 500, Percentage: 63},
		{Name: "food", Amount: 300, Percentage: 38},
	}, got.Categories)
	assert.Equal(t, "January 1 – 31, 2025", got.PeriodLabel)
	assert.True(t, got.PeriodStart.Equal(janStart))
	assert.True(t, got.PeriodEnd.Equal(janEnd))
}

func TestSummarize_NoActivity(t *testing.T) {
	assert.Nil(t, report.Summarize(nil, janStart, janEnd))

	zero := []*domain.Transaction{tx("z", "u1", domain.TransactionTypeExpense, "food", 0, janStart)}
	assert.Nil(t, report.Summarize(zero, janStart, janEnd))
}

func TestSummarize_ExpensesOnly(t *testing.T) {
	txs := []*domain.Transaction{
		tx("a", "u1", domain.TransactionTypeExpense, "travel", 1000, janStart),
		tx("b", "u1", domain.TransactionTypeExpense, "books", 1000, janStart),
		tx("c", "u1", domain.TransactionTypeExpense, "", 1000, janStart),
	}

	got := report.Summarize(txs, janStart, janEnd)
	require.NotNil(t, got)

	assert.Equal(t, 0.0, got.SavingsRate)
	assert.Equal(t, -30.0, got.AvailableBalance)
	names := []string{got.Categories[0].Name, got.Categories[1].Name, got.Categories[2].Name}
	assert.Equal(t, []string{"Uncategorized", "books", "travel"}, names)
	for _, c := range got.Categories {
		assert.Equal(t, 33, c.Percentage)
	}
}

func TestSummarize_NegativeSavingsRate(t *testing.T) {
	txs := []*domain.Transaction{
		tx("in", "u1", domain.TransactionTypeIncome, "", 30000, janStart),
		tx("out", "u1", domain.TransactionTypeExpense, "rent", 40000, janStart),
	}

	got := report.Summarize(txs, janStart, janEnd)
	require.NotNil(t, got)
	assert.Equal(t, -33.33, got.SavingsRate)
}

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	require.NoError(t, store.InsertTransactions(ctx, []*domain.Transaction{
		tx("first-instant", "u1", domain.TransactionTypeIncome, "", 10000, janStart),
		tx("last-instant", "u1", domain.TransactionTypeExpense, "food", 2500, janEnd),
		tx("before", "u1", domain.TransactionTypeExpense, "food", 99900, janStart.Add(-time.Second)),
		tx("after", "u1", domain.TransactionTypeExpense, "food", 99900, janEnd.Add(time.Nanosecond)),
		tx("other-user", "u2", domain.TransactionTypeExpense, "food", 99900, janStart.AddDate(0, 0, 5)),
	}))

	agg := report.NewAggregator(store)

	got, err := agg.Aggregate(ctx, "u1", janStart, janEnd)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 100.0, got.TotalIncome)
	assert.Equal(t, 25.0, got.TotalExpense)
	assert.Equal(t, 2, got.TransactionCount)

	empty, err := agg.Aggregate(ctx, "nobody", janStart, janEnd)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestAggregator_InvalidPeriod(t *testing.T) {
	agg := report.NewAggregator(inmemory.NewStore())
	_, err := agg.Aggregate(context.Background(), "u1", janEnd, janStart)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{"same month", janStart, janEnd, "January 1 – 31, 2025"},
		{"across months", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), "January 15 – February 14, 2025"},
		{"across years", time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), "December 15, 2024 – January 14, 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, report.PeriodLabel(tt.start, tt.end))
		})
	}
}

func TestPreviousMonth(t *testing.T) {
	start, end := report.PreviousMonth(time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 999999999, time.UTC), end)

	start, end = report.PreviousMonth(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC), end)

	assert.Equal(t, "Monthly Report - December 2024", report.MonthlyTitle(start))
}
