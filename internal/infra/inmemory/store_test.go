package inmemory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/infra/inmemory"
	"github.com/dvloznov/fingenius/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTx(id, userID, title, category string, typ domain.TransactionType, at time.Time, recurring bool) *domain.Transaction {
	tx := &domain.Transaction{
		ID: id, UserID: userID, Title: title, Category: category, Type: typ,
		AmountMinor: 1000, OccurredAt: at, CreatedAt: at,
	}
	if recurring {
		interval := domain.IntervalMonthly
		next := at.AddDate(0, 1, 0)
		tx.IsRecurring = true
		tx.RecurringInterval = &interval
		tx.NextOccurrenceAt = &next
	}
	return tx
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()

	require.NoError(t, store.CreateUser(ctx, &domain.User{ID: "u1", Email: "Ada@Example.com"}))
	assert.ErrorIs(t, store.CreateUser(ctx, &domain.User{ID: "u1"}), domain.ErrAlreadyExists)
	assert.Error(t, store.CreateUser(ctx, &domain.User{}))

	u, err := store.FindUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	u.Email = "changed"
	again, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada@Example.com", again.Email, "returned users are copies")

	_, err = store.GetUser(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListTransactions(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()

	require.NoError(t, store.InsertTransactions(ctx, []*domain.Transaction{
		newTx("t1", "u1", "Salary", "income", domain.TransactionTypeIncome, base, true),
		newTx("t2", "u1", "Groceries", "food", domain.TransactionTypeExpense, base.AddDate(0, 0, 1), false),
		newTx("t3", "u1", "Dinner", "Food", domain.TransactionTypeExpense, base.AddDate(0, 0, 2), false),
		newTx("t4", "u2", "Groceries", "food", domain.TransactionTypeExpense, base, false),
	}))

	yes, no := true, false
	tests := []struct {
		name   string
		filter repository.TransactionFilter
		want   []string
	}{
		{"all newest first", repository.TransactionFilter{}, []string{"t3", "t2", "t1"}},
		{"keyword matches title", repository.TransactionFilter{Keyword: "grocer"}, []string{"t2"}},
		{"keyword matches category", repository.TransactionFilter{Keyword: "FOOD"}, []string{"t3", "t2"}},
		{"type", repository.TransactionFilter{Type: domain.TransactionTypeIncome}, []string{"t1"}},
		{"recurring only", repository.TransactionFilter{Recurring: &yes}, []string{"t1"}},
		{"one-off only", repository.TransactionFilter{Recurring: &no}, []string{"t3", "t2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := store.ListTransactions(ctx, "u1", tt.filter, domain.Page{})
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)
			ids := make([]string, 0, len(got))
			for _, tx := range got {
				ids = append(ids, tx.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	page2, total, err := store.ListTransactions(ctx, "u1", repository.TransactionFilter{}, domain.Page{PageSize: 2, PageNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "t1", page2[0].ID)
}

func TestStore_TransactionsInRangeAndDelete(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	end := base.AddDate(0, 1, 0).Add(-time.Nanosecond)

	require.NoError(t, store.InsertTransactions(ctx, []*domain.Transaction{
		newTx("in-start", "u1", "a", "", domain.TransactionTypeExpense, base, false),
		newTx("in-end", "u1", "b", "", domain.TransactionTypeExpense, end, false),
		newTx("after", "u1", "c", "", domain.TransactionTypeExpense, end.Add(time.Nanosecond), false),
		newTx("other-user", "u2", "d", "", domain.TransactionTypeExpense, base, false),
	}))

	got, err := store.ListTransactionsInRange(ctx, "u1", base, end)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "in-start", got[0].ID)
	assert.Equal(t, "in-end", got[1].ID)

	n, err := store.DeleteTransactions(ctx, "u1", []string{"in-start", "other-user", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.GetTransaction(ctx, "u2", "other-user")
	assert.NoError(t, err)
}

func TestStore_UpdateTransactionOwnership(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	tx := newTx("t1", "u1", "Rent", "", domain.TransactionTypeExpense, base, true)
	require.NoError(t, store.InsertTransaction(ctx, tx))

	tx.RecurringInterval = nil
	got, err := store.GetTransaction(ctx, "u1", "t1")
	require.NoError(t, err)
	require.NotNil(t, got.RecurringInterval, "stored copy is unaffected")

	stolen := *got
	stolen.UserID = "u2"
	assert.ErrorIs(t, store.UpdateTransaction(ctx, &stolen), domain.ErrNotFound)

	got.Title = "Rent (new flat)"
	require.NoError(t, store.UpdateTransaction(ctx, got))
	updated, err := store.GetTransaction(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Rent (new flat)", updated.Title)
}

func TestStore_Settings(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()

	require.NoError(t, store.CreateUser(ctx, &domain.User{ID: "u1", Email: "u1@example.com"}))
	require.NoError(t, store.CreateReportSetting(ctx, domain.NewDefaultReportSetting("s1", "u1", base)))
	require.NoError(t, store.CreateReportSetting(ctx, domain.NewDefaultReportSetting("s2", "ghost", base.Add(time.Hour))))
	disabled := domain.NewDefaultReportSetting("s3", "u3", base)
	disabled.IsEnabled = false
	require.NoError(t, store.CreateReportSetting(ctx, disabled))

	assert.ErrorIs(t, store.CreateReportSetting(ctx, domain.NewDefaultReportSetting("s4", "u1", base)), domain.ErrAlreadyExists)

	rows, err := store.ListEnabledSettingsWithOwner(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "s1", rows[0].Setting.ID)
	require.NotNil(t, rows[0].Owner)
	assert.Equal(t, "u1@example.com", rows[0].Owner.Email)
	assert.Nil(t, rows[1].Owner)

	processed := base.AddDate(0, 1, 0)
	require.NoError(t, store.MarkReportSettingProcessed(ctx, "s1", processed, nil))
	s1, err := store.GetReportSettingByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, s1.LastSentAt)
	assert.Equal(t, processed, s1.UpdatedAt)

	require.NoError(t, store.MarkReportSettingProcessed(ctx, "s1", processed, &processed))
	s1, err = store.GetReportSettingByUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, s1.LastSentAt)
	assert.Equal(t, processed, *s1.LastSentAt)

	assert.ErrorIs(t, store.MarkReportSettingProcessed(ctx, "missing", processed, nil), domain.ErrNotFound)
	assert.ErrorIs(t, store.UpdateReportSetting(ctx, &domain.ReportSetting{ID: "missing"}), domain.ErrNotFound)
}

func TestStore_Reports(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.InsertReport(ctx, &domain.Report{
			ID:        fmt.Sprintf("r%d", i),
			UserID:    "u1",
			Status:    domain.ReportStatusCompleted,
			Payload:   domain.ReportPayload{Insights: domain.SkippedInsights("no activity")},
			CreatedAt: base.AddDate(0, i, 0),
		}))
	}
	require.NoError(t, store.InsertReport(ctx, &domain.Report{ID: "other", UserID: "u2", CreatedAt: base}))
	assert.Error(t, store.InsertReport(ctx, &domain.Report{}))

	got, total, err := store.ListReports(ctx, "u1", domain.Page{PageSize: 2, PageNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, "r1", got[1].ID)
	assert.NotNil(t, got[0].Payload.Insights.Items, "empty insight list survives the copy")

	since, err := store.ListReportsSince(ctx, base.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, "r1", since[0].ID)
}
