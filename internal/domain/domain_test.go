package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	monthly := IntervalMonthly
	bogus := RecurringInterval("HOURLY")
	next := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	base := func() Transaction {
		return Transaction{
			UserID:      "u1",
			Title:       "Salary",
			AmountMinor: 100000,
			Type:        TransactionTypeIncome,
			OccurredAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{name: "plain", mutate: func(*Transaction) {}},
		{name: "recurring", mutate: func(tx *Transaction) {
			tx.IsRecurring = true
			tx.RecurringInterval = &monthly
			tx.NextOccurrenceAt = &next
		}},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.AmountMinor = -1 }, wantErr: ErrInvalidTransaction},
		{name: "unknown type", mutate: func(tx *Transaction) { tx.Type = "TRANSFER" }, wantErr: ErrInvalidTransaction},
		{name: "recurring without next", mutate: func(tx *Transaction) {
			tx.IsRecurring = true
			tx.RecurringInterval = &monthly
		}, wantErr: ErrInvalidTransaction},
		{name: "recurring with bad interval", mutate: func(tx *Transaction) {
			tx.IsRecurring = true
			tx.RecurringInterval = &bogus
			tx.NextOccurrenceAt = &next
		}, wantErr: ErrInvalidInterval},
		{name: "one-off carrying interval", mutate: func(tx *Transaction) { tx.RecurringInterval = &monthly }, wantErr: ErrInvalidTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := base()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParseRecurringInterval(t *testing.T) {
	got, err := ParseRecurringInterval(" weekly ")
	assert.NoError(t, err)
	assert.Equal(t, IntervalWeekly, got)

	_, err = ParseRecurringInterval("fortnightly")
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, ReportStatusPending, StatusFor(false, false))
	assert.Equal(t, ReportStatusPending, StatusFor(false, true))
	assert.Equal(t, ReportStatusCompleted, StatusFor(true, true))
	assert.Equal(t, ReportStatusFailed, StatusFor(true, false))
}

func TestMoneyConversions(t *testing.T) {
	assert.Equal(t, 12.34, ToMajorUnits(1234))
	assert.Equal(t, int64(1234), ToMinorUnits(12.34))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, 20.0, Round2(19.999))
}

func TestPagination(t *testing.T) {
	p := Page{PageSize: 0, PageNumber: 0}.Normalize()
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 1, p.PageNumber)
	assert.Equal(t, 10, Page{PageSize: 5, PageNumber: 3}.Offset())

	pg := NewPagination(Page{PageSize: 10, PageNumber: 2}, 21)
	assert.Equal(t, 3, pg.TotalPages)
	assert.Equal(t, 21, pg.TotalCount)
	assert.Equal(t, 10, pg.Skip)
}
