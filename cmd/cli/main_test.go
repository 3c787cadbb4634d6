package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cliNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", cliNow, false},
		{"2025-01-31", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), false},
		{"2025-01-31T08:30:00Z", time.Date(2025, 1, 31, 8, 30, 0, 0, time.UTC), false},
		{"31/01/2025", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in, cliNow)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseMonth(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	start, end, err := parseMonth("2024-02", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, 29, end.Day())
	assert.Equal(t, 23, end.Hour())

	_, _, err = parseMonth("2024-13", loc)
	assert.Error(t, err)
}

func TestParseOptionalBool(t *testing.T) {
	got, err := parseOptionalBool("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseOptionalBool("Yes")
	require.NoError(t, err)
	assert.True(t, *got)

	got, err = parseOptionalBool("0")
	require.NoError(t, err)
	assert.False(t, *got)

	_, err = parseOptionalBool("maybe")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12.5", 12.5, false},
		{"0.105", 0.11, false},
		{"1000", 1000, false},
		{"0", 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "0.05", formatMinor(5))
	assert.Equal(t, "1234.50", formatMinor(123450))
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitIDs(" a, ,b "))
	assert.Nil(t, splitIDs(""))
}

func TestTransactionFlagsInput(t *testing.T) {
	tf := transactionFlags{
		title: "Gym", amount: "45", txType: "expense", payment: "card",
		date: "2025-01-31", recurring: true, interval: "monthly",
	}
	in, err := tf.input(cliNow)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeExpense, in.Type)
	assert.Equal(t, domain.PaymentCard, in.PaymentMethod)
	assert.Equal(t, domain.IntervalMonthly, in.RecurringInterval)
	assert.Equal(t, 45.0, in.Amount)

	tf.interval = ""
	_, err = tf.input(cliNow)
	assert.Error(t, err, "recurring needs an interval")
}

func TestReadImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"title": "Salary", "amount": 3000, "type": "income", "category": "salary", "date": "2025-01-01"},
		{"title": "Coffee", "amount": 3.5, "type": "EXPENSE"}
	]`), 0o644))

	inputs, err := readImportFile(path, cliNow)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, domain.TransactionTypeIncome, inputs[0].Type)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), inputs[0].Date)
	assert.Equal(t, cliNow, inputs[1].Date)
	assert.Equal(t, domain.PaymentCash, inputs[1].PaymentMethod)

	require.NoError(t, os.WriteFile(path, []byte(`[{"date": "yesterday"}]`), 0o644))
	_, err = readImportFile(path, cliNow)
	assert.ErrorContains(t, err, "row 1")
}

func TestFindCommand(t *testing.T) {
	for _, name := range []string{"register", "run-reports", "sync-notion", "scan-receipt"} {
		_, ok := findCommand(name)
		assert.True(t, ok, name)
	}
	_, ok := findCommand("ingest")
	assert.False(t, ok)
}
