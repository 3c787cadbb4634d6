package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *domain.Summary {
	return &domain.Summary{
		PeriodLabel:      "January 1 – 31, 2025",
		PeriodStart:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:        time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
		TotalIncome:      1000,
		TotalExpense:     800,
		AvailableBalance: 200,
		SavingsRate:      20,
		TransactionCount: 3,
		Categories: []domain.CategoryBreakdown{
			{Name: "rent", Amount: 500, Percentage: 63},
			{Name: "food", Amount: 300, Percentage: 38},
		},
	}
}

func TestRenderReport(t *testing.T) {
	msg, err := RenderReport("ada@example.com", ReportEmail{
		UserName:    "Ada <script>",
		Title:       "Monthly Report - January 2025",
		PeriodLabel: "January 1 – 31, 2025",
		Summary:     sampleSummary(),
		Insights:    []string{"You saved 20%.", "Rent dominates.", "Keep it up."},
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Your FinGenius Financial Report - January 2025", msg.Subject)
	assert.Contains(t, msg.HTML, "$1,000.00")
	assert.Contains(t, msg.HTML, "20.00%")
	assert.Contains(t, msg.HTML, "Rent dominates.")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.Text, "- rent: $500.00 (63%)")
	assert.Contains(t, msg.Text, "- Keep it up.")
}

func TestRenderReport_RequiresSummary(t *testing.T) {
	_, err := RenderReport("ada@example.com", ReportEmail{Title: "x"})
	assert.Error(t, err)
}

func TestRenderReport_NoInsights(t *testing.T) {
	msg, err := RenderReport("ada@example.com", ReportEmail{Title: "t", Summary: sampleSummary()})
	require.NoError(t, err)
	assert.False(t, strings.Contains(msg.Text, "Insights:"))
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{0.07, "$0.07"},
		{12.5, "$12.50"},
		{1234.56, "$1,234.56"},
		{1234567, "$1,234,567.00"},
		{-42.1, "-$42.10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.in))
	}
}

func TestResendDispatcher_NotConfigured(t *testing.T) {
	d := NewResendDispatcher("", "reports@example.com")
	err := d.Send(context.Background(), Message{To: "ada@example.com"})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
