package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportFrequency is the user's preferred report cadence.
// Only the previous calendar month is currently generated, whatever the value.
type ReportFrequency string

const (
	FrequencyDaily   ReportFrequency = "DAILY"
	FrequencyWeekly  ReportFrequency = "WEEKLY"
	FrequencyMonthly ReportFrequency = "MONTHLY"
)

// Valid reports whether f is a known frequency.
func (f ReportFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// ParseReportFrequency normalizes user input into a frequency.
func ParseReportFrequency(s string) (ReportFrequency, error) {
	f := ReportFrequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

// ReportSetting is the per-user report preference. One per user.
type ReportSetting struct {
	ID         string
	UserID     string
	Frequency  ReportFrequency
	IsEnabled  bool
	LastSentAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewDefaultReportSetting returns the setting created for every new user.
func NewDefaultReportSetting(id, userID string, now time.Time) *ReportSetting {
	return &ReportSetting{
		ID:        id,
		UserID:    userID,
		Frequency: FrequencyMonthly,
		IsEnabled: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SettingWithOwner joins a setting to its user. Owner is nil when the user no longer exists.
type SettingWithOwner struct {
	Setting *ReportSetting
	Owner   *User
}

// ReportStatus is the final outcome of one report run for one user.
type ReportStatus string

const (
	// ReportStatusPending means the period had no activity, so nothing was sent.
	ReportStatusPending ReportStatus = "PENDING"
	// ReportStatusCompleted means a summary was produced and emailed.
	ReportStatusCompleted ReportStatus = "COMPLETED"
	// ReportStatusFailed means a summary was produced but delivery failed.
	ReportStatusFailed ReportStatus = "FAILED"
)

// StatusFor derives the report status from what happened during the run.
func StatusFor(hasSummary, delivered bool) ReportStatus {
	switch {
	case !hasSummary:
		return ReportStatusPending
	case delivered:
		return ReportStatusCompleted
	default:
		return ReportStatusFailed
	}
}

// CategoryBreakdown is one expense category's share of the period.
type CategoryBreakdown struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage int     `json:"percentage"`
}

// Summary is the aggregated view of a user's transactions over a period.
// Currency values are major units.
type Summary struct {
	PeriodLabel      string              `json:"periodLabel"`
	PeriodStart      time.Time           `json:"periodStart"`
	PeriodEnd        time.Time           `json:"periodEnd"`
	TotalIncome      float64             `json:"totalIncome"`
	TotalExpense     float64             `json:"totalExpense"`
	AvailableBalance float64             `json:"availableBalance"`
	SavingsRate      float64             `json:"savingsRate"`
	TransactionCount int                 `json:"transactionCount"`
	Categories       []CategoryBreakdown `json:"categories"`
}

// InsightStatus distinguishes generated insights from a degraded fallback.
type InsightStatus string

const (
	InsightsGenerated    InsightStatus = "GENERATED"
	InsightsSkipped      InsightStatus = "SKIPPED"
	InsightsNotRequested InsightStatus = "NOT_REQUESTED"
)

// InsightOutcome is the result of asking for insights. Items is empty unless
// Status is InsightsGenerated; Reason explains a skip.
type InsightOutcome struct {
	Status InsightStatus `json:"status"`
	Items  []string      `json:"items"`
	Reason string        `json:"reason,omitempty"`
}

// SkippedInsights builds a skipped outcome with the given reason.
func SkippedInsights(reason string) InsightOutcome {
	return InsightOutcome{Status: InsightsSkipped, Items: []string{}, Reason: reason}
}

// ReportPayload is what a report carries. A nil Summary means the period had no activity.
type ReportPayload struct {
	Summary  *Summary       `json:"summary"`
	Insights InsightOutcome `json:"insights"`
}

// Report is one generated report for one user and period.
type Report struct {
	ID          string
	UserID      string
	Title       string
	Description string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      ReportStatus
	Payload     ReportPayload
	CreatedAt   time.Time
}

// Page describes a slice of a paginated listing.
type Page struct {
	PageSize   int
	PageNumber int
}

// Normalize applies defaults (page 1, size 20) and caps the size at 100.
func (p Page) Normalize() Page {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	if p.PageNumber <= 0 {
		p.PageNumber = 1
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.PageNumber - 1) * p.PageSize
}

// Pagination is returned alongside a listing.
type Pagination struct {
	PageSize   int
	PageNumber int
	TotalCount int
	TotalPages int
	Skip       int
}

// NewPagination computes page totals for a listing of total rows.
func NewPagination(p Page, total int) Pagination {
	p = p.Normalize()
	pages := (total + p.PageSize - 1) / p.PageSize
	return Pagination{
		PageSize:   p.PageSize,
		PageNumber: p.PageNumber,
		TotalCount: total,
		TotalPages: pages,
		Skip:       p.Offset(),
	}
}
