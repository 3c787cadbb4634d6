package bigquery

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/fingenius/internal/domain"
)

type UserRow struct {
	UserID    string    `bigquery:"user_id"`    // REQUIRED
	Name      string    `bigquery:"name"`       // NULLABLE
	Email     string    `bigquery:"email"`      // REQUIRED
	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED

	Title       string              `bigquery:"title"`       // REQUIRED
	Description bigquery.NullString `bigquery:"description"` // NULLABLE

	AmountMinor int64  `bigquery:"amount_minor"` // REQUIRED, cents
	Type        string `bigquery:"type"`         // REQUIRED, INCOME | EXPENSE

	Category      bigquery.NullString `bigquery:"category"`       // NULLABLE
	PaymentMethod bigquery.NullString `bigquery:"payment_method"` // NULLABLE
	ReceiptURL    bigquery.NullString `bigquery:"receipt_url"`    // NULLABLE

	// TransactionDate is the UTC partition date; OccurredAt carries the full instant.
	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	OccurredAt      time.Time  `bigquery:"occurred_at"`      // REQUIRED

	IsRecurring       bool                   `bigquery:"is_recurring"`       // REQUIRED
	RecurringInterval bigquery.NullString    `bigquery:"recurring_interval"` // NULLABLE
	NextOccurrenceTS  bigquery.NullTimestamp `bigquery:"next_occurrence_ts"` // NULLABLE
	LastProcessedTS   bigquery.NullTimestamp `bigquery:"last_processed_ts"`  // NULLABLE

	CreatedTS time.Time              `bigquery:"created_ts"` // REQUIRED
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE
}

type ReportSettingRow struct {
	SettingID  string                 `bigquery:"setting_id"`   // REQUIRED
	UserID     string                 `bigquery:"user_id"`      // REQUIRED
	Frequency  string                 `bigquery:"frequency"`    // REQUIRED
	IsEnabled  bool                   `bigquery:"is_enabled"`   // REQUIRED
	LastSentTS bigquery.NullTimestamp `bigquery:"last_sent_ts"` // NULLABLE
	CreatedTS  time.Time              `bigquery:"created_ts"`   // REQUIRED
	UpdatedTS  bigquery.NullTimestamp `bigquery:"updated_ts"`   // NULLABLE
}

// settingOwnerRow is a report setting LEFT JOINed to its user.
type settingOwnerRow struct {
	ReportSettingRow
	OwnerID        bigquery.NullString    `bigquery:"owner_id"`
	OwnerName      bigquery.NullString    `bigquery:"owner_name"`
	OwnerEmail     bigquery.NullString    `bigquery:"owner_email"`
	OwnerCreatedTS bigquery.NullTimestamp `bigquery:"owner_created_ts"`
}

type ReportRow struct {
	ReportID    string              `bigquery:"report_id"`   // REQUIRED
	UserID      string              `bigquery:"user_id"`     // REQUIRED
	Title       string              `bigquery:"title"`       // REQUIRED
	Description bigquery.NullString `bigquery:"description"` // NULLABLE

	// PeriodMonth is the first day of the reported month, used for clustering.
	PeriodMonth civil.Date `bigquery:"period_month"` // REQUIRED
	PeriodStart time.Time  `bigquery:"period_start"` // REQUIRED
	PeriodEnd   time.Time  `bigquery:"period_end"`   // REQUIRED

	Status  string            `bigquery:"status"`  // REQUIRED
	Payload bigquery.NullJSON `bigquery:"payload"` // JSON

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

type countRow struct {
	Total int64 `bigquery:"total"`
}

func userToRow(u *domain.User) *UserRow {
	return &UserRow{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedTS: u.CreatedAt,
	}
}

func rowToUser(r *UserRow) *domain.User {
	return &domain.User{
		ID:        r.UserID,
		Name:      r.Name,
		Email:     r.Email,
		CreatedAt: r.CreatedTS,
	}
}

func transactionToRow(tx *domain.Transaction) *TransactionRow {
	row := &TransactionRow{
		TransactionID:    tx.ID,
		UserID:           tx.UserID,
		Title:            tx.Title,
		Description:      nullString(tx.Description),
		AmountMinor:      tx.AmountMinor,
		Type:             string(tx.Type),
		Category:         nullString(tx.Category),
		PaymentMethod:    nullString(string(tx.PaymentMethod)),
		ReceiptURL:       nullString(tx.ReceiptURL),
		TransactionDate:  civil.DateOf(tx.OccurredAt.UTC()),
		OccurredAt:       tx.OccurredAt,
		IsRecurring:      tx.IsRecurring,
		NextOccurrenceTS: nullTimestamp(tx.NextOccurrenceAt),
		LastProcessedTS:  nullTimestamp(tx.LastProcessedAt),
		CreatedTS:        tx.CreatedAt,
		UpdatedTS:        nullTimestamp(&tx.UpdatedAt),
	}
	if tx.RecurringInterval != nil {
		row.RecurringInterval = nullString(string(*tx.RecurringInterval))
	}
	return row
}

func rowToTransaction(r *TransactionRow) *domain.Transaction {
	tx := &domain.Transaction{
		ID:               r.TransactionID,
		UserID:           r.UserID,
		Title:            r.Title,
		Description:      r.Description.StringVal,
		AmountMinor:      r.AmountMinor,
		Type:             domain.TransactionType(r.Type),
		Category:         r.Category.StringVal,
		PaymentMethod:    domain.PaymentMethod(r.PaymentMethod.StringVal),
		ReceiptURL:       r.ReceiptURL.StringVal,
		OccurredAt:       r.OccurredAt,
		IsRecurring:      r.IsRecurring,
		NextOccurrenceAt: timePtr(r.NextOccurrenceTS),
		LastProcessedAt:  timePtr(r.LastProcessedTS),
		CreatedAt:        r.CreatedTS,
	}
	if r.RecurringInterval.Valid {
		interval := domain.RecurringInterval(r.RecurringInterval.StringVal)
		tx.RecurringInterval = &interval
	}
	if r.UpdatedTS.Valid {
		tx.UpdatedAt = r.UpdatedTS.Timestamp
	}
	return tx
}

func settingToRow(s *domain.ReportSetting) *ReportSettingRow {
	return &ReportSettingRow{
		SettingID:  s.ID,
		UserID:     s.UserID,
		Frequency:  string(s.Frequency),
		IsEnabled:  s.IsEnabled,
		LastSentTS: nullTimestamp(s.LastSentAt),
		CreatedTS:  s.CreatedAt,
		UpdatedTS:  nullTimestamp(&s.UpdatedAt),
	}
}

func rowToSetting(r *ReportSettingRow) *domain.ReportSetting {
	s := &domain.ReportSetting{
		ID:         r.SettingID,
		UserID:     r.UserID,
		Frequency:  domain.ReportFrequency(r.Frequency),
		IsEnabled:  r.IsEnabled,
		LastSentAt: timePtr(r.LastSentTS),
		CreatedAt:  r.CreatedTS,
	}
	if r.UpdatedTS.Valid {
		s.UpdatedAt = r.UpdatedTS.Timestamp
	}
	return s
}

func rowToSettingWithOwner(r *settingOwnerRow) domain.SettingWithOwner {
	out := domain.SettingWithOwner{Setting: rowToSetting(&r.ReportSettingRow)}
	if r.OwnerID.Valid {
		out.Owner = &domain.User{
			ID:        r.OwnerID.StringVal,
			Name:      r.OwnerName.StringVal,
			Email:     r.OwnerEmail.StringVal,
			CreatedAt: r.OwnerCreatedTS.Timestamp,
		}
	}
	return out
}

func reportToRow(rep *domain.Report) (*ReportRow, error) {
	payload, err := json.Marshal(rep.Payload)
	if err != nil {
		return nil, fmt.Errorf("reportToRow: marshal payload: %w", err)
	}
	return &ReportRow{
		ReportID:    rep.ID,
		UserID:      rep.UserID,
		Title:       rep.Title,
		Description: nullString(rep.Description),
		PeriodMonth: civil.Date{Year: rep.PeriodStart.Year(), Month: rep.PeriodStart.Month(), Day: 1},
		PeriodStart: rep.PeriodStart,
		PeriodEnd:   rep.PeriodEnd,
		Status:      string(rep.Status),
		Payload:     bigquery.NullJSON{JSONVal: string(payload), Valid: true},
		CreatedTS:   rep.CreatedAt,
	}, nil
}

func rowToReport(r *ReportRow) (*domain.Report, error) {
	rep := &domain.Report{
		ID:          r.ReportID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description.StringVal,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		Status:      domain.ReportStatus(r.Status),
		CreatedAt:   r.CreatedTS,
	}
	if r.Payload.Valid && r.Payload.JSONVal != "" {
		if err := json.Unmarshal([]byte(r.Payload.JSONVal), &rep.Payload); err != nil {
			return nil, fmt.Errorf("rowToReport: unmarshal payload of %s: %w", r.ReportID, err)
		}
	}
	return rep, nil
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func nullTimestamp(t *time.Time) bigquery.NullTimestamp {
	if t == nil || t.IsZero() {
		return bigquery.NullTimestamp{}
	}
	return bigquery.NullTimestamp{Timestamp: *t, Valid: true}
}

func timePtr(t bigquery.NullTimestamp) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Timestamp
	return &v
}
