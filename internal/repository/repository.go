// Package repository declares the persistence contracts shared by the
// BigQuery, Postgres and in-memory backends.
package repository

import (
	"context"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
)

// UserRepository provides user lookups and creation.
type UserRepository interface {
	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUser returns the user with the given ID or domain.ErrNotFound.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// FindUserByEmail returns the user with the given email or domain.ErrNotFound.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TransactionFilter narrows a transaction listing. Zero values match everything.
type TransactionFilter struct {
	// Keyword matches title or category, case-insensitively.
	Keyword string
	Type    domain.TransactionType
	// Recurring restricts to recurring (true) or one-off (false) transactions.
	Recurring *bool
}

// TransactionRepository provides transaction persistence.
type TransactionRepository interface {
	// InsertTransaction inserts a single transaction.
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error

	// InsertTransactions inserts a batch of transactions.
	InsertTransactions(ctx context.Context, txs []*domain.Transaction) error

	// UpdateTransaction overwrites a stored transaction. Returns domain.ErrNotFound
	// when no transaction with that ID belongs to tx.UserID.
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) error

	// GetTransaction returns one of the user's transactions or domain.ErrNotFound.
	GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error)

	// ListTransactions returns one page of the user's transactions, newest first,
	// along with the total number of matches.
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter, page domain.Page) ([]*domain.Transaction, int, error)

	// ListTransactionsInRange returns the user's transactions with OccurredAt in
	// [start, end], both ends inclusive.
	ListTransactionsInRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error)

	// DeleteTransactions deletes the given transactions of the user and returns how many were removed.
	DeleteTransactions(ctx context.Context, userID string, ids []string) (int, error)
}

// ReportSettingRepository provides report setting persistence.
type ReportSettingRepository interface {
	// CreateReportSetting inserts a setting. Returns domain.ErrAlreadyExists if
	// the user already has one.
	CreateReportSetting(ctx context.Context, setting *domain.ReportSetting) error

	// GetReportSettingByUser returns the user's setting or domain.ErrNotFound.
	GetReportSettingByUser(ctx context.Context, userID string) (*domain.ReportSetting, error)

	// UpdateReportSetting overwrites frequency, enabled flag and timestamps.
	UpdateReportSetting(ctx context.Context, setting *domain.ReportSetting) error

	// ListEnabledSettingsWithOwner returns every enabled setting joined to its
	// user. Owner is nil for settings whose user no longer exists.
	ListEnabledSettingsWithOwner(ctx context.Context) ([]domain.SettingWithOwner, error)

	// MarkReportSettingProcessed stamps UpdatedAt, and LastSentAt when sentAt is non-nil.
	MarkReportSettingProcessed(ctx context.Context, settingID string, processedAt time.Time, sentAt *time.Time) error
}

// ReportRepository provides report persistence. Reports are append-only.
type ReportRepository interface {
	// InsertReport inserts a new report.
	InsertReport(ctx context.Context, report *domain.Report) error

	// ListReports returns one page of the user's reports, newest first, and the total count.
	ListReports(ctx context.Context, userID string, page domain.Page) ([]*domain.Report, int, error)

	// ListReportsSince returns every report created at or after since, oldest first.
	ListReportsSince(ctx context.Context, since time.Time) ([]*domain.Report, error)
}

// Store bundles every repository of one backend.
type Store interface {
	UserRepository
	TransactionRepository
	ReportSettingRepository
	ReportRepository

	// Close releases the backend's connections.
	Close() error
}
