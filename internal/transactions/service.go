// Package transactions implements create, update, listing and bulk operations
// on a user's transactions, including next-occurrence stamping for recurring ones.
package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/dvloznov/fingenius/internal/recurrence"
	"github.com/dvloznov/fingenius/internal/repository"
	"github.com/google/uuid"
)

// CreateInput is a new transaction as entered by the user. Amount is in major units.
type CreateInput struct {
	Title             string
	Description       string
	Amount            float64
	Type              domain.TransactionType
	Category          string
	PaymentMethod     domain.PaymentMethod
	ReceiptURL        string
	Date              time.Time
	IsRecurring       bool
	RecurringInterval domain.RecurringInterval
}

// UpdateInput is a partial update; nil fields keep their stored value.
type UpdateInput struct {
	Title             *string
	Description       *string
	Amount            *float64
	Type              *domain.TransactionType
	Category          *string
	PaymentMethod     *domain.PaymentMethod
	Date              *time.Time
	IsRecurring       *bool
	RecurringInterval *domain.RecurringInterval
}

// Service manages transactions.
type Service struct {
	repo  repository.TransactionRepository
	now   func() time.Time
	newID func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides uuid-based transaction IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a transactions service.
func NewService(repo repository.TransactionRepository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new transaction. Recurring transactions get their next
// occurrence computed from Date, re-based on now if that lands in the past.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*domain.Transaction, error) {
	now := s.now()

	tx := &domain.Transaction{
		ID:            s.newID(),
		UserID:        userID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		AmountMinor:   domain.ToMinorUnits(in.Amount),
		Type:          in.Type,
		Category:      in.Category,
		PaymentMethod: defaultPaymentMethod(in.PaymentMethod),
		ReceiptURL:    in.ReceiptURL,
		OccurredAt:    in.Date,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if in.IsRecurring {
		if err := stampRecurrence(tx, in.RecurringInterval, now); err != nil {
			return nil, fmt.Errorf("Create: %w", err)
		}
	}

	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	if err := s.repo.InsertTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("Create: inserting transaction: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("user_id", userID).
		Str("transaction_id", tx.ID).
		Bool("recurring", tx.IsRecurring).
		Msg("Transaction created")

	return tx, nil
}

// Update applies a partial update. The recurrence is recomputed from the
// resulting date and interval whenever the result recurs, and cleared otherwise.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*domain.Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		tx.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		tx.Description = *in.Description
	}
	if in.Amount != nil {
		tx.AmountMinor = domain.ToMinorUnits(*in.Amount)
	}
	if in.Type != nil {
		tx.Type = *in.Type
	}
	if in.Category != nil {
		tx.Category = *in.Category
	}
	if in.PaymentMethod != nil {
		tx.PaymentMethod = defaultPaymentMethod(*in.PaymentMethod)
	}
	if in.Date != nil {
		tx.OccurredAt = *in.Date
	}

	recurring := tx.IsRecurring
	if in.IsRecurring != nil {
		recurring = *in.IsRecurring
	}
	var interval domain.RecurringInterval
	if tx.RecurringInterval != nil {
		interval = *tx.RecurringInterval
	}
	if in.RecurringInterval != nil {
		interval = *in.RecurringInterval
	}

	now := s.now()
	if recurring {
		if err := stampRecurrence(tx, interval, now); err != nil {
			return nil, fmt.Errorf("Update: %w", err)
		}
	} else {
		tx.ClearRecurrence()
	}
	tx.UpdatedAt = now

	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("Update: saving transaction: %w", err)
	}
	return tx, nil
}

// Get returns one of the user's transactions.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return tx, nil
}

// List returns one page of the user's transactions, newest first.
func (s *Service) List(ctx context.Context, userID string, filter repository.TransactionFilter, page domain.Page) ([]*domain.Transaction, domain.Pagination, error) {
	page = page.Normalize()
	txs, total, err := s.repo.ListTransactions(ctx, userID, filter, page)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("List: %w", err)
	}
	return txs, domain.NewPagination(page, total), nil
}

// Duplicate copies a transaction under a new ID. The copy never recurs.
func (s *Service) Duplicate(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	src, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("Duplicate: %w", err)
	}

	now := s.now()
	dup := *src
	dup.ID = s.newID()
	dup.Title = "Duplicate - " + src.Title
	if src.Description != "" {
		dup.Description = src.Description + " (Duplicate)"
	} else {
		dup.Description = "Duplicated transaction"
	}
	dup.ClearRecurrence()
	dup.LastProcessedAt = nil
	dup.CreatedAt = now
	dup.UpdatedAt = now

	if err := s.repo.InsertTransaction(ctx, &dup); err != nil {
		return nil, fmt.Errorf("Duplicate: inserting transaction: %w", err)
	}
	return &dup, nil
}

// Delete removes a single transaction.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	n, err := s.repo.DeleteTransactions(ctx, userID, []string{id})
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Delete: %w: transaction %s", domain.ErrNotFound, id)
	}
	return nil
}

// BulkDelete removes the given transactions and returns how many were deleted.
// Deleting nothing is an error.
func (s *Service) BulkDelete(ctx context.Context, userID string, ids []string) (int, error) {
	n, err := s.repo.DeleteTransactions(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("BulkDelete: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("BulkDelete: %w: no transactions found", domain.ErrNotFound)
	}
	return n, nil
}

// BulkImport stores many transactions at once. Imported transactions never
// recur, whatever the input says.
func (s *Service) BulkImport(ctx context.Context, userID string, inputs []CreateInput) (int, error) {
	now := s.now()

	txs := make([]*domain.Transaction, 0, len(inputs))
	for i, in := range inputs {
		tx := &domain.Transaction{
			ID:            s.newID(),
			UserID:        userID,
			Title:         strings.TrimSpace(in.Title),
			Description:   in.Description,
			AmountMinor:   domain.ToMinorUnits(in.Amount),
			Type:          in.Type,
			Category:      in.Category,
			PaymentMethod: defaultPaymentMethod(in.PaymentMethod),
			ReceiptURL:    in.ReceiptURL,
			OccurredAt:    in.Date,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("BulkImport: row %d: %w", i+1, err)
		}
		txs = append(txs, tx)
	}

	if err := s.repo.InsertTransactions(ctx, txs); err != nil {
		return 0, fmt.Errorf("BulkImport: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("user_id", userID).
		Int("inserted", len(txs)).
		Msg("Transactions imported")

	return len(txs), nil
}

func stampRecurrence(tx *domain.Transaction, interval domain.RecurringInterval, now time.Time) error {
	if !interval.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidInterval, interval)
	}
	next, err := recurrence.NextRecurringDate(tx.OccurredAt, interval, now)
	if err != nil {
		return err
	}
	tx.IsRecurring = true
	tx.RecurringInterval = &interval
	tx.NextOccurrenceAt = &next
	return nil
}

func defaultPaymentMethod(m domain.PaymentMethod) domain.PaymentMethod {
	return domain.ParsePaymentMethod(string(m))
}
