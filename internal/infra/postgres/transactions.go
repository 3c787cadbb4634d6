package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/repository"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, user_id, title, description, amount_minor, type, category,
	payment_method, receipt_url, occurred_at, is_recurring, recurring_interval,
	next_occurrence_at, last_processed_at, created_at, updated_at`

var transactionCopyColumns = []string{
	"id", "user_id", "title", "description", "amount_minor", "type", "category",
	"payment_method", "receipt_url", "occurred_at", "is_recurring", "recurring_interval",
	"next_occurrence_at", "last_processed_at", "created_at", "updated_at",
}

func transactionValues(tx *domain.Transaction) []any {
	var interval *string
	if tx.RecurringInterval != nil {
		v := string(*tx.RecurringInterval)
		interval = &v
	}
	return []any{
		tx.ID, tx.UserID, tx.Title, tx.Description, tx.AmountMinor, string(tx.Type), tx.Category,
		string(tx.PaymentMethod), tx.ReceiptURL, tx.OccurredAt, tx.IsRecurring, interval,
		tx.NextOccurrenceAt, tx.LastProcessedAt, tx.CreatedAt, tx.UpdatedAt,
	}
}

// InsertTransaction implements repository.TransactionRepository.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		transactionValues(tx)...,
	)
	if err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}
	return nil
}

// InsertTransactions implements repository.TransactionRepository with COPY.
func (s *Store) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionValues(tx))
	}

	if _, err := s.db.CopyFrom(ctx, pgx.Identifier{"transactions"}, transactionCopyColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("InsertTransactions: copy: %w", err)
	}
	return nil
}

// UpdateTransaction implements repository.TransactionRepository.
func (s *Store) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	v := transactionValues(tx)
	tag, err := s.db.Exec(ctx, `
		UPDATE transactions SET
			title = $3, description = $4, amount_minor = $5, type = $6, category = $7,
			payment_method = $8, receipt_url = $9, occurred_at = $10, is_recurring = $11,
			recurring_interval = $12, next_occurrence_at = $13, last_processed_at = $14,
			updated_at = $15
		WHERE id = $1 AND user_id = $2`,
		v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], v[8], v[9], v[10], v[11], v[12], v[13], tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateTransaction: %w: %s", domain.ErrNotFound, tx.ID)
	}
	return nil
}

// GetTransaction implements repository.TransactionRepository.
func (s *Store) GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	tx, err := scanTransaction(s.db.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("GetTransaction: %w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return tx, nil
}

// transactionWhere builds the WHERE clause and arguments shared by the page and count queries.
func transactionWhere(userID string, filter repository.TransactionFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		args = append(args, "%"+kw+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR category ILIKE $%d)", len(args), len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Recurring != nil {
		args = append(args, *filter.Recurring)
		conds = append(conds, fmt.Sprintf("is_recurring = $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// ListTransactions implements repository.TransactionRepository.
func (s *Store) ListTransactions(ctx context.Context, userID string, filter repository.TransactionFilter, page domain.Page) ([]*domain.Transaction, int, error) {
	page = page.Normalize()
	where, args := transactionWhere(userID, filter)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListTransactions: counting: %w", err)
	}

	args = append(args, page.PageSize, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE %s
		ORDER BY occurred_at DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, transactionColumns, where, len(args)-1, len(args))

	txs, err := s.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListTransactions: %w", err)
	}
	return txs, total, nil
}

// ListTransactionsInRange implements repository.TransactionRepository.
func (s *Store) ListTransactionsInRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error) {
	txs, err := s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at, created_at`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsInRange: %w", err)
	}
	return txs, nil
}

// DeleteTransactions implements repository.TransactionRepository.
func (s *Store) DeleteTransactions(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("DeleteTransactions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx       domain.Transaction
		typ      string
		method   string
		interval *string
	)
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Title, &tx.Description, &tx.AmountMinor, &typ, &tx.Category,
		&method, &tx.ReceiptURL, &tx.OccurredAt, &tx.IsRecurring, &interval,
		&tx.NextOccurrenceAt, &tx.LastProcessedAt, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Type = domain.TransactionType(typ)
	tx.PaymentMethod = domain.PaymentMethod(method)
	if interval != nil {
		ri := domain.RecurringInterval(*interval)
		tx.RecurringInterval = &ri
	}
	return &tx, nil
}
