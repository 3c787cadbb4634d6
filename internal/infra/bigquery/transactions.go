package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/repository"
	"google.golang.org/api/iterator"
)

const transactionColumns = `
	transaction_id, user_id, title, description, amount_minor, type, category,
	payment_method, receipt_url, transaction_date, occurred_at, is_recurring,
	recurring_interval, next_occurrence_ts, last_processed_ts, created_ts, updated_ts`

func transactionParams(row *TransactionRow) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{
		{Name: "transaction_id", Value: row.TransactionID},
		{Name: "user_id", Value: row.UserID},
		{Name: "title", Value: row.Title},
		{Name: "description", Value: row.Description},
		{Name: "amount_minor", Value: row.AmountMinor},
		{Name: "type", Value: row.Type},
		{Name: "category", Value: row.Category},
		{Name: "payment_method", Value: row.PaymentMethod},
		{Name: "receipt_url", Value: row.ReceiptURL},
		{Name: "transaction_date", Value: row.TransactionDate},
		{Name: "occurred_at", Value: row.OccurredAt},
		{Name: "is_recurring", Value: row.IsRecurring},
		{Name: "recurring_interval", Value: row.RecurringInterval},
		{Name: "next_occurrence_ts", Value: row.NextOccurrenceTS},
		{Name: "last_processed_ts", Value: row.LastProcessedTS},
		{Name: "created_ts", Value: row.CreatedTS},
		{Name: "updated_ts", Value: row.UpdatedTS},
	}
}

// InsertTransaction implements repository.TransactionRepository. It uses DML
// so the row can be edited right away.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	q := s.client.Query(`
		INSERT INTO ` + s.table(transactionsTable) + ` (` + transactionColumns + `)
		VALUES (
			@transaction_id, @user_id, @title, @description, @amount_minor, @type, @category,
			@payment_method, @receipt_url, @transaction_date, @occurred_at, @is_recurring,
			@recurring_interval, @next_occurrence_ts, @last_processed_ts, @created_ts, @updated_ts
		)
	`)
	q.Parameters = transactionParams(transactionToRow(tx))

	if _, err := runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}
	return nil
}

// InsertTransactions implements repository.TransactionRepository using the
// streaming inserter.
func (s *Store) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionToRow(tx))
	}

	if err := s.inserter(transactionsTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// UpdateTransaction implements repository.TransactionRepository.
func (s *Store) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	q := s.client.Query(`
		UPDATE ` + s.table(transactionsTable) + `
		SET
			title = @title,
			description = @description,
			amount_minor = @amount_minor,
			type = @type,
			category = @category,
			payment_method = @payment_method,
			receipt_url = @receipt_url,
			transaction_date = @transaction_date,
			occurred_at = @occurred_at,
			is_recurring = @is_recurring,
			recurring_interval = @recurring_interval,
			next_occurrence_ts = @next_occurrence_ts,
			last_processed_ts = @last_processed_ts,
			updated_ts = @updated_ts
		WHERE transaction_id = @transaction_id AND user_id = @user_id
	`)
	q.Parameters = transactionParams(transactionToRow(tx))

	affected, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("UpdateTransaction: %w: %s", domain.ErrNotFound, tx.ID)
	}
	return nil
}

// GetTransaction implements repository.TransactionRepository.
func (s *Store) GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	q := s.client.Query(`
		SELECT ` + transactionColumns + `
		FROM ` + s.table(transactionsTable) + `
		WHERE transaction_id = @transaction_id AND user_id = @user_id
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
		{Name: "user_id", Value: userID},
	}

	txs, err := readTransactions(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("GetTransaction: %w: %s", domain.ErrNotFound, id)
	}
	return txs[0], nil
}

// transactionFilterSQL builds the WHERE clause shared by the page and count queries.
func transactionFilterSQL(userID string, filter repository.TransactionFilter) (string, []bigquery.QueryParameter) {
	conds := []string{"user_id = @user_id"}
	params := []bigquery.QueryParameter{{Name: "user_id", Value: userID}}

	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		conds = append(conds, "(STRPOS(LOWER(title), @keyword) > 0 OR STRPOS(LOWER(IFNULL(category, '')), @keyword) > 0)")
		params = append(params, bigquery.QueryParameter{Name: "keyword", Value: strings.ToLower(kw)})
	}
	if filter.Type != "" {
		conds = append(conds, "type = @type")
		params = append(params, bigquery.QueryParameter{Name: "type", Value: string(filter.Type)})
	}
	if filter.Recurring != nil {
		conds = append(conds, "is_recurring = @is_recurring")
		params = append(params, bigquery.QueryParameter{Name: "is_recurring", Value: *filter.Recurring})
	}

	return strings.Join(conds, " AND "), params
}

// ListTransactions implements repository.TransactionRepository.
func (s *Store) ListTransactions(ctx context.Context, userID string, filter repository.TransactionFilter, page domain.Page) ([]*domain.Transaction, int, error) {
	page = page.Normalize()
	where, params := transactionFilterSQL(userID, filter)

	cq := s.client.Query(`SELECT COUNT(*) AS total FROM ` + s.table(transactionsTable) + ` WHERE ` + where)
	cq.Parameters = params
	total, err := count(ctx, cq)
	if err != nil {
		return nil, 0, fmt.Errorf("ListTransactions: counting: %w", err)
	}

	q := s.client.Query(`
		SELECT ` + transactionColumns + `
		FROM ` + s.table(transactionsTable) + `
		WHERE ` + where + `
		ORDER BY occurred_at DESC, created_ts DESC
		LIMIT @limit OFFSET @offset
	`)
	q.Parameters = append(params,
		bigquery.QueryParameter{Name: "limit", Value: int64(page.PageSize)},
		bigquery.QueryParameter{Name: "offset", Value: int64(page.Offset())},
	)

	txs, err := readTransactions(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("ListTransactions: %w", err)
	}
	return txs, total, nil
}

// ListTransactionsInRange implements repository.TransactionRepository.
func (s *Store) ListTransactionsInRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error) {
	q := s.client.Query(`
		SELECT ` + transactionColumns + `
		FROM ` + s.table(transactionsTable) + `
		WHERE user_id = @user_id
		  AND transaction_date BETWEEN DATE(@start_ts) AND DATE(@end_ts)
		  AND occurred_at >= @start_ts
		  AND occurred_at <= @end_ts
		ORDER BY occurred_at, created_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_ts", Value: start},
		{Name: "end_ts", Value: end},
	}

	txs, err := readTransactions(ctx, q)
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

	q := s.client.Query(`
		DELETE FROM ` + s.table(transactionsTable) + `
		WHERE user_id = @user_id AND transaction_id IN UNNEST(@ids)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "ids", Value: ids},
	}

	affected, err := runDML(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("DeleteTransactions: %w", err)
	}
	return int(affected), nil
}

func readTransactions(ctx context.Context, q *bigquery.Query) ([]*domain.Transaction, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query read: %w", err)
	}

	var txs []*domain.Transaction
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iter next: %w", err)
		}
		txs = append(txs, rowToTransaction(&r))
	}
	return txs, nil
}
