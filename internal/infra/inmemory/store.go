// Package inmemory is a map-backed implementation of repository.Store.
// Data is lost on restart; it backs local runs (STORAGE_BACKEND=memory) and tests.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/repository"
)

// Store keeps every record in memory and is safe for concurrent use.
// Records are copied on the way in and out so callers cannot mutate stored state.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*domain.User
	transactions map[string]*domain.Transaction
	settings     map[string]*domain.ReportSetting
	reports      []*domain.Report
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*domain.User),
		transactions: make(map[string]*domain.Transaction),
		settings:     make(map[string]*domain.ReportSetting),
	}
}

// Close implements repository.Store.
func (s *Store) Close() error { return nil }

// CreateUser implements repository.UserRepository.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		return fmt.Errorf("CreateUser: user ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("CreateUser: %w: %s", domain.ErrAlreadyExists, user.ID)
	}
	u := *user
	s.users[user.ID] = &u
	return nil
}

// GetUser implements repository.UserRepository.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("GetUser: %w: %s", domain.ErrNotFound, id)
	}
	cp := *u
	return &cp, nil
}

// FindUserByEmail implements repository.UserRepository.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("FindUserByEmail: %w: %s", domain.ErrNotFound, email)
}

// DeleteUser removes a user but leaves their setting and transactions in place,
// the way a dangling owner reference looks in the other backends.
func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// InsertTransaction implements repository.TransactionRepository.
func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	return s.InsertTransactions(ctx, []*domain.Transaction{tx})
}

// InsertTransactions implements repository.TransactionRepository.
func (s *Store) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		if tx.ID == "" {
			return fmt.Errorf("InsertTransactions: transaction ID is required")
		}
		s.transactions[tx.ID] = copyTransaction(tx)
	}
	return nil
}

// UpdateTransaction implements repository.TransactionRepository.
func (s *Store) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return fmt.Errorf("UpdateTransaction: %w: %s", domain.ErrNotFound, tx.ID)
	}
	s.transactions[tx.ID] = copyTransaction(tx)
	return nil
}

// GetTransaction implements repository.TransactionRepository.
func (s *Store) GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, fmt.Errorf("GetTransaction: %w: %s", domain.ErrNotFound, id)
	}
	return copyTransaction(tx), nil
}

// ListTransactions implements repository.TransactionRepository.
func (s *Store) ListTransactions(ctx context.Context, userID string, filter repository.TransactionFilter, page domain.Page) ([]*domain.Transaction, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyword := strings.ToLower(strings.TrimSpace(filter.Keyword))

	var matched []*domain.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Recurring != nil && tx.IsRecurring != *filter.Recurring {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(tx.Title), keyword) &&
			!strings.Contains(strings.ToLower(tx.Category), keyword) {
			continue
		}
		matched = append(matched, tx)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].OccurredAt.After(matched[j].OccurredAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	matched = paginate(matched, page)

	result := make([]*domain.Transaction, 0, len(matched))
	for _, tx := range matched {
		result = append(result, copyTransaction(tx))
	}
	return result, total, nil
}

// ListTransactionsInRange implements repository.TransactionRepository.
func (s *Store) ListTransactionsInRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if tx.OccurredAt.Before(start) || tx.OccurredAt.After(end) {
			continue
		}
		result = append(result, copyTransaction(tx))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurredAt.Before(result[j].OccurredAt)
	})
	return result, nil
}

// DeleteTransactions implements repository.TransactionRepository.
func (s *Store) DeleteTransactions(ctx context.Context, userID string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if tx, ok := s.transactions[id]; ok && tx.UserID == userID {
			delete(s.transactions, id)
			deleted++
		}
	}
	return deleted, nil
}

// CreateReportSetting implements repository.ReportSettingRepository.
func (s *Store) CreateReportSetting(ctx context.Context, setting *domain.ReportSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.settings {
		if existing.UserID == setting.UserID {
			return fmt.Errorf("CreateReportSetting: %w: user %s", domain.ErrAlreadyExists, setting.UserID)
		}
	}
	s.settings[setting.ID] = copySetting(setting)
	return nil
}

// GetReportSettingByUser implements repository.ReportSettingRepository.
func (s *Store) GetReportSettingByUser(ctx context.Context, userID string) (*domain.ReportSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, setting := range s.settings {
		if setting.UserID == userID {
			return copySetting(setting), nil
		}
	}
	return nil, fmt.Errorf("GetReportSettingByUser: %w: user %s", domain.ErrNotFound, userID)
}

// UpdateReportSetting implements repository.ReportSettingRepository.
func (s *Store) UpdateReportSetting(ctx context.Context, setting *domain.ReportSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.settings[setting.ID]; !ok {
		return fmt.Errorf("UpdateReportSetting: %w: %s", domain.ErrNotFound, setting.ID)
	}
	s.settings[setting.ID] = copySetting(setting)
	return nil
}

// ListEnabledSettingsWithOwner implements repository.ReportSettingRepository.
func (s *Store) ListEnabledSettingsWithOwner(ctx context.Context) ([]domain.SettingWithOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SettingWithOwner
	for _, setting := range s.settings {
		if !setting.IsEnabled {
			continue
		}
		row := domain.SettingWithOwner{Setting: copySetting(setting)}
		if u, ok := s.users[setting.UserID]; ok {
			cp := *u
			row.Owner = &cp
		}
		result = append(result, row)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Setting.CreatedAt.Equal(result[j].Setting.CreatedAt) {
			return result[i].Setting.CreatedAt.Before(result[j].Setting.CreatedAt)
		}
		return result[i].Setting.ID < result[j].Setting.ID
	})
	return result, nil
}

// MarkReportSettingProcessed implements repository.ReportSettingRepository.
func (s *Store) MarkReportSettingProcessed(ctx context.Context, settingID string, processedAt time.Time, sentAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	setting, ok := s.settings[settingID]
	if !ok {
		return fmt.Errorf("MarkReportSettingProcessed: %w: %s", domain.ErrNotFound, settingID)
	}
	setting.UpdatedAt = processedAt
	if sentAt != nil {
		t := *sentAt
		setting.LastSentAt = &t
	}
	return nil
}

// InsertReport implements repository.ReportRepository.
func (s *Store) InsertReport(ctx context.Context, report *domain.Report) error {
	if report.ID == "" {
		return fmt.Errorf("InsertReport: report ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, copyReport(report))
	return nil
}

// ListReports implements repository.ReportRepository.
func (s *Store) ListReports(ctx context.Context, userID string, page domain.Page) ([]*domain.Report, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Report
	for i := len(s.reports) - 1; i >= 0; i-- {
		if s.reports[i].UserID == userID {
			matched = append(matched, s.reports[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	matched = paginate(matched, page)

	result := make([]*domain.Report, 0, len(matched))
	for _, r := range matched {
		result = append(result, copyReport(r))
	}
	return result, total, nil
}

// ListReportsSince implements repository.ReportRepository.
func (s *Store) ListReportsSince(ctx context.Context, since time.Time) ([]*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Report
	for _, r := range s.reports {
		if r.CreatedAt.Before(since) {
			continue
		}
		result = append(result, copyReport(r))
	}
	return result, nil
}

func paginate[T any](items []T, page domain.Page) []T {
	offset := page.Offset()
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if size := page.Normalize().PageSize; size < len(items) {
		items = items[:size]
	}
	return items
}

func copyTransaction(tx *domain.Transaction) *domain.Transaction {
	cp := *tx
	if tx.RecurringInterval != nil {
		i := *tx.RecurringInterval
		cp.RecurringInterval = &i
	}
	if tx.NextOccurrenceAt != nil {
		t := *tx.NextOccurrenceAt
		cp.NextOccurrenceAt = &t
	}
	if tx.LastProcessedAt != nil {
		t := *tx.LastProcessedAt
		cp.LastProcessedAt = &t
	}
	return &cp
}

func copySetting(s *domain.ReportSetting) *domain.ReportSetting {
	cp := *s
	if s.LastSentAt != nil {
		t := *s.LastSentAt
		cp.LastSentAt = &t
	}
	return &cp
}

func copyReport(r *domain.Report) *domain.Report {
	cp := *r
	if r.Payload.Summary != nil {
		sum := *r.Payload.Summary
		sum.Categories = append([]domain.CategoryBreakdown(nil), r.Payload.Summary.Categories...)
		cp.Payload.Summary = &sum
	}
	if r.Payload.Insights.Items != nil {
		cp.Payload.Insights.Items = make([]string, len(r.Payload.Insights.Items))
		copy(cp.Payload.Insights.Items, r.Payload.Insights.Items)
	}
	return &cp
}

// Ensure Store implements repository.Store.
var _ repository.Store = (*Store)(nil)
