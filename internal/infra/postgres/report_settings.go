package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/jackc/pgx/v5"
)

// CreateReportSetting implements repository.ReportSettingRepository.
// report_settings.user_id is UNIQUE, so a second setting is rejected.
func (s *Store) CreateReportSetting(ctx context.Context, setting *domain.ReportSetting) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO report_settings (id, user_id, frequency, is_enabled, last_sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		setting.ID, setting.UserID, string(setting.Frequency), setting.IsEnabled,
		setting.LastSentAt, setting.CreatedAt, setting.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("CreateReportSetting: %w: user %s", domain.ErrAlreadyExists, setting.UserID)
	}
	if err != nil {
		return fmt.Errorf("CreateReportSetting: %w", err)
	}
	return nil
}

// GetReportSettingByUser implements repository.ReportSettingRepository.
func (s *Store) GetReportSettingByUser(ctx context.Context, userID string) (*domain.ReportSetting, error) {
	var (
		rs        domain.ReportSetting
		frequency string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, frequency, is_enabled, last_sent_at, created_at, updated_at
		FROM report_settings WHERE user_id = $1`, userID,
	).Scan(&rs.ID, &rs.UserID, &frequency, &rs.IsEnabled, &rs.LastSentAt, &rs.CreatedAt, &rs.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("GetReportSettingByUser: %w: user %s", domain.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("GetReportSettingByUser: %w", err)
	}
	rs.Frequency = domain.ReportFrequency(frequency)
	return &rs, nil
}

// UpdateReportSetting implements repository.ReportSettingRepository.
func (s *Store) UpdateReportSetting(ctx context.Context, setting *domain.ReportSetting) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE report_settings
		SET frequency = $2, is_enabled = $3, last_sent_at = $4, updated_at = $5
		WHERE id = $1`,
		setting.ID, string(setting.Frequency), setting.IsEnabled, setting.LastSentAt, setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("UpdateReportSetting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateReportSetting: %w: %s", domain.ErrNotFound, setting.ID)
	}
	return nil
}

// ListEnabledSettingsWithOwner implements repository.ReportSettingRepository.
func (s *Store) ListEnabledSettingsWithOwner(ctx context.Context) ([]domain.SettingWithOwner, error) {
	rows, err := s.db.Query(ctx, `
		SELECT rs.id, rs.user_id, rs.frequency, rs.is_enabled, rs.last_sent_at, rs.created_at, rs.updated_at,
		       u.id, u.name, u.email, u.created_at
		FROM report_settings rs
		LEFT JOIN users u ON u.id = rs.user_id
		WHERE rs.is_enabled
		ORDER BY rs.created_at, rs.id`)
	if err != nil {
		return nil, fmt.Errorf("ListEnabledSettingsWithOwner: %w", err)
	}
	defer rows.Close()

	var result []domain.SettingWithOwner
	for rows.Next() {
		var (
			rs                 domain.ReportSetting
			frequency          string
			ownerID, ownerName *string
			ownerEmail         *string
			ownerCreated       *time.Time
		)
		if err := rows.Scan(
			&rs.ID, &rs.UserID, &frequency, &rs.IsEnabled, &rs.LastSentAt, &rs.CreatedAt, &rs.UpdatedAt,
			&ownerID, &ownerName, &ownerEmail, &ownerCreated,
		); err != nil {
			return nil, fmt.Errorf("ListEnabledSettingsWithOwner: scan: %w", err)
		}
		rs.Frequency = domain.ReportFrequency(frequency)

		row := domain.SettingWithOwner{Setting: &rs}
		if ownerID != nil {
			row.Owner = &domain.User{ID: *ownerID}
			if ownerName != nil {
				row.Owner.Name = *ownerName
			}
			if ownerEmail != nil {
				row.Owner.Email = *ownerEmail
			}
			if ownerCreated != nil {
				row.Owner.CreatedAt = *ownerCreated
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListEnabledSettingsWithOwner: %w", err)
	}
	return result, nil
}

// MarkReportSettingProcessed implements repository.ReportSettingRepository.
func (s *Store) MarkReportSettingProcessed(ctx context.Context, settingID string, processedAt time.Time, sentAt *time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE report_settings
		SET updated_at = $2, last_sent_at = COALESCE($3, last_sent_at)
		WHERE id = $1`,
		settingID, processedAt, sentAt,
	)
	if err != nil {
		return fmt.Errorf("MarkReportSettingProcessed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("MarkReportSettingProcessed: %w: %s", domain.ErrNotFound, settingID)
	}
	return nil
}
