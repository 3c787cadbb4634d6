package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/fingenius/internal/domain"
	"google.golang.org/api/iterator"
)

// CreateReportSetting implements repository.ReportSettingRepository.
// A user has at most one setting; the insert is skipped when one exists.
func (s *Store) CreateReportSetting(ctx context.Context, setting *domain.ReportSetting) error {
	row := settingToRow(setting)

	q := s.client.Query(`
		INSERT INTO ` + s.table(reportSettingsTable) + `
			(setting_id, user_id, frequency, is_enabled, last_sent_ts, created_ts, updated_ts)
		SELECT @setting_id, @user_id, @frequency, @is_enabled, @last_sent_ts, @created_ts, @updated_ts
		FROM UNNEST([1])
		WHERE NOT EXISTS (
			SELECT 1 FROM ` + s.table(reportSettingsTable) + ` WHERE user_id = @user_id
		)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "setting_id", Value: row.SettingID},
		{Name: "user_id", Value: row.UserID},
		{Name: "frequency", Value: row.Frequency},
		{Name: "is_enabled", Value: row.IsEnabled},
		{Name: "last_sent_ts", Value: row.LastSentTS},
		{Name: "created_ts", Value: row.CreatedTS},
		{Name: "updated_ts", Value: row.UpdatedTS},
	}

	affected, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("CreateReportSetting: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("CreateReportSetting: %w: user %s", domain.ErrAlreadyExists, setting.UserID)
	}
	return nil
}

// GetReportSettingByUser implements repository.ReportSettingRepository.
func (s *Store) GetReportSettingByUser(ctx context.Context, userID string) (*domain.ReportSetting, error) {
	q := s.client.Query(`
		SELECT setting_id, user_id, frequency, is_enabled, last_sent_ts, created_ts, updated_ts
		FROM ` + s.table(reportSettingsTable) + `
		WHERE user_id = @user_id
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{{Name: "user_id", Value: userID}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetReportSettingByUser: query read: %w", err)
	}

	var row ReportSettingRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, fmt.Errorf("GetReportSettingByUser: %w: user %s", domain.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("GetReportSettingByUser: iter next: %w", err)
	}
	return rowToSetting(&row), nil
}

// UpdateReportSetting implements repository.ReportSettingRepository.
func (s *Store) UpdateReportSetting(ctx context.Context, setting *domain.ReportSetting) error {
	row := settingToRow(setting)

	q := s.client.Query(`
		UPDATE ` + s.table(reportSettingsTable) + `
		SET frequency = @frequency,
			is_enabled = @is_enabled,
			last_sent_ts = @last_sent_ts,
			updated_ts = @updated_ts
		WHERE setting_id = @setting_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "setting_id", Value: row.SettingID},
		{Name: "frequency", Value: row.Frequency},
		{Name: "is_enabled", Value: row.IsEnabled},
		{Name: "last_sent_ts", Value: row.LastSentTS},
		{Name: "updated_ts", Value: row.UpdatedTS},
	}

	affected, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("UpdateReportSetting: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("UpdateReportSetting: %w: %s", domain.ErrNotFound, setting.ID)
	}
	return nil
}

// ListEnabledSettingsWithOwner implements repository.ReportSettingRepository.
func (s *Store) ListEnabledSettingsWithOwner(ctx context.Context) ([]domain.SettingWithOwner, error) {
	q := s.client.Query(`
		SELECT
			rs.setting_id,
			rs.user_id,
			rs.frequency,
			rs.is_enabled,
			rs.last_sent_ts,
			rs.created_ts,
			rs.updated_ts,
			u.user_id AS owner_id,
			u.name AS owner_name,
			u.email AS owner_email,
			u.created_ts AS owner_created_ts
		FROM ` + s.table(reportSettingsTable) + ` rs
		LEFT JOIN ` + s.table(usersTable) + ` u
		  ON rs.user_id = u.user_id
		WHERE rs.is_enabled = TRUE
		ORDER BY rs.created_ts, rs.setting_id
	`)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListEnabledSettingsWithOwner: query read: %w", err)
	}

	var result []domain.SettingWithOwner
	for {
		var r settingOwnerRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListEnabledSettingsWithOwner: iter next: %w", err)
		}
		result = append(result, rowToSettingWithOwner(&r))
	}
	return result, nil
}

// MarkReportSettingProcessed implements repository.ReportSettingRepository.
func (s *Store) MarkReportSettingProcessed(ctx context.Context, settingID string, processedAt time.Time, sentAt *time.Time) error {
	q := s.client.Query(`
		UPDATE ` + s.table(reportSettingsTable) + `
		SET updated_ts = @processed_ts,
			last_sent_ts = IFNULL(@sent_ts, last_sent_ts)
		WHERE setting_id = @setting_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "setting_id", Value: settingID},
		{Name: "processed_ts", Value: processedAt},
		{Name: "sent_ts", Value: nullTimestamp(sentAt)},
	}

	affected, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("MarkReportSettingProcessed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("MarkReportSettingProcessed: %w: %s", domain.ErrNotFound, settingID)
	}
	return nil
}
