package report_test

import (
	"context"
	"testing"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/infra/inmemory"
	"github.com/dvloznov/fingenius/internal/report"
	mock_report "github.com/dvloznov/fingenius/internal/report/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(store *inmemory.Store, insights report.InsightSource) *report.Service {
	return report.NewService(store, store, store, report.NewAggregator(store), insights)
}

func TestService_Preview(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := inmemory.NewStore()
	seedUser(t, store, "u1", janStart, true)

	insights := mock_report.NewMockInsightSource(ctrl)
	insights.EXPECT().Generate(gomock.Any(), gomock.Not(gomock.Nil())).Return(generated)

	payload, err := newService(store, insights).Preview(context.Background(), "u1", janStart, janEnd)
	require.NoError(t, err)
	require.NotNil(t, payload.Summary)
	assert.Equal(t, 500.0, payload.Summary.TotalExpense)
	assert.Equal(t, generated, payload.Insights)

	assert.Empty(t, reportsFor(t, store, "u1"), "preview must not store a report")
}

func TestService_Preview_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := inmemory.NewStore()
	seedUser(t, store, "u1", janStart, true)
	svc := newService(store, mock_report.NewMockInsightSource(ctrl))

	_, err := svc.Preview(context.Background(), "missing", janStart, janEnd)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Preview(context.Background(), "u1", janEnd, janStart)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestService_ListReports(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.InsertReport(ctx, &domain.Report{
			ID:        string(rune('a' + i)),
			UserID:    "u1",
			Status:    domain.ReportStatusCompleted,
			CreatedAt: janStart.AddDate(0, 0, i),
		}))
	}

	svc := newService(store, nil)

	reports, pagination, err := svc.ListReports(ctx, "u1", domain.Page{PageSize: 2, PageNumber: 1})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "e", reports[0].ID)
	assert.Equal(t, "d", reports[1].ID)
	assert.Equal(t, domain.Pagination{PageSize: 2, PageNumber: 1, TotalCount: 5, TotalPages: 3}, pagination)

	reports, pagination, err = svc.ListReports(ctx, "u1", domain.Page{PageSize: 2, PageNumber: 3})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "a", reports[0].ID)
	assert.Equal(t, 3, pagination.PageNumber)
}

func TestService_UpdateSetting(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	require.NoError(t, store.CreateUser(ctx, &domain.User{ID: "u1", Email: "u1@example.com"}))
	svc := newService(store, nil)

	_, err := svc.GetSetting(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	weekly := domain.FrequencyWeekly
	setting, err := svc.UpdateSetting(ctx, "u1", report.SettingUpdate{Frequency: &weekly})
	require.NoError(t, err)
	assert.Equal(t, domain.FrequencyWeekly, setting.Frequency)
	assert.True(t, setting.IsEnabled)
	assert.NotEmpty(t, setting.ID)

	disabled := false
	updated, err := svc.UpdateSetting(ctx, "u1", report.SettingUpdate{IsEnabled: &disabled})
	require.NoError(t, err)
	assert.Equal(t, setting.ID, updated.ID)
	assert.Equal(t, domain.FrequencyWeekly, updated.Frequency)
	assert.False(t, updated.IsEnabled)

	stored, err := svc.GetSetting(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, stored.IsEnabled)
}

func TestService_UpdateSetting_Invalid(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	require.NoError(t, store.CreateUser(ctx, &domain.User{ID: "u1"}))
	svc := newService(store, nil)

	hourly := domain.ReportFrequency("HOURLY")
	_, err := svc.UpdateSetting(ctx, "u1", report.SettingUpdate{Frequency: &hourly})
	assert.ErrorIs(t, err, domain.ErrInvalidFrequency)

	enabled := true
	_, err = svc.UpdateSetting(ctx, "missing", report.SettingUpdate{IsEnabled: &enabled})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
