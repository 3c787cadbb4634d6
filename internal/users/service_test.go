package users_test

import (
	"context"
	"testing"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/infra/inmemory"
	"github.com/dvloznov/fingenius/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	svc := users.NewService(store, store)

	user, err := svc.Register(ctx, users.NewUser{Name: " Ada ", Email: "Ada@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)

	setting, err := store.GetReportSettingByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FrequencyMonthly, setting.Frequency)
	assert.True(t, setting.IsEnabled)
	assert.Nil(t, setting.LastSentAt)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestService_Register_Rejects(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStore()
	svc := users.NewService(store, store)

	_, err := svc.Register(ctx, users.NewUser{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		email string
		want  error
	}{
		{"duplicate email", "ADA@example.com", domain.ErrAlreadyExists},
		{"not an address", "ada-at-example", users.ErrInvalidEmail},
		{"empty", "", users.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, users.NewUser{Name: "x", Email: tt.email})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_Get_NotFound(t *testing.T) {
	store := inmemory.NewStore()
	_, err := users.NewService(store, store).Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
