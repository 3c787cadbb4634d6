// Package users registers users and reads them back.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/dvloznov/fingenius/internal/repository"
	"github.com/google/uuid"
)

// ErrInvalidEmail is returned when a registration carries an unusable address.
var ErrInvalidEmail = errors.New("invalid email")

// NewUser is a registration request.
type NewUser struct {
	Name  string
	Email string
}

// Service owns user registration.
type Service struct {
	users    repository.UserRepository
	settings repository.ReportSettingRepository
	now      func() time.Time
	newID    func() string
}

// NewService creates a users service.
func NewService(users repository.UserRepository, settings repository.ReportSettingRepository) *Service {
	return &Service{
		users:    users,
		settings: settings,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Register creates a user together with a default monthly report setting.
func (s *Service) Register(ctx context.Context, in NewUser) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("Register: %w: %q", ErrInvalidEmail, in.Email)
	}

	_, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("Register: %w: email %s", domain.ErrAlreadyExists, email)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("Register: looking up email: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:        s.newID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		CreatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("Register: creating user: %w", err)
	}

	setting := domain.NewDefaultReportSetting(s.newID(), user.ID, now)
	if err := s.settings.CreateReportSetting(ctx, setting); err != nil {
		return nil, fmt.Errorf("Register: creating report setting: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return user, nil
}
