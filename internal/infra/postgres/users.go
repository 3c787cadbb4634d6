package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/jackc/pgx/v5"
)

// CreateUser implements repository.UserRepository.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)`,
		user.ID, user.Name, user.Email, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("CreateUser: %w: %s", domain.ErrAlreadyExists, user.Email)
	}
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetUser implements repository.UserRepository.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.scanUser(s.db.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return u, nil
}

// FindUserByEmail implements repository.UserRepository.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.scanUser(s.db.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, fmt.Errorf("FindUserByEmail: %w", err)
	}
	return u, nil
}

func (s *Store) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
