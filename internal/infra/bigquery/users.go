package bigquery

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/fingenius/internal/domain"
	"google.golang.org/api/iterator"
)

// CreateUser implements repository.UserRepository.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	row := userToRow(user)

	q := s.client.Query(`
		INSERT INTO ` + s.table(usersTable) + ` (user_id, name, email, created_ts)
		SELECT @user_id, @name, @email, @created_ts
		FROM UNNEST([1])
		WHERE NOT EXISTS (
			SELECT 1 FROM ` + s.table(usersTable) + ` WHERE user_id = @user_id OR LOWER(email) = LOWER(@email)
		)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: row.UserID},
		{Name: "name", Value: row.Name},
		{Name: "email", Value: row.Email},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	affected, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("CreateUser: %w: %s", domain.ErrAlreadyExists, user.Email)
	}
	return nil
}

// GetUser implements repository.UserRepository.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	q := s.client.Query(`
		SELECT user_id, name, email, created_ts
		FROM ` + s.table(usersTable) + `
		WHERE user_id = @user_id
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{{Name: "user_id", Value: id}}

	u, err := s.readUser(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return u, nil
}

// FindUserByEmail implements repository.UserRepository.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := s.client.Query(`
		SELECT user_id, name, email, created_ts
		FROM ` + s.table(usersTable) + `
		WHERE LOWER(email) = @email
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{{Name: "email", Value: strings.ToLower(email)}}

	u, err := s.readUser(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("FindUserByEmail: %w", err)
	}
	return u, nil
}

func (s *Store) readUser(ctx context.Context, q *bigquery.Query) (*domain.User, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query read: %w", err)
	}

	var row UserRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("iter next: %w", err)
	}
	return rowToUser(&row), nil
}
