package postgres

import (
	"github.com/dvloznov/fingenius/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements repository.Store over a shared pool.
type Store struct {
	db *pgxpool.Pool
}

// NewStore wraps a pool created by ConnectDB.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Close closes the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// Ensure Store implements repository.Store.
var _ repository.Store = (*Store)(nil)
