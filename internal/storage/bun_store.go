// Package storage implements the Job/Content repositories (§4.5) over
// Postgres via bun, adapted from the teacher's BunStore: models carry
// bun struct tags, schema creation is idempotent (IfNotExists), and
// multi-row writes run inside a transaction.
package storage

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Store owns the bun connection shared by JobRepository and
// ContentRepository.
type Store struct {
	db *bun.DB
}

// NewStore opens a Postgres connection pool via pgdriver/pgdialect, the
// same stack the teacher module uses.
func NewStore(dsn string, maxOpenConns, maxIdleConns int) *Store {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(maxOpenConns)
	sqldb.SetMaxIdleConns(maxIdleConns)
	db := bun.NewDB(sqldb, pgdialect.New())
	return &Store{db: db}
}

// InitSchema creates the jobs/scenarios/content tables if they don't
// already exist.
func (s *Store) InitSchema(ctx context.Context) error {
	models := []interface{}{
		(*JobModel)(nil),
		(*ScenarioModel)(nil),
		(*ContentModel)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.DB.Close()
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
