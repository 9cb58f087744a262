// Package pgstore is a repository.Store on PostgreSQL through bun.
//
// Update runs at READ COMMITTED and relies on explicit locks: bouts and
// points rows are taken FOR UPDATE, confirmation and leaderboard rebuilds
// hold transaction-scoped advisory locks.
package pgstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/pkg/metrics"
)

// Store implements repository.Store on a bun database.
type Store struct {
	db *bun.DB
}

// Open connects to dsn with pgdriver. The connection is lazy; use Ping to check it.
func Open(dsn string) *Store {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return New(bun.NewDB(sqldb, pgdialect.New()))
}

// New wraps an existing bun database.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations.
func (s *Store) DB() *bun.DB { return s.db }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return eris.Wrap(err, "pgstore: ping")
	}
	return nil
}

// View implements repository.Store.
func (s *Store) View(ctx context.Context, fn repository.TxFunc) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	return s.db.RunInTx(ctx, opts, func(ctx context.Context, btx bun.Tx) error {
		return fn(ctx, &tx{db: btx, readOnly: true})
	})
}

// Update implements repository.Store.
func (s *Store) Update(ctx context.Context, fn repository.TxFunc) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return s.db.RunInTx(ctx, opts, func(ctx context.Context, btx bun.Tx) error {
		return fn(ctx, &tx{db: btx})
	})
}

// Close implements repository.Store.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return eris.Wrap(err, "pgstore: close")
	}
	return nil
}
