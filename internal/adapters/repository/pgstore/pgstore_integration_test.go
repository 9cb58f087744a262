//go:build integration

package pgstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/adapters/repository/pgstore"
	"github.com/okian/dojo/internal/adapters/repository/pgstore/migrations"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

var errRollback = errors.New("rollback")

func setupStore(t *testing.T) *pgstore.Store {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dojo"),
		postgres.WithUsername("dojo"),
		postgres.WithPassword("dojo"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store := pgstore.Open(dsn)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Ping(ctx))

	_, err = migrations.Up(ctx, store.DB())
	require.NoError(t, err)

	require.NoError(t, store.SeedThresholds(ctx, rank.DefaultThresholds()))
	require.NoError(t, store.SeedEvent(ctx, model.Event{ID: 1, Name: "Autumn Cup", Date: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)}))
	for _, c := range []model.Competitor{
		{ID: 10, Name: "Aiko", Rank: rank.White, WeightKg: 60.25, Status: model.CompetitorActive},
		{ID: 11, Name: "Ben", Rank: rank.White, WeightKg: 62, Status: model.CompetitorActive},
	} {
		require.NoError(t, store.SeedCompetitor(ctx, c))
	}
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SeedRegistration(ctx, model.Registration{ID: 1, EventID: 1, CompetitorID: 10, Status: model.RegistrationRegistered, RegisteredAt: base}))
	require.NoError(t, store.SeedRegistration(ctx, model.Registration{ID: 2, EventID: 1, CompetitorID: 11, Status: model.RegistrationRegistered, RegisteredAt: base.Add(time.Hour)}))
	require.NoError(t, store.SeedOfficial(ctx, model.Official{ID: 5, Name: "Kato", Certification: model.CertificationNational, Active: true}))
	return store
}

func TestPGStore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	t.Run("reads seeded roster", func(t *testing.T) {
		err := store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
			regs, err := tx.Registrations(ctx, 1)
			require.NoError(t, err)
			require.Len(t, regs, 2)
			assert.Equal(t, int64(2), regs[0].ID)

			c, err := tx.Competitor(ctx, 10)
			require.NoError(t, err)
			assert.InDelta(t, 60.25, c.WeightKg, 0.001)

			th, err := tx.RankThresholds(ctx)
			require.NoError(t, err)
			assert.Equal(t, rank.DefaultThresholds(), th)

			_, err = tx.Bout(ctx, 999)
			assert.ErrorIs(t, err, repository.ErrBoutNotFound)
			return nil
		})
		require.NoError(t, err)
	})

	var boutID int64
	t.Run("creates bouts and panels", func(t *testing.T) {
		err := store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
			require.NoError(t, tx.LockEvent(ctx, 1))
			b := model.Bout{EventID: 1, CompetitorA: 10, CompetitorB: 11, ScheduledAt: time.Now().UTC(), Status: model.BoutScheduled, CreatedAt: time.Now().UTC()}
			require.NoError(t, tx.CreateBout(ctx, &b))
			boutID = b.ID
			return tx.ReplaceOfficiating(ctx, b.ID, []int64{5}, time.Now().UTC())
		})
		require.NoError(t, err)
		assert.NotZero(t, boutID)

		_ = store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
			panel, err := tx.Officiating(ctx, boutID)
			require.NoError(t, err)
			assert.Equal(t, []int64{5}, panel)
			return nil
		})
	})

	t.Run("rolls back on error", func(t *testing.T) {
		err := store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
			p, err := tx.PointsForUpdate(ctx, 10)
			require.NoError(t, err)
			p.TotalPoints += 30
			require.NoError(t, tx.SavePoints(ctx, p))
			return errRollback
		})
		assert.ErrorIs(t, err, errRollback)

		_ = store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
			_, err := tx.Points(ctx, 10)
			assert.ErrorIs(t, err, repository.ErrPointsNotFound)
			return nil
		})
	})

	t.Run("refuses a second result for a bout", func(t *testing.T) {
		res := model.BoutResult{ID: uuid.New(), BoutID: boutID, OfficialID: 5, WinnerID: 10, ScoreA: 3, SubmittedAt: time.Now().UTC(), Locked: true}
		require.NoError(t, store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
			return tx.CreateBoutResult(ctx, res)
		}))

		err := store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
			dup := res
			dup.ID = uuid.New()
			return tx.CreateBoutResult(ctx, dup)
		})
		assert.ErrorIs(t, err, repository.ErrResultExists)
	})

	t.Run("upserts leaderboards per key", func(t *testing.T) {
		key := model.MonthlyKey(2026, time.October)
		now := time.Now().UTC()
		require.NoError(t, store.Update(ctx, func(ctx context.Context, tx repository.Tx) error {
			require.NoError(t, tx.LockLeaderboards(ctx))
			require.NoError(t, tx.UpsertLeaderboard(ctx, key, []model.LeaderboardEntry{
				{CompetitorID: 10, Position: 1, Points: 30, Rank: rank.White, UpdatedAt: now},
				{CompetitorID: 11, Position: 2, Points: 10, Rank: rank.White, UpdatedAt: now},
			}))
			return tx.UpsertLeaderboard(ctx, key, []model.LeaderboardEntry{
				{CompetitorID: 11, Position: 1, Points: 40, Rank: rank.White, UpdatedAt: now},
				{CompetitorID: 10, Position: 2, Points: 30, Rank: rank.White, UpdatedAt: now},
			})
		}))

		_ = store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
			board, err := tx.Leaderboard(ctx, key)
			require.NoError(t, err)
			require.Len(t, board, 2)
			assert.Equal(t, int64(11), board[0].CompetitorID)
			assert.Equal(t, key, board[0].Key)

			other, err := tx.Leaderboard(ctx, model.AllTimeKey())
			require.NoError(t, err)
			assert.Empty(t, other)
			return nil
		})
	})

	t.Run("writes are refused in view", func(t *testing.T) {
		err := store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
			return tx.SetCompetitorRank(ctx, 10, rank.Yellow)
		})
		assert.ErrorIs(t, err, repository.ErrReadOnly)
	})
}
