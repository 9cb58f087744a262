package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			stmts := []string{
				`CREATE TABLE IF NOT EXISTS events (
					id         bigserial    PRIMARY KEY,
					name       text         NOT NULL,
					event_date timestamptz  NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS competitors (
					id            bigserial     PRIMARY KEY,
					name          text          NOT NULL,
					rank          text          NOT NULL,
					weight_kg     numeric(6,2)  NOT NULL CHECK (weight_kg >= 0),
					date_of_birth timestamptz   NULL,
					status        text          NOT NULL DEFAULT 'active'
				)`,
				`CREATE TABLE IF NOT EXISTS event_registrations (
					id            bigserial   PRIMARY KEY,
					event_id      bigint      NOT NULL REFERENCES events(id),
					competitor_id bigint      NOT NULL REFERENCES competitors(id),
					status        text        NOT NULL DEFAULT 'registered',
					registered_at timestamptz NOT NULL DEFAULT now(),
					UNIQUE (event_id, competitor_id)
				)`,
				`CREATE TABLE IF NOT EXISTS bouts (
					id              bigserial   PRIMARY KEY,
					event_id        bigint      NOT NULL REFERENCES events(id),
					competitor_a_id bigint      NOT NULL REFERENCES competitors(id),
					competitor_b_id bigint      NOT NULL REFERENCES competitors(id),
					scheduled_at    timestamptz NOT NULL,
					status          text        NOT NULL DEFAULT 'scheduled',
					winner_id       bigint      NULL REFERENCES competitors(id),
					notes           text        NOT NULL DEFAULT '',
					created_at      timestamptz NOT NULL DEFAULT now(),
					CHECK (competitor_a_id <> competitor_b_id),
					CHECK (winner_id IS NULL OR winner_id IN (competitor_a_id, competitor_b_id))
				)`,
				`CREATE INDEX IF NOT EXISTS bouts_event_idx ON bouts (event_id)`,
				`CREATE TABLE IF NOT EXISTS officials (
					id            bigserial PRIMARY KEY,
					name          text      NOT NULL,
					certification text      NOT NULL,
					active        boolean   NOT NULL DEFAULT true,
					competitor_id bigint    NULL REFERENCES competitors(id)
				)`,
				`CREATE TABLE IF NOT EXISTS bout_officials (
					bout_id     bigint      NOT NULL REFERENCES bouts(id) ON DELETE CASCADE,
					official_id bigint      NOT NULL REFERENCES officials(id),
					assigned_at timestamptz NOT NULL DEFAULT now(),
					PRIMARY KEY (bout_id, official_id)
				)`,
				`CREATE TABLE IF NOT EXISTS bout_results (
					id           uuid        PRIMARY KEY,
					bout_id      bigint      NOT NULL UNIQUE REFERENCES bouts(id),
					official_id  bigint      NOT NULL REFERENCES officials(id),
					winner_id    bigint      NOT NULL REFERENCES competitors(id),
					score_a      integer     NOT NULL CHECK (score_a >= 0),
					score_b      integer     NOT NULL CHECK (score_b >= 0),
					notes        text        NOT NULL DEFAULT '',
					submitted_at timestamptz NOT NULL,
					locked       boolean     NOT NULL DEFAULT false
				)`,
				`CREATE TABLE IF NOT EXISTS points_records (
					competitor_id bigint      PRIMARY KEY REFERENCES competitors(id),
					total_points  integer     NOT NULL DEFAULT 0 CHECK (total_points >= 0),
					wins          integer     NOT NULL DEFAULT 0,
					losses        integer     NOT NULL DEFAULT 0,
					updated_at    timestamptz NOT NULL DEFAULT now()
				)`,
				`CREATE TABLE IF NOT EXISTS rank_thresholds (
					rank            text    PRIMARY KEY,
					points_required integer NOT NULL CHECK (points_required >= 0)
				)`,
				`CREATE TABLE IF NOT EXISTS promotion_records (
					id                  uuid        PRIMARY KEY,
					competitor_id       bigint      NOT NULL REFERENCES competitors(id),
					from_rank           text        NOT NULL,
					to_rank             text        NOT NULL,
					points_at_promotion integer     NOT NULL,
					trigger             text        NOT NULL,
					actor               text        NOT NULL DEFAULT '',
					note                text        NOT NULL DEFAULT '',
					promoted_at         timestamptz NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS promotion_records_competitor_idx ON promotion_records (competitor_id, promoted_at DESC)`,
				`CREATE TABLE IF NOT EXISTS leaderboard_entries (
					timeframe     text        NOT NULL,
					year          integer     NOT NULL DEFAULT 0,
					month         integer     NOT NULL DEFAULT 0,
					competitor_id bigint      NOT NULL REFERENCES competitors(id),
					position      integer     NOT NULL,
					points        integer     NOT NULL,
					rank          text        NOT NULL,
					updated_at    timestamptz NOT NULL,
					PRIMARY KEY (timeframe, year, month, competitor_id)
				)`,
			}
			for _, stmt := range stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, table := range []string{
				"leaderboard_entries", "promotion_records", "rank_thresholds", "points_records",
				"bout_results", "bout_officials", "officials", "bouts", "event_registrations",
				"competitors", "events",
			} {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
