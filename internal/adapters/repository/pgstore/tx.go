package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

const (
	pgUniqueViolation = "23505"
	leaderboardLock   = "dojo:leaderboards"
)

type tx struct {
	db       bun.IDB
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	return nil
}

func notFound(err, kind error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return kind
	}
	return eris.Wrapf(err, format, args...)
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation
}

func (t *tx) advisoryLock(ctx context.Context, key string) error {
	_, err := t.db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx)
	return eris.Wrapf(err, "pgstore: advisory lock %s", key)
}

func (t *tx) Event(ctx context.Context, id int64) (model.Event, error) {
	var row EventRow
	if err := t.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return model.Event{}, notFound(err, repository.ErrEventNotFound, "pgstore: load event %d", id)
	}
	return row.toModel(), nil
}

func (t *tx) LockEvent(ctx context.Context, id int64) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, err := t.Event(ctx, id); err != nil {
		return err
	}
	return t.advisoryLock(ctx, fmt.Sprintf("dojo:event:%d", id))
}

func (t *tx) Registrations(ctx context.Context, eventID int64) ([]model.Registration, error) {
	var rows []RegistrationRow
	err := t.db.NewSelect().Model(&rows).
		Where("event_id = ?", eventID).
		Order("registered_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "pgstore: registrations of event %d", eventID)
	}
	out := make([]model.Registration, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (t *tx) Competitor(ctx context.Context, id int64) (model.Competitor, error) {
	var row CompetitorRow
	if err := t.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return model.Competitor{}, notFound(err, repository.ErrCompetitorNotFound, "pgstore: load competitor %d", id)
	}
	return row.toModel(), nil
}

func (t *tx) LockCompetitor(ctx context.Context, id int64) (model.Competitor, error) {
	if err := t.writable(); err != nil {
		return model.Competitor{}, err
	}
	var row CompetitorRow
	if err := t.db.NewSelect().Model(&row).Where("id = ?", id).For("UPDATE").Scan(ctx); err != nil {
		return model.Competitor{}, notFound(err, repository.ErrCompetitorNotFound, "pgstore: lock competitor %d", id)
	}
	return row.toModel(), nil
}

func (t *tx) Competitors(ctx context.Context, ids []int64) (map[int64]model.Competitor, error) {
	out := make(map[int64]model.Competitor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []CompetitorRow
	if err := t.db.NewSelect().Model(&rows).Where("id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, eris.Wrap(err, "pgstore: load competitors")
	}
	for _, r := range rows {
		out[r.ID] = r.toModel()
	}
	return out, nil
}

func (t *tx) SetCompetitorRank(ctx context.Context, id int64, r rank.Rank) error {
	if err := t.writable(); err != nil {
		return err
	}
	res, err := t.db.NewUpdate().Model((*CompetitorRow)(nil)).
		Set("rank = ?", string(r)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return eris.Wrapf(err, "pgstore: set rank of competitor %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrCompetitorNotFound
	}
	return nil
}

func (t *tx) Bout(ctx context.Context, id int64) (model.Bout, error) {
	var row BoutRow
	if err := t.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return model.Bout{}, notFound(err, repository.ErrBoutNotFound, "pgstore: load bout %d", id)
	}
	return row.toModel(), nil
}

func (t *tx) LockBout(ctx context.Context, id int64) (model.Bout, error) {
	if err := t.writable(); err != nil {
		return model.Bout{}, err
	}
	var row BoutRow
	if err := t.db.NewSelect().Model(&row).Where("id = ?", id).For("UPDATE").Scan(ctx); err != nil {
		return model.Bout{}, notFound(err, repository.ErrBoutNotFound, "pgstore: lock bout %d", id)
	}
	return row.toModel(), nil
}

func (t *tx) EventBouts(ctx context.Context, eventID int64) ([]model.Bout, error) {
	var rows []BoutRow
	err := t.db.NewSelect().Model(&rows).
		Where("event_id = ?", eventID).
		Order("scheduled_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "pgstore: bouts of event %d", eventID)
	}
	out := make([]model.Bout, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (t *tx) CreateBout(ctx context.Context, b *model.Bout) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := boutRow(*b)
	row.ID = 0
	if _, err := t.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return eris.Wrap(err, "pgstore: create bout")
	}
	b.ID = row.ID
	return nil
}

func (t *tx) UpdateBout(ctx context.Context, b model.Bout) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := boutRow(b)
	res, err := t.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return eris.Wrapf(err, "pgstore: update bout %d", b.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrBoutNotFound
	}
	return nil
}

func (t *tx) Official(ctx context.Context, id int64) (model.Official, error) {
	var row OfficialRow
	if err := t.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return model.Official{}, notFound(err, repository.ErrOfficialNotFound, "pgstore: load official %d", id)
	}
	return row.toModel(), nil
}

func (t *tx) Officiating(ctx context.Context, boutID int64) ([]int64, error) {
	var ids []int64
	err := t.db.NewSelect().Model((*OfficiatingRow)(nil)).
		Column("official_id").
		Where("bout_id = ?", boutID).
		Order("official_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, eris.Wrapf(err, "pgstore: panel of bout %d", boutID)
	}
	return ids, nil
}

func (t *tx) ReplaceOfficiating(ctx context.Context, boutID int64, officialIDs []int64, at time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, err := t.db.NewDelete().Model((*OfficiatingRow)(nil)).Where("bout_id = ?", boutID).Exec(ctx); err != nil {
		return eris.Wrapf(err, "pgstore: clear panel of bout %d", boutID)
	}
	if len(officialIDs) == 0 {
		return nil
	}
	rows := make([]OfficiatingRow, 0, len(officialIDs))
	for _, id := range officialIDs {
		rows = append(rows, OfficiatingRow{BoutID: boutID, OfficialID: id, AssignedAt: at})
	}
	if _, err := t.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return eris.Wrapf(err, "pgstore: assign panel of bout %d", boutID)
	}
	return nil
}

func (t *tx) BoutResult(ctx context.Context, boutID int64) (model.BoutResult, error) {
	var row ResultRow
	if err := t.db.NewSelect().Model(&row).Where("bout_id = ?", boutID).Scan(ctx); err != nil {
		return model.BoutResult{}, notFound(err, repository.ErrResultNotFound, "pgstore: result of bout %d", boutID)
	}
	return row.toModel(), nil
}

func (t *tx) CreateBoutResult(ctx context.Context, r model.BoutResult) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := resultRow(r)
	if _, err := t.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrResultExists
		}
		return eris.Wrapf(err, "pgstore: create result of bout %d", r.BoutID)
	}
	return nil
}

func (t *tx) UpdateBoutResult(ctx context.Context, r model.BoutResult) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := resultRow(r)
	res, err := t.db.NewUpdate().Model(&row).
		Column("official_id", "winner_id", "score_a", "score_b", "notes", "submitted_at", "locked").
		Where("bout_id = ?", r.BoutID).
		Exec(ctx)
	if err != nil {
		return eris.Wrapf(err, "pgstore: update result of bout %d", r.BoutID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrResultNotFound
	}
	return nil
}

func (t *tx) PointsForUpdate(ctx context.Context, competitorID int64) (model.PointsRecord, error) {
	if err := t.writable(); err != nil {
		return model.PointsRecord{}, err
	}
	if _, err := t.Competitor(ctx, competitorID); err != nil {
		return model.PointsRecord{}, err
	}
	seed := PointsRow{CompetitorID: competitorID, UpdatedAt: time.Now().UTC()}
	if _, err := t.db.NewInsert().Model(&seed).On("CONFLICT (competitor_id) DO NOTHING").Exec(ctx); err != nil {
		return model.PointsRecord{}, eris.Wrapf(err, "pgstore: create points of competitor %d", competitorID)
	}
	var row PointsRow
	err := t.db.NewSelect().Model(&row).
		Where("competitor_id = ?", competitorID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return model.PointsRecord{}, eris.Wrapf(err, "pgstore: lock points of competitor %d", competitorID)
	}
	return row.toModel(), nil
}

func (t *tx) Points(ctx context.Context, competitorID int64) (model.PointsRecord, error) {
	var row PointsRow
	if err := t.db.NewSelect().Model(&row).Where("competitor_id = ?", competitorID).Scan(ctx); err != nil {
		return model.PointsRecord{}, notFound(err, repository.ErrPointsNotFound, "pgstore: points of competitor %d", competitorID)
	}
	return row.toModel(), nil
}

func (t *tx) SavePoints(ctx context.Context, p model.PointsRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := PointsRow{
		CompetitorID: p.CompetitorID,
		TotalPoints:  p.TotalPoints,
		Wins:         p.Wins,
		Losses:       p.Losses,
		UpdatedAt:    p.UpdatedAt,
	}
	_, err := t.db.NewInsert().Model(&row).
		On("CONFLICT (competitor_id) DO UPDATE").
		Set("total_points = EXCLUDED.total_points").
		Set("wins = EXCLUDED.wins").
		Set("losses = EXCLUDED.losses").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return eris.Wrapf(err, "pgstore: save points of competitor %d", p.CompetitorID)
}

func (t *tx) AllPoints(ctx context.Context) ([]model.PointsRecord, error) {
	var rows []PointsRow
	if err := t.db.NewSelect().Model(&rows).Order("competitor_id ASC").Scan(ctx); err != nil {
		return nil, eris.Wrap(err, "pgstore: list points")
	}
	out := make([]model.PointsRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (t *tx) RankThresholds(ctx context.Context) (rank.Thresholds, error) {
	var rows []ThresholdRow
	if err := t.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, eris.Wrap(err, "pgstore: load rank thresholds")
	}
	out := make(rank.Thresholds, len(rows))
	for _, r := range rows {
		out[rank.Rank(r.Rank)] = r.PointsRequired
	}
	if err := out.Validate(); err != nil {
		return nil, eris.Wrap(err, "pgstore: stored rank thresholds")
	}
	return out, nil
}

func (t *tx) CreatePromotion(ctx context.Context, p model.PromotionRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := promotionRow(p)
	_, err := t.db.NewInsert().Model(&row).Exec(ctx)
	return eris.Wrapf(err, "pgstore: record promotion of competitor %d", p.CompetitorID)
}

func (t *tx) Promotions(ctx context.Context, competitorID int64) ([]model.PromotionRecord, error) {
	var rows []PromotionRow
	q := t.db.NewSelect().Model(&rows).Order("promoted_at DESC", "id DESC")
	if competitorID != 0 {
		q = q.Where("competitor_id = ?", competitorID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, eris.Wrap(err, "pgstore: list promotions")
	}
	out := make([]model.PromotionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (t *tx) LockLeaderboards(ctx context.Context) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.advisoryLock(ctx, leaderboardLock)
}

func (t *tx) UpsertLeaderboard(ctx context.Context, key model.LeaderboardKey, entries []model.LeaderboardEntry) error {
	if err := t.writable(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, LeaderboardRow{
			Timeframe:    string(key.Timeframe),
			Year:         key.Year,
			Month:        key.Month,
			CompetitorID: e.CompetitorID,
			Position:     e.Position,
			Points:       e.Points,
			Rank:         string(e.Rank),
			UpdatedAt:    e.UpdatedAt,
		})
	}
	// Stable row order keeps concurrent upserts from locking in opposite orders.
	sort.Slice(rows, func(i, j int) bool { return rows[i].CompetitorID < rows[j].CompetitorID })

	_, err := t.db.NewInsert().Model(&rows).
		On("CONFLICT (timeframe, year, month, competitor_id) DO UPDATE").
		Set("position = EXCLUDED.position").
		Set("points = EXCLUDED.points").
		Set("rank = EXCLUDED.rank").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return eris.Wrapf(err, "pgstore: upsert leaderboard %s", key)
}

func (t *tx) Leaderboard(ctx context.Context, key model.LeaderboardKey) ([]model.LeaderboardEntry, error) {
	var rows []LeaderboardRow
	err := t.db.NewSelect().Model(&rows).
		Where("timeframe = ?", string(key.Timeframe)).
		Where("year = ?", key.Year).
		Where("month = ?", key.Month).
		Order("position ASC", "competitor_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "pgstore: load leaderboard %s", key)
	}
	out := make([]model.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}
