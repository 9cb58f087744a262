// Package memstore is an in-memory repository.Store.
//
// Update transactions are serialised by a single writer lock and work on a
// copy of the state that replaces the live state only when the unit of work
// succeeds. Lock* methods are therefore plain reads.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
	"github.com/okian/dojo/pkg/metrics"
)

// Store implements repository.Store in memory.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	events        map[int64]model.Event
	registrations map[int64]model.Registration
	competitors   map[int64]model.Competitor
	bouts         map[int64]model.Bout
	officials     map[int64]model.Official
	officiating   map[int64][]model.OfficiatingAssignment
	results       map[int64]model.BoutResult
	points        map[int64]model.PointsRecord
	thresholds    rank.Thresholds
	promotions    []model.PromotionRecord
	boards        map[model.LeaderboardKey]map[int64]model.LeaderboardEntry
	nextBoutID    int64
}

// New creates an empty store using thresholds as the rank table.
func New(thresholds rank.Thresholds) *Store {
	return &Store{state: &state{
		events:        map[int64]model.Event{},
		registrations: map[int64]model.Registration{},
		competitors:   map[int64]model.Competitor{},
		bouts:         map[int64]model.Bout{},
		officials:     map[int64]model.Official{},
		officiating:   map[int64][]model.OfficiatingAssignment{},
		results:       map[int64]model.BoutResult{},
		points:        map[int64]model.PointsRecord{},
		thresholds:    thresholds.Clone(),
		boards:        map[model.LeaderboardKey]map[int64]model.LeaderboardEntry{},
		nextBoutID:    1,
	}}
}

// View implements repository.Store.
func (s *Store) View(ctx context.Context, fn repository.TxFunc) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, &tx{st: s.state, readOnly: true})
}

// Update implements repository.Store.
func (s *Store) Update(ctx context.Context, fn repository.TxFunc) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	if err := fn(ctx, &tx{st: draft}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = draft
	return nil
}

// Close implements repository.Store.
func (s *Store) Close() error { return nil }

// PutEvent inserts or replaces an event.
func (s *Store) PutEvent(e model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.events[e.ID] = e
}

// PutCompetitor inserts or replaces a competitor.
func (s *Store) PutCompetitor(c model.Competitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.competitors[c.ID] = c
}

// PutRegistration inserts or replaces a registration.
func (s *Store) PutRegistration(r model.Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.registrations[r.ID] = r
}

// PutOfficial inserts or replaces an official.
func (s *Store) PutOfficial(o model.Official) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.officials[o.ID] = o
}

// PutBout inserts or replaces a bout and keeps generated ids above it.
func (s *Store) PutBout(b model.Bout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.bouts[b.ID] = b
	if b.ID >= s.state.nextBoutID {
		s.state.nextBoutID = b.ID + 1
	}
}

// SetThresholds replaces the rank table.
func (s *Store) SetThresholds(t rank.Thresholds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.thresholds = t.Clone()
}

func (st *state) clone() *state {
	out := &state{
		events:        make(map[int64]model.Event, len(st.events)),
		registrations: make(map[int64]model.Registration, len(st.registrations)),
		competitors:   make(map[int64]model.Competitor, len(st.competitors)),
		bouts:         make(map[int64]model.Bout, len(st.bouts)),
		officials:     make(map[int64]model.Official, len(st.officials)),
		officiating:   make(map[int64][]model.OfficiatingAssignment, len(st.officiating)),
		results:       make(map[int64]model.BoutResult, len(st.results)),
		points:        make(map[int64]model.PointsRecord, len(st.points)),
		thresholds:    st.thresholds.Clone(),
		promotions:    append([]model.PromotionRecord(nil), st.promotions...),
		boards:        make(map[model.LeaderboardKey]map[int64]model.LeaderboardEntry, len(st.boards)),
		nextBoutID:    st.nextBoutID,
	}
	for k, v := range st.events {
		out.events[k] = v
	}
	for k, v := range st.registrations {
		out.registrations[k] = v
	}
	for k, v := range st.competitors {
		out.competitors[k] = v
	}
	for k, v := range st.bouts {
		out.bouts[k] = v
	}
	for k, v := range st.officials {
		out.officials[k] = v
	}
	for k, v := range st.officiating {
		out.officiating[k] = append([]model.OfficiatingAssignment(nil), v...)
	}
	for k, v := range st.results {
		out.results[k] = v
	}
	for k, v := range st.points {
		out.points[k] = v
	}
	for k, board := range st.boards {
		cp := make(map[int64]model.LeaderboardEntry, len(board))
		for id, e := range board {
			cp[id] = e
		}
		out.boards[k] = cp
	}
	return out
}

type tx struct {
	st       *state
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	return nil
}

func (t *tx) Event(_ context.Context, id int64) (model.Event, error) {
	e, ok := t.st.events[id]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	return e, nil
}

func (t *tx) LockEvent(ctx context.Context, id int64) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.Event(ctx, id)
	return err
}

func (t *tx) Registrations(_ context.Context, eventID int64) ([]model.Registration, error) {
	var out []model.Registration
	for _, r := range t.st.registrations {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.After(out[j].RegisteredAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (t *tx) Competitor(_ context.Context, id int64) (model.Competitor, error) {
	c, ok := t.st.competitors[id]
	if !ok {
		return model.Competitor{}, repository.ErrCompetitorNotFound
	}
	return c, nil
}

func (t *tx) LockCompetitor(ctx context.Context, id int64) (model.Competitor, error) {
	if err := t.writable(); err != nil {
		return model.Competitor{}, err
	}
	return t.Competitor(ctx, id)
}

func (t *tx) Competitors(_ context.Context, ids []int64) (map[int64]model.Competitor, error) {
	out := make(map[int64]model.Competitor, len(ids))
	for _, id := range ids {
		if c, ok := t.st.competitors[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (t *tx) SetCompetitorRank(_ context.Context, id int64, r rank.Rank) error {
	if err := t.writable(); err != nil {
		return err
	}
	c, ok := t.st.competitors[id]
	if !ok {
		return repository.ErrCompetitorNotFound
	}
	c.Rank = r
	t.st.competitors[id] = c
	return nil
}

func (t *tx) Bout(_ context.Context, id int64) (model.Bout, error) {
	b, ok := t.st.bouts[id]
	if !ok {
		return model.Bout{}, repository.ErrBoutNotFound
	}
	return b, nil
}

func (t *tx) LockBout(ctx context.Context, id int64) (model.Bout, error) {
	if err := t.writable(); err != nil {
		return model.Bout{}, err
	}
	return t.Bout(ctx, id)
}

func (t *tx) EventBouts(_ context.Context, eventID int64) ([]model.Bout, error) {
	var out []model.Bout
	for _, b := range t.st.bouts {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *tx) CreateBout(_ context.Context, b *model.Bout) error {
	if err := t.writable(); err != nil {
		return err
	}
	b.ID = t.st.nextBoutID
	t.st.nextBoutID++
	t.st.bouts[b.ID] = *b
	return nil
}

func (t *tx) UpdateBout(_ context.Context, b model.Bout) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.bouts[b.ID]; !ok {
		return repository.ErrBoutNotFound
	}
	t.st.bouts[b.ID] = b
	return nil
}

func (t *tx) Official(_ context.Context, id int64) (model.Official, error) {
	o, ok := t.st.officials[id]
	if !ok {
		return model.Official{}, repository.ErrOfficialNotFound
	}
	return o, nil
}

func (t *tx) Officiating(_ context.Context, boutID int64) ([]int64, error) {
	panel := t.st.officiating[boutID]
	out := make([]int64, 0, len(panel))
	for _, a := range panel {
		out = append(out, a.OfficialID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (t *tx) ReplaceOfficiating(_ context.Context, boutID int64, officialIDs []int64, at time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	panel := make([]model.OfficiatingAssignment, 0, len(officialIDs))
	for _, id := range officialIDs {
		panel = append(panel, model.OfficiatingAssignment{BoutID: boutID, OfficialID: id, AssignedAt: at})
	}
	t.st.officiating[boutID] = panel
	return nil
}

func (t *tx) BoutResult(_ context.Context, boutID int64) (model.BoutResult, error) {
	r, ok := t.st.results[boutID]
	if !ok {
		return model.BoutResult{}, repository.ErrResultNotFound
	}
	return r, nil
}

func (t *tx) CreateBoutResult(_ context.Context, r model.BoutResult) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.results[r.BoutID]; ok {
		return repository.ErrResultExists
	}
	t.st.results[r.BoutID] = r
	return nil
}

func (t *tx) UpdateBoutResult(_ context.Context, r model.BoutResult) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.results[r.BoutID]; !ok {
		return repository.ErrResultNotFound
	}
	t.st.results[r.BoutID] = r
	return nil
}

func (t *tx) PointsForUpdate(_ context.Context, competitorID int64) (model.PointsRecord, error) {
	if err := t.writable(); err != nil {
		return model.PointsRecord{}, err
	}
	if _, ok := t.st.competitors[competitorID]; !ok {
		return model.PointsRecord{}, repository.ErrCompetitorNotFound
	}
	p, ok := t.st.points[competitorID]
	if !ok {
		p = model.PointsRecord{CompetitorID: competitorID}
		t.st.points[competitorID] = p
	}
	return p, nil
}

func (t *tx) Points(_ context.Context, competitorID int64) (model.PointsRecord, error) {
	p, ok := t.st.points[competitorID]
	if !ok {
		return model.PointsRecord{}, repository.ErrPointsNotFound
	}
	return p, nil
}

func (t *tx) SavePoints(_ context.Context, p model.PointsRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.st.points[p.CompetitorID] = p
	return nil
}

func (t *tx) AllPoints(_ context.Context) ([]model.PointsRecord, error) {
	out := make([]model.PointsRecord, 0, len(t.st.points))
	for _, p := range t.st.points {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompetitorID < out[j].CompetitorID })
	return out, nil
}

func (t *tx) RankThresholds(_ context.Context) (rank.Thresholds, error) {
	return t.st.thresholds.Clone(), nil
}

func (t *tx) CreatePromotion(_ context.Context, p model.PromotionRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.st.promotions = append(t.st.promotions, p)
	return nil
}

func (t *tx) Promotions(_ context.Context, competitorID int64) ([]model.PromotionRecord, error) {
	var out []model.PromotionRecord
	// Appended in order, so walking backwards yields newest first.
	for i := len(t.st.promotions) - 1; i >= 0; i-- {
		p := t.st.promotions[i]
		if competitorID != 0 && p.CompetitorID != competitorID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (t *tx) LockLeaderboards(_ context.Context) error { return t.writable() }

func (t *tx) UpsertLeaderboard(_ context.Context, key model.LeaderboardKey, entries []model.LeaderboardEntry) error {
	if err := t.writable(); err != nil {
		return err
	}
	board, ok := t.st.boards[key]
	if !ok {
		board = make(map[int64]model.LeaderboardEntry, len(entries))
		t.st.boards[key] = board
	}
	for _, e := range entries {
		e.Key = key
		board[e.CompetitorID] = e
	}
	return nil
}

func (t *tx) Leaderboard(_ context.Context, key model.LeaderboardKey) ([]model.LeaderboardEntry, error) {
	board := t.st.boards[key]
	out := make([]model.LeaderboardEntry, 0, len(board))
	for _, e := range board {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CompetitorID < out[j].CompetitorID
	})
	return out, nil
}
