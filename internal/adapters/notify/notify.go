// Package notify publishes domain events after a transaction commits.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rotisserie/eris"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
)

// Topics.
const (
	TopicResultRecorded     = "result.recorded"
	TopicCompetitorPromoted = "competitor.promoted"
	TopicBoutsConfirmed     = "bouts.confirmed"
)

// ResultRecorded is the payload of TopicResultRecorded.
type ResultRecorded struct {
	ResultID    string    `json:"result_id"`
	BoutID      int64     `json:"bout_id"`
	EventID     int64     `json:"event_id"`
	WinnerID    int64     `json:"winner_id"`
	LoserID     int64     `json:"loser_id"`
	ScoreA      int       `json:"score_a"`
	ScoreB      int       `json:"score_b"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CompetitorPromoted is the payload of TopicCompetitorPromoted.
type CompetitorPromoted struct {
	PromotionID  string    `json:"promotion_id"`
	CompetitorID int64     `json:"competitor_id"`
	FromRank     rank.Rank `json:"from_rank"`
	ToRank       rank.Rank `json:"to_rank"`
	Points       int       `json:"points"`
	Trigger      string    `json:"trigger"`
	PromotedAt   time.Time `json:"promoted_at"`
}

// BoutsConfirmed is the payload of TopicBoutsConfirmed.
type BoutsConfirmed struct {
	EventID int64   `json:"event_id"`
	BoutIDs []int64 `json:"bout_ids"`
}

// Notifier announces committed decisions. Implementations must not block
// the caller on slow consumers.
type Notifier interface {
	ResultRecorded(ctx context.Context, r model.BoutResult, b model.Bout) error
	CompetitorPromoted(ctx context.Context, p model.PromotionRecord) error
	BoutsConfirmed(ctx context.Context, eventID int64, bouts []model.Bout) error
	Close() error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) ResultRecorded(context.Context, model.BoutResult, model.Bout) error { return nil }
func (Nop) CompetitorPromoted(context.Context, model.PromotionRecord) error    { return nil }
func (Nop) BoutsConfirmed(context.Context, int64, []model.Bout) error          { return nil }
func (Nop) Close() error                                                       { return nil }

// Bus publishes notifications on an in-process watermill pub/sub.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus returns a Bus whose subscribers each get a buffered channel.
func NewBus(log *slog.Logger, buffer int64) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: buffer,
		}, watermill.NewSlogLogger(log)),
	}
}

// Subscribe returns the messages published on topic from now on.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "notify: encode %s", topic)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)
	return eris.Wrapf(b.pubsub.Publish(topic, msg), "notify: publish %s", topic)
}

func (b *Bus) ResultRecorded(_ context.Context, r model.BoutResult, bout model.Bout) error {
	loser, _ := bout.Opponent(r.WinnerID)
	return b.publish(TopicResultRecorded, ResultRecorded{
		ResultID:    r.ID.String(),
		BoutID:      r.BoutID,
		EventID:     bout.EventID,
		WinnerID:    r.WinnerID,
		LoserID:     loser,
		ScoreA:      r.ScoreA,
		ScoreB:      r.ScoreB,
		SubmittedAt: r.SubmittedAt,
	})
}

func (b *Bus) CompetitorPromoted(_ context.Context, p model.PromotionRecord) error {
	return b.publish(TopicCompetitorPromoted, CompetitorPromoted{
		PromotionID:  p.ID.String(),
		CompetitorID: p.CompetitorID,
		FromRank:     p.FromRank,
		ToRank:       p.ToRank,
		Points:       p.PointsAtPromotion,
		Trigger:      string(p.Trigger),
		PromotedAt:   p.PromotedAt,
	})
}

func (b *Bus) BoutsConfirmed(_ context.Context, eventID int64, bouts []model.Bout) error {
	ids := make([]int64, len(bouts))
	for i, bt := range bouts {
		ids[i] = bt.ID
	}
	return b.publish(TopicBoutsConfirmed, BoutsConfirmed{EventID: eventID, BoutIDs: ids})
}

// Close stops the pub/sub and closes every subscription channel.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
