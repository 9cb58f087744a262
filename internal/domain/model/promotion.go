package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/dojo/internal/domain/rank"
)

// PromotionTrigger says what caused a rank change.
type PromotionTrigger string

// Promotion triggers.
const (
	TriggerAutomatic      PromotionTrigger = "automatic"
	TriggerManualOverride PromotionTrigger = "admin_override"
)

// PromotionRecord is an append-only entry in a competitor's rank history.
type PromotionRecord struct {
	ID                uuid.UUID
	CompetitorID      int64
	FromRank          rank.Rank
	ToRank            rank.Rank
	PointsAtPromotion int
	Trigger           PromotionTrigger
	Actor             string
	Note              string
	PromotedAt        time.Time
}
