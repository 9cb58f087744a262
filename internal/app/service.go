// Package service orchestrates the pairing and ranking core over a
// transactional store. It is the only place that sequences domain steps
// and the only place that decides transaction boundaries.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/dojo/internal/adapters/notify"
	repository "github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/domain/dedupe"
	"github.com/okian/dojo/internal/domain/faults"
	"github.com/okian/dojo/internal/domain/matchmaking"
	"github.com/okian/dojo/internal/domain/promotion"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

// Service implements the operations exposed by the HTTP API.
type Service struct {
	store      repository.Store
	guard      dedupe.Deduper
	matchmaker *matchmaking.Matchmaker
	promoter   *promotion.Engine
	notifier   notify.Notifier
	schedule   matchmaking.Schedule

	dedupeSize int
	now        func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for every timestamp the service writes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifier sets where committed decisions are announced.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithDedupeSize bounds the in-flight submission guard.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDeduper replaces the in-flight submission guard.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.guard = d
		}
	}
}

// WithSchedule sets how confirmed bouts are placed on the event day.
func WithSchedule(sched matchmaking.Schedule) Option {
	return func(s *Service) {
		if sched.Interval > 0 && sched.StartHour >= 0 && sched.StartHour < 24 {
			s.schedule = sched
		}
	}
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		notifier:   notify.Nop{},
		schedule:   matchmaking.DefaultSchedule(),
		dedupeSize: 10_000,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.guard == nil {
		s.guard = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}
	s.matchmaker = matchmaking.New(matchmaking.WithClock(s.now))
	s.promoter = promotion.New(promotion.WithClock(s.now))

	return s
}

// Close releases the notifier. The store is owned by the caller.
func (s *Service) Close() error {
	return s.notifier.Close()
}

// InFlight returns the number of result submissions currently being processed.
func (s *Service) InFlight() int64 {
	return s.guard.Size()
}

// classify turns store not-found errors into NotFound faults and passes
// everything else through.
func classify(op string, err error, ids ...int64) error {
	if err == nil {
		return nil
	}
	var fe *faults.Error
	if errors.As(err, &fe) {
		return err
	}
	if repository.IsNotFound(err) {
		return faults.NotFound(op, err, ids...)
	}
	return err
}

// kindLabel names err's kind for metric labels.
func kindLabel(err error) string {
	switch faults.KindOf(err) {
	case faults.ErrValidation:
		return "validation"
	case faults.ErrConflict:
		return "conflict"
	case faults.ErrNotFound:
		return "not_found"
	case faults.ErrConsistency:
		return "consistency"
	default:
		return "internal"
	}
}

// logOutcome logs a failed operation as a rejection or an infrastructure error.
func (s *Service) logOutcome(ctx context.Context, op string, err error, fields ...logger.Field) {
	fields = append(fields, logger.String("op", op), logger.Error(err))
	if faults.KindOf(err) != nil {
		s.logger.Warn(ctx, "request rejected", fields...)
		return
	}
	metrics.RecordErrorByComponent("service", op)
	s.logger.Error(ctx, "operation failed", fields...)
}
