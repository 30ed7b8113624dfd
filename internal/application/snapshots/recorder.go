// Package snapshots records one valuation per user per calendar day.
package snapshots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"folio-backend/internal/application/valuation"
	"folio-backend/internal/domain"
	"folio-backend/internal/pkg/retry"

	"github.com/rs/zerolog"
)

// SnapshotRetryPolicy allows three attempts, waiting 2s then 4s.
var SnapshotRetryPolicy = retry.Policy{MaxAttempts: 3, Base: time.Second}

// errNotVisible means the upsert succeeded but the row could not be read back.
var errNotVisible = errors.New("snapshot not visible after write")

type HoldingLister interface {
	ListHoldings(ctx context.Context, userID uint) ([]domain.Holding, error)
}

type Store interface {
	GetSnapshot(ctx context.Context, userID uint, date time.Time) (*domain.DailySnapshot, error)
	UpsertSnapshot(ctx context.Context, snap *domain.DailySnapshot) error
}

type FXResolver interface {
	FXRate(ctx context.Context) float64
}

// Recorder values a user's holdings and stores the result as today's snapshot.
type Recorder struct {
	holdings HoldingLister
	store    Store
	fx       FXResolver
	policy   retry.Policy
	loc      *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

type Option func(*Recorder)

func WithRetryPolicy(p retry.Policy) Option {
	return func(r *Recorder) {
		r.policy = p
	}
}

// WithLocation sets the timezone that decides the calendar day.
func WithLocation(loc *time.Location) Option {
	return func(r *Recorder) {
		r.loc = loc
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func NewRecorder(holdings HoldingLister, store Store, fx FXResolver, opts ...Option) *Recorder {
	r := &Recorder{
		holdings: holdings,
		store:    store,
		fx:       fx,
		policy:   SnapshotRetryPolicy,
		loc:      domain.Tokyo,
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Today is the current calendar day in the recorder's timezone.
func (r *Recorder) Today() time.Time {
	return domain.CalendarDate(r.now(), r.loc)
}

// Record writes today's snapshot for userID and returns it as read back from
// the store. Transient connection errors and read-back misses are retried;
// anything else fails immediately. Failures wrap domain.ErrSnapshotPersistence.
func (r *Recorder) Record(ctx context.Context, userID uint) (*domain.DailySnapshot, error) {
	policy := r.policy
	policy.Retryable = retryable
	policy.OnRetry = func(attempt int, wait time.Duration, err error) {
		r.logger.Warn().Err(err).
			Uint("user_id", userID).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("snapshot attempt failed, retrying")
	}

	var stored *domain.DailySnapshot
	err := retry.Do(ctx, policy, func(ctx context.Context, _ int) error {
		snap, err := r.recordOnce(ctx, userID)
		if err != nil {
			return err
		}
		stored = snap
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Uint("user_id", userID).Msg("snapshot failed")
		return nil, fmt.Errorf("%w: user %d: %w", domain.ErrSnapshotPersistence, userID, err)
	}

	r.logger.Info().
		Uint("user_id", userID).
		Time("record_date", stored.RecordDate).
		Float64("total_value", stored.TotalValue).
		Msg("snapshot recorded")
	return stored, nil
}

func (r *Recorder) recordOnce(ctx context.Context, userID uint) (*domain.DailySnapshot, error) {
	today := r.Today()

	holdings, err := r.holdings.ListHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	val := valuation.Valuate(holdings, r.fx.FXRate(ctx))

	yesterday, err := r.store.GetSnapshot(ctx, userID, today.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("load previous snapshot: %w", err)
	}

	snap := &domain.DailySnapshot{
		UserID:     userID,
		RecordDate: today,
		TotalValue: val.TotalValue,
	}
	snap.SetValues(val.ValueByClass)
	snap.SetCostBreakdown(val.CostByClass)
	// Without a previous day the snapshot is its own baseline, so the first
	// day reports no change.
	if yesterday != nil {
		snap.SetPrevValues(yesterday.Values())
		snap.PrevTotalValue = yesterday.TotalValue
	} else {
		snap.SetPrevValues(val.ValueByClass)
		snap.PrevTotalValue = val.TotalValue
	}

	if err := r.store.UpsertSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("upsert snapshot: %w", err)
	}

	stored, err := r.store.GetSnapshot(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("verify snapshot: %w", err)
	}
	if stored == nil {
		return nil, errNotVisible
	}
	return stored, nil
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrConnectionTransient) || errors.Is(err, errNotVisible)
}
