// Package refresh re-prices a user's holdings and records today's snapshot.
package refresh

import (
	"context"
	"errors"
	"fmt"

	"folio-backend/internal/domain"

	"github.com/rs/zerolog"
)

type HoldingStore interface {
	ListRefs(ctx context.Context, userID uint) ([]domain.HoldingRef, error)
	UpdatePrices(ctx context.Context, userID uint, updates []domain.PriceUpdate) (int64, error)
}

type PriceFetcher interface {
	FetchAll(ctx context.Context, refs []domain.HoldingRef) []domain.PriceUpdate
}

type SnapshotRecorder interface {
	Record(ctx context.Context, userID uint) (*domain.DailySnapshot, error)
}

type UserLister interface {
	ListUserIDs(ctx context.Context) ([]uint, error)
}

// Service ties price fetching, the batched price write and the snapshot together.
type Service struct {
	Holdings HoldingStore
	Prices   PriceFetcher
	Recorder SnapshotRecorder
	Users    UserLister
	Logger   zerolog.Logger
}

// Report describes one refresh.
type Report struct {
	UserID    uint                  `json:"user_id"`
	Requested int                   `json:"requested"`
	Updated   int                   `json:"updated"`
	Snapshot  *domain.DailySnapshot `json:"snapshot,omitempty"`
}

// Refresh fetches prices, writes those that succeeded and records the
// snapshot. Price failures never fail the refresh; holdings keep their
// previous price. Only a snapshot failure is returned as an error.
func (s *Service) Refresh(ctx context.Context, userID uint) (*Report, error) {
	report := &Report{UserID: userID}

	refs, err := s.Holdings.ListRefs(ctx, userID)
	if err != nil {
		s.Logger.Warn().Err(err).Uint("user_id", userID).Msg("could not list holdings for price refresh")
	}
	report.Requested = len(refs)

	if len(refs) > 0 {
		updates := s.Prices.FetchAll(ctx, refs)
		if len(updates) > 0 {
			n, err := s.Holdings.UpdatePrices(ctx, userID, updates)
			if err != nil {
				s.Logger.Error().Err(err).Uint("user_id", userID).Int("prices", len(updates)).Msg("writing prices failed")
			} else {
				report.Updated = int(n)
			}
		}
		if report.Updated == 0 {
			s.Logger.Warn().Uint("user_id", userID).Int("requested", report.Requested).Msg("no prices updated")
		}
	}

	snap, err := s.Recorder.Record(ctx, userID)
	if err != nil {
		return report, err
	}
	report.Snapshot = snap

	s.Logger.Info().
		Uint("user_id", userID).
		Int("requested", report.Requested).
		Int("updated", report.Updated).
		Msg("portfolio refreshed")
	return report, nil
}

// RefreshAndSnapshot returns the number of holdings whose price was updated.
func (s *Service) RefreshAndSnapshot(ctx context.Context, userID uint) (int, error) {
	report, err := s.Refresh(ctx, userID)
	if report == nil {
		return 0, err
	}
	return report.Updated, err
}

// RefreshAll refreshes every user in turn. One user's failure does not stop
// the others; all failures are returned joined.
func (s *Service) RefreshAll(ctx context.Context) error {
	ids, err := s.Users.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var errs []error
	ok := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Refresh(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", id, err))
			continue
		}
		ok++
	}

	s.Logger.Info().Int("users", len(ids)).Int("succeeded", ok).Int("failed", len(errs)).Msg("daily refresh finished")
	return errors.Join(errs...)
}
