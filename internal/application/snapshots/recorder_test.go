package snapshots

import (
	"context"
	"errors"
	"testing"
	"time"

	"folio-backend/internal/domain"
	"folio-backend/internal/infrastructure/repository"
	"folio-backend/internal/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedFX float64

func (f fixedFX) FXRate(context.Context) float64 { return float64(f) }

// flakyStore fails the first upserts with the given errors, and can hide
// writes from the read-back.
type flakyStore struct {
	Store
	upsertErrs []error
	upserts    int
	hideReads  int
}

func (s *flakyStore) UpsertSnapshot(ctx context.Context, snap *domain.DailySnapshot) error {
	s.upserts++
	if len(s.upsertErrs) > 0 {
		err := s.upsertErrs[0]
		s.upsertErrs = s.upsertErrs[1:]
		return err
	}
	return s.Store.UpsertSnapshot(ctx, snap)
}

func (s *flakyStore) GetSnapshot(ctx context.Context, userID uint, date time.Time) (*domain.DailySnapshot, error) {
	snap, err := s.Store.GetSnapshot(ctx, userID, date)
	if s.hideReads > 0 && snap != nil {
		s.hideReads--
		return nil, nil
	}
	return snap, err
}

type fixture struct {
	holdings  *repository.HoldingStore
	snapshots *repository.SnapshotStore
	waits     []time.Duration
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	db := testdb.New(t)
	return &fixture{
		holdings:  &repository.HoldingStore{DB: db},
		snapshots: &repository.SnapshotStore{DB: db},
		now:       time.Date(2024, 5, 10, 14, 59, 0, 0, time.UTC), // 23:59 in Tokyo
	}
}

func (f *fixture) recorder(store Store) *Recorder {
	policy := SnapshotRetryPolicy
	policy.Sleep = func(_ context.Context, d time.Duration) error {
		f.waits = append(f.waits, d)
		return nil
	}
	return NewRecorder(f.holdings, store, fixedFX(150),
		WithRetryPolicy(policy),
		WithLocation(domain.Tokyo),
		WithClock(func() time.Time { return f.now }),
	)
}

func (f *fixture) addHolding(t *testing.T, h domain.Holding) {
	require.NoError(t, f.holdings.SaveHolding(context.Background(), &h))
}

func TestRecorder_DefaultsToTokyoCalendarDay(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	r := NewRecorder(f.holdings, f.snapshots, fixedFX(150), WithClock(func() time.Time { return now }))
	assert.True(t, r.Today().Equal(time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)))

	f.addHolding(t, domain.Holding{UserID: 1, AssetClass: domain.Cash, Symbol: "JPY", Quantity: 1000})
	snap, err := r.Record(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, snap.RecordDate.Equal(time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)))
}

func TestRecord_FirstDayUsesOwnValuesAsPrevious(t *testing.T) {
	f := newFixture(t)
	f.addHolding(t, domain.Holding{UserID: 1, AssetClass: domain.DomesticEquity, Symbol: "7203", Quantity: 10, LastPrice: 2000, AvgCost: 1800})
	f.addHolding(t, domain.Holding{UserID: 1, AssetClass: domain.Cash, Symbol: "JPY", Quantity: 5000})

	snap, err := f.recorder(f.snapshots).Record(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, snap.RecordDate.Equal(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 20000.0, snap.DomesticEquityValue)
	assert.Equal(t, 5000.0, snap.CashValue)
	assert.Equal(t, 25000.0, snap.TotalValue)
	assert.Equal(t, snap.TotalValue, snap.PrevTotalValue)
	assert.Equal(t, snap.Values(), snap.PrevValues())
	assert.Equal(t, 18000.0, snap.Costs().DomesticEquity)
}

func TestRecord_UsesYesterdayAsPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addHolding(t, domain.Holding{UserID: 1, AssetClass: domain.Gold, Symbol: "GOLD", Quantity: 10, LastPrice: 13000})

	_, err := f.recorder(f.snapshots).Record(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, f.holdings.DB.Model(&domain.Holding{}).Where("user_id = ?", 1).Update("last_price", 13500).Error)
	f.now = f.now.Add(24 * time.Hour)

	snap, err := f.recorder(f.snapshots).Record(ctx, 1)
	require.NoError(t, err)
	assert.True(t, snap.RecordDate.Equal(time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 135000.0, snap.GoldValue)
	assert.Equal(t, 130000.0, snap.PrevGoldValue)
	assert.Equal(t, 130000.0, snap.PrevTotalValue)
}

func TestRecord_SameDayOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addHolding(t, domain.Holding{UserID: 1, AssetClass: domain.Crypto, Symbol: "BTC", Quantity: 1, LastPrice: 90})
	setPrice := func(p float64) {
		require.NoError(t, f.holdings.DB.Model(&domain.Holding{}).Where("user_id = ?", 1).Update("last_price", p).Error)
	}

	today := f.now
	f.now = today.Add(-24 * time.Hour)
	_, err := f.recorder(f.snapshots).Record(ctx, 1)
	require.NoError(t, err)
	f.now = today

	setPrice(100)
	first, err := f.recorder(f.snapshots).Record(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.TotalValue)

	setPrice(120)
	second, err := f.recorder(f.snapshots).Record(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 120.0, second.TotalValue)
	assert.Equal(t, 90.0, second.PrevTotalValue, "previous values still come from yesterday")

	var count int64
	require.NoError(t, f.snapshots.DB.Model(&domain.DailySnapshot{}).Where("user_id = ?", 1).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRecord_EmptyPortfolio(t *testing.T) {
	f := newFixture(t)
	snap, err := f.recorder(f.snapshots).Record(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, snap.TotalValue)
	assert.Zero(t, snap.PrevTotalValue)
}

func TestRecord_RetriesTransientErrors(t *testing.T) {
	f := newFixture(t)
	store := &flakyStore{
		Store:      f.snapshots,
		upsertErrs: []error{domain.ErrConnectionTransient, domain.ErrConnectionTransient},
	}

	snap, err := f.recorder(store).Record(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 3, store.upserts)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, f.waits)
}

func TestRecord_GivesUpAfterThreeAttempts(t *testing.T) {
	f := newFixture(t)
	store := &flakyStore{
		Store:      f.snapshots,
		upsertErrs: []error{domain.ErrConnectionTransient, domain.ErrConnectionTransient, domain.ErrConnectionTransient},
	}

	_, err := f.recorder(store).Record(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrSnapshotPersistence)
	assert.Equal(t, 3, store.upserts)
}

func TestRecord_PermanentErrorNotRetried(t *testing.T) {
	f := newFixture(t)
	store := &flakyStore{Store: f.snapshots, upsertErrs: []error{errors.New("check constraint violated")}}

	_, err := f.recorder(store).Record(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrSnapshotPersistence)
	assert.Equal(t, 1, store.upserts)
	assert.Empty(t, f.waits)
}

func TestRecord_RetriesWhenWriteNotVisible(t *testing.T) {
	f := newFixture(t)
	store := &flakyStore{Store: f.snapshots, hideReads: 1}

	snap, err := f.recorder(store).Record(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 2, store.upserts)
}

func TestRecord_TokyoDayBoundary(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

	snap, err := f.recorder(f.snapshots).Record(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, snap.RecordDate.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
}

func TestSnapshotRetryPolicy(t *testing.T) {
	assert.Equal(t, 3, SnapshotRetryPolicy.MaxAttempts)
	assert.Equal(t, 2*time.Second, SnapshotRetryPolicy.Backoff(1))
	assert.Equal(t, 4*time.Second, SnapshotRetryPolicy.Backoff(2))
}
