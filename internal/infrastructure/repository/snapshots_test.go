package repository

import (
	"context"
	"testing"
	"time"

	"folio-backend/internal/domain"
	"folio-backend/internal/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSnapshotStore_UpsertOverwritesSameDay(t *testing.T) {
	ctx := context.Background()
	store := &SnapshotStore{DB: testdb.New(t)}
	date := day(2024, 5, 10)

	first := &domain.DailySnapshot{UserID: 1, RecordDate: date, TotalValue: 100}
	first.SetValues(domain.ClassValues{Cash: 100})
	first.SetCostBreakdown(domain.ClassValues{})
	require.NoError(t, store.UpsertSnapshot(ctx, first))

	second := &domain.DailySnapshot{UserID: 1, RecordDate: date, TotalValue: 250, PrevTotalValue: 90}
	second.SetValues(domain.ClassValues{Cash: 100, Gold: 150})
	second.SetCostBreakdown(domain.ClassValues{Gold: 120})
	require.NoError(t, store.UpsertSnapshot(ctx, second))

	var count int64
	require.NoError(t, store.DB.Model(&domain.DailySnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := store.GetSnapshot(ctx, 1, date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 250.0, got.TotalValue)
	assert.Equal(t, 150.0, got.GoldValue)
	assert.Equal(t, 90.0, got.PrevTotalValue)
	assert.Equal(t, 120.0, got.Costs().Gold)
}

func TestSnapshotStore_GetMissing(t *testing.T) {
	store := &SnapshotStore{DB: testdb.New(t)}
	got, err := store.GetSnapshot(context.Background(), 1, day(2024, 1, 1))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotStore_CountSnapshotsOn(t *testing.T) {
	ctx := context.Background()
	store := &SnapshotStore{DB: testdb.New(t)}
	for _, userID := range []uint{1, 2} {
		s := &domain.DailySnapshot{UserID: userID, RecordDate: day(2024, 6, 1)}
		s.SetCostBreakdown(domain.ClassValues{})
		require.NoError(t, store.UpsertSnapshot(ctx, s))
	}

	n, err := store.CountSnapshotsOn(ctx, day(2024, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.CountSnapshotsOn(ctx, day(2024, 6, 2))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSnapshotStore_ListSince(t *testing.T) {
	ctx := context.Background()
	store := &SnapshotStore{DB: testdb.New(t)}
	for i, d := range []int{3, 1, 2} {
		s := &domain.DailySnapshot{UserID: 1, RecordDate: day(2024, 6, d), TotalValue: float64(i)}
		s.SetCostBreakdown(domain.ClassValues{})
		require.NoError(t, store.UpsertSnapshot(ctx, s))
	}
	other := &domain.DailySnapshot{UserID: 2, RecordDate: day(2024, 6, 3)}
	other.SetCostBreakdown(domain.ClassValues{})
	require.NoError(t, store.UpsertSnapshot(ctx, other))

	snaps, err := store.ListSnapshots(ctx, 1, day(2024, 6, 2))
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.True(t, snaps[0].RecordDate.Equal(day(2024, 6, 2)))
	assert.True(t, snaps[1].RecordDate.Equal(day(2024, 6, 3)))
}
