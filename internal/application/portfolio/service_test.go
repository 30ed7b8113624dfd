package portfolio

import (
	"context"
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

func newTestService(t *testing.T) (*Service, *repository.HoldingStore, *repository.SnapshotStore) {
	db := testdb.New(t)
	hs := &repository.HoldingStore{DB: db}
	ss := &repository.SnapshotStore{DB: db}
	return &Service{
		Holdings:  hs,
		Snapshots: ss,
		FX:        fixedFX(150),
		Location:  time.UTC,
		Now:       func() time.Time { return time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC) },
	}, hs, ss
}

func class(s *Summary, c domain.AssetClass) ClassSummary {
	for _, cs := range s.Classes {
		if cs.AssetClass == c {
			return cs
		}
	}
	return ClassSummary{}
}

func TestSummary_DayChangeAgainstYesterday(t *testing.T) {
	ctx := context.Background()
	svc, hs, ss := newTestService(t)
	require.NoError(t, hs.SaveHolding(ctx, &domain.Holding{UserID: 1, AssetClass: domain.DomesticEquity, Symbol: "7203", Quantity: 10, LastPrice: 2200, AvgCost: 2000}))
	require.NoError(t, hs.SaveHolding(ctx, &domain.Holding{UserID: 1, AssetClass: domain.Cash, Symbol: "JPY", Quantity: 8000}))

	y := &domain.DailySnapshot{UserID: 1, RecordDate: time.Date(2024, 8, 19, 0, 0, 0, 0, time.UTC), TotalValue: 28000}
	y.SetValues(domain.ClassValues{DomesticEquity: 20000, Cash: 8000})
	y.SetCostBreakdown(domain.ClassValues{DomesticEquity: 20000})
	require.NoError(t, ss.UpsertSnapshot(ctx, y))

	sum, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30000.0, sum.TotalValue)
	assert.Equal(t, 2000.0, sum.TotalProfit)
	assert.Equal(t, 10.0, sum.TotalProfitRate)
	assert.Equal(t, 2000.0, sum.DayChange.Amount)
	assert.Len(t, sum.Classes, len(domain.AllAssetClasses))

	eq := class(sum, domain.DomesticEquity)
	assert.Equal(t, 1, eq.Holdings)
	assert.Equal(t, 22000.0, eq.Value)
	assert.Equal(t, 2000.0, eq.DayChange.Amount)
	assert.Equal(t, 10.0, eq.DayChange.Rate)

	cash := class(sum, domain.Cash)
	assert.Zero(t, cash.Profit)
	assert.Zero(t, cash.DayChange.Amount)
}

func TestSummary_NoYesterdayMeansNoChange(t *testing.T) {
	ctx := context.Background()
	svc, hs, _ := newTestService(t)
	require.NoError(t, hs.SaveHolding(ctx, &domain.Holding{UserID: 1, AssetClass: domain.Gold, Symbol: "GOLD", Quantity: 1, LastPrice: 13000}))

	sum, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 13000.0, sum.TotalValue)
	assert.Zero(t, sum.DayChange.Amount)
	assert.Zero(t, sum.DayChange.Rate)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, ss := newTestService(t)
	for d := 1; d <= 20; d++ {
		s := &domain.DailySnapshot{UserID: 1, RecordDate: time.Date(2024, 8, d, 0, 0, 0, 0, time.UTC), TotalValue: float64(d)}
		s.SetCostBreakdown(domain.ClassValues{})
		require.NoError(t, ss.UpsertSnapshot(ctx, s))
	}

	week, err := svc.History(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, week, 7)
	assert.Equal(t, 14.0, week[0].TotalValue)
	assert.Equal(t, 20.0, week[6].TotalValue)

	all, err := svc.History(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestHistory_ProfitFromCostBreakdown(t *testing.T) {
	ctx := context.Background()
	svc, _, ss := newTestService(t)
	s := &domain.DailySnapshot{UserID: 1, RecordDate: time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC), TotalValue: 70000}
	s.SetValues(domain.ClassValues{DomesticEquity: 20000, Cash: 50000})
	s.SetCostBreakdown(domain.ClassValues{DomesticEquity: 18000})
	require.NoError(t, ss.UpsertSnapshot(ctx, s))

	points, err := svc.History(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 70000.0, points[0].TotalValue)
	assert.Equal(t, 18000.0, points[0].TotalCost)
	assert.Equal(t, 2000.0, points[0].TotalProfit)
	assert.InDelta(t, 11.11, points[0].TotalProfitRate, 0.01)
}

func TestService_DefaultsToTokyoCalendarDay(t *testing.T) {
	svc := &Service{Now: func() time.Time { return time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC) }}
	assert.True(t, svc.today().Equal(time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)))
}
