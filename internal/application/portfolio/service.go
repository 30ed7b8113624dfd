// Package portfolio builds the read-side views: the current summary with
// day-over-day change, and snapshot history.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"folio-backend/internal/application/valuation"
	"folio-backend/internal/domain"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 366
)

type HoldingLister interface {
	ListHoldings(ctx context.Context, userID uint) ([]domain.Holding, error)
}

type SnapshotReader interface {
	GetSnapshot(ctx context.Context, userID uint, date time.Time) (*domain.DailySnapshot, error)
	ListSnapshots(ctx context.Context, userID uint, since time.Time) ([]domain.DailySnapshot, error)
}

type FXResolver interface {
	FXRate(ctx context.Context) float64
}

type Service struct {
	Holdings  HoldingLister
	Snapshots SnapshotReader
	FX        FXResolver
	Location  *time.Location
	Now       func() time.Time
}

// ClassSummary is one asset class row of the summary.
type ClassSummary struct {
	AssetClass domain.AssetClass `json:"asset_class"`
	Holdings   int               `json:"holdings"`
	Value      float64           `json:"value"`
	Cost       float64           `json:"cost"`
	Profit     float64           `json:"profit"`
	ProfitRate float64           `json:"profit_rate"`
	DayChange  valuation.Change  `json:"day_change"`
}

type Summary struct {
	AsOf            time.Time        `json:"as_of"`
	FXRate          float64          `json:"fx_rate"`
	TotalValue      float64          `json:"total_value"`
	TotalCost       float64          `json:"total_cost"`
	TotalProfit     float64          `json:"total_profit"`
	TotalProfitRate float64          `json:"total_profit_rate"`
	DayChange       valuation.Change `json:"day_change"`
	Classes         []ClassSummary   `json:"classes"`
	Holdings        []domain.Holding `json:"holdings"`
}

func (s *Service) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = domain.Tokyo
	}
	return domain.CalendarDate(now(), loc)
}

// Summary values the user's holdings at their stored prices and compares
// each class with yesterday's snapshot. Without one, day change is zero.
func (s *Service) Summary(ctx context.Context, userID uint) (*Summary, error) {
	holdings, err := s.Holdings.ListHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	today := s.today()
	val := valuation.Valuate(holdings, s.FX.FXRate(ctx))

	prev := val.ValueByClass
	prevTotal := val.TotalValue
	yesterday, err := s.Snapshots.GetSnapshot(ctx, userID, today.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("load previous snapshot: %w", err)
	}
	if yesterday != nil {
		prev = yesterday.Values()
		prevTotal = yesterday.TotalValue
	}

	counts := make(map[domain.AssetClass]int)
	for _, h := range holdings {
		counts[h.AssetClass]++
	}

	out := &Summary{
		AsOf:            today,
		FXRate:          val.FXRate,
		TotalValue:      val.TotalValue,
		TotalCost:       val.TotalCost,
		TotalProfit:     val.TotalProfit,
		TotalProfitRate: val.TotalProfitRate,
		DayChange:       valuation.DayChange(val.TotalValue, prevTotal),
		Holdings:        holdings,
	}
	for _, c := range domain.AllAssetClasses {
		out.Classes = append(out.Classes, ClassSummary{
			AssetClass: c,
			Holdings:   counts[c],
			Value:      val.ValueByClass.Get(c),
			Cost:       val.CostByClass.Get(c),
			Profit:     val.ClassProfit(c),
			ProfitRate: val.ClassProfitRate(c),
			DayChange:  valuation.DayChange(val.ValueByClass.Get(c), prev.Get(c)),
		})
	}
	return out, nil
}

// HistoryPoint is a recorded snapshot with the profit its cost breakdown implies.
type HistoryPoint struct {
	domain.DailySnapshot
	TotalCost       float64 `json:"total_cost"`
	TotalProfit     float64 `json:"total_profit"`
	TotalProfitRate float64 `json:"total_profit_rate"`
}

// History returns the snapshots of the last days calendar days, today included.
func (s *Service) History(ctx context.Context, userID uint, days int) ([]HistoryPoint, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	if days > MaxHistoryDays {
		days = MaxHistoryDays
	}
	since := s.today().AddDate(0, 0, -(days - 1))
	snaps, err := s.Snapshots.ListSnapshots(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	points := make([]HistoryPoint, len(snaps))
	for i, snap := range snaps {
		p := HistoryPoint{DailySnapshot: snap}
		p.TotalCost, p.TotalProfit, p.TotalProfitRate = valuation.SnapshotProfit(snap)
		points[i] = p
	}
	return points, nil
}
