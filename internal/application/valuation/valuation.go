// Package valuation turns holdings into JPY values, costs and profit figures.
package valuation

import (
	"folio-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Fund prices are quoted per 10,000 units.
var fundUnit = decimal.NewFromInt(10000)

var hundred = decimal.NewFromInt(100)

// Valuation is a portfolio valued at one FX rate. All amounts are JPY.
type Valuation struct {
	ValueByClass    domain.ClassValues `json:"value_by_class"`
	CostByClass     domain.ClassValues `json:"cost_by_class"`
	TotalValue      float64            `json:"total_value"`
	TotalCost       float64            `json:"total_cost"`
	TotalProfit     float64            `json:"total_profit"`
	TotalProfitRate float64            `json:"total_profit_rate"`
	FXRate          float64            `json:"fx_rate"`
}

// Valuate prices every holding at its last known price. Cash counts toward
// the total value but not toward cost or profit. Holdings of unknown classes
// are ignored.
func Valuate(holdings []domain.Holding, fxRate float64) Valuation {
	values := make(map[domain.AssetClass]decimal.Decimal, len(domain.AllAssetClasses))
	costs := make(map[domain.AssetClass]decimal.Decimal, len(domain.AllAssetClasses))

	for _, h := range holdings {
		if !h.AssetClass.Valid() {
			continue
		}
		qty := decimal.NewFromFloat(h.Quantity)
		price := decimal.NewFromFloat(h.LastPrice)
		cost := decimal.NewFromFloat(h.AvgCost)

		switch h.AssetClass {
		case domain.Cash:
			values[h.AssetClass] = values[h.AssetClass].Add(qty)
		case domain.Insurance:
			values[h.AssetClass] = values[h.AssetClass].Add(price)
			costs[h.AssetClass] = costs[h.AssetClass].Add(cost)
		default:
			values[h.AssetClass] = values[h.AssetClass].Add(qty.Mul(price))
			costs[h.AssetClass] = costs[h.AssetClass].Add(qty.Mul(cost))
		}
	}

	fx := decimal.NewFromFloat(fxRate)
	values[domain.ForeignEquity] = values[domain.ForeignEquity].Mul(fx)
	costs[domain.ForeignEquity] = costs[domain.ForeignEquity].Mul(fx)
	values[domain.Fund] = values[domain.Fund].Div(fundUnit)
	costs[domain.Fund] = costs[domain.Fund].Div(fundUnit)

	var (
		v                     Valuation
		totalValue, totalCost decimal.Decimal
		investedValue         decimal.Decimal
	)
	for _, c := range domain.AllAssetClasses {
		v.ValueByClass.Set(c, values[c].InexactFloat64())
		v.CostByClass.Set(c, costs[c].InexactFloat64())
		totalValue = totalValue.Add(values[c])
		if c == domain.Cash {
			continue
		}
		totalCost = totalCost.Add(costs[c])
		investedValue = investedValue.Add(values[c])
	}

	profit := investedValue.Sub(totalCost)
	v.TotalValue = totalValue.InexactFloat64()
	v.TotalCost = totalCost.InexactFloat64()
	v.TotalProfit = profit.InexactFloat64()
	v.TotalProfitRate = rate(profit, totalCost)
	v.FXRate = fxRate
	return v
}

// ClassProfit is value minus cost for one class. Cash has no profit.
func (v Valuation) ClassProfit(c domain.AssetClass) float64 {
	if c == domain.Cash {
		return 0
	}
	return decimal.NewFromFloat(v.ValueByClass.Get(c)).
		Sub(decimal.NewFromFloat(v.CostByClass.Get(c))).
		InexactFloat64()
}

// ClassProfitRate is ClassProfit as a percentage of cost, 0 when cost is 0.
func (v Valuation) ClassProfitRate(c domain.AssetClass) float64 {
	if c == domain.Cash {
		return 0
	}
	value := decimal.NewFromFloat(v.ValueByClass.Get(c))
	cost := decimal.NewFromFloat(v.CostByClass.Get(c))
	return rate(value.Sub(cost), cost)
}

// SnapshotProfit derives cost and profit from a recorded snapshot. Cash
// carries no cost and is left out of the invested value.
func SnapshotProfit(s domain.DailySnapshot) (cost, profit, profitRate float64) {
	costs := s.Costs()
	costs.Cash = 0
	values := s.Values()
	values.Cash = 0

	c := decimal.NewFromFloat(costs.Sum())
	p := decimal.NewFromFloat(values.Sum()).Sub(c)
	return c.InexactFloat64(), p.InexactFloat64(), rate(p, c)
}

func rate(amount, base decimal.Decimal) float64 {
	if !base.IsPositive() {
		return 0
	}
	return amount.Div(base).Mul(hundred).InexactFloat64()
}

// Change is a day-over-day movement.
type Change struct {
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
}

// DayChange compares current with previous. Rate is a percentage of previous
// and 0 when previous is not positive.
func DayChange(current, previous float64) Change {
	cur := decimal.NewFromFloat(current)
	prev := decimal.NewFromFloat(previous)
	diff := cur.Sub(prev)
	return Change{Amount: diff.InexactFloat64(), Rate: rate(diff, prev)}
}
