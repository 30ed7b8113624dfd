package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DailySnapshot records a user's portfolio value for one calendar day along
// with the previous day's values. One row per (user, record date).
type DailySnapshot struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"column:user_id;not null;uniqueIndex:idx_daily_snapshots_user_date" json:"user_id"`
	RecordDate time.Time `gorm:"column:record_date;type:date;not null;uniqueIndex:idx_daily_snapshots_user_date" json:"record_date"`

	DomesticEquityValue float64 `gorm:"column:domestic_equity_value;not null;default:0" json:"domestic_equity_value"`
	ForeignEquityValue  float64 `gorm:"column:foreign_equity_value;not null;default:0" json:"foreign_equity_value"`
	CashValue           float64 `gorm:"column:cash_value;not null;default:0" json:"cash_value"`
	GoldValue           float64 `gorm:"column:gold_value;not null;default:0" json:"gold_value"`
	CryptoValue         float64 `gorm:"column:crypto_value;not null;default:0" json:"crypto_value"`
	FundValue           float64 `gorm:"column:fund_value;not null;default:0" json:"fund_value"`
	InsuranceValue      float64 `gorm:"column:insurance_value;not null;default:0" json:"insurance_value"`
	TotalValue          float64 `gorm:"column:total_value;not null;default:0" json:"total_value"`

	PrevDomesticEquityValue float64 `gorm:"column:prev_domestic_equity_value;not null;default:0" json:"prev_domestic_equity_value"`
	PrevForeignEquityValue  float64 `gorm:"column:prev_foreign_equity_value;not null;default:0" json:"prev_foreign_equity_value"`
	PrevCashValue           float64 `gorm:"column:prev_cash_value;not null;default:0" json:"prev_cash_value"`
	PrevGoldValue           float64 `gorm:"column:prev_gold_value;not null;default:0" json:"prev_gold_value"`
	PrevCryptoValue         float64 `gorm:"column:prev_crypto_value;not null;default:0" json:"prev_crypto_value"`
	PrevFundValue           float64 `gorm:"column:prev_fund_value;not null;default:0" json:"prev_fund_value"`
	PrevInsuranceValue      float64 `gorm:"column:prev_insurance_value;not null;default:0" json:"prev_insurance_value"`
	PrevTotalValue          float64 `gorm:"column:prev_total_value;not null;default:0" json:"prev_total_value"`

	CostBreakdown datatypes.JSONType[ClassValues] `gorm:"column:cost_breakdown" json:"cost_breakdown"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (DailySnapshot) TableName() string {
	return "daily_snapshots"
}

// SnapshotValueColumns are overwritten when a snapshot for the same day is recorded again.
var SnapshotValueColumns = []string{
	"domestic_equity_value", "foreign_equity_value", "cash_value", "gold_value",
	"crypto_value", "fund_value", "insurance_value", "total_value",
	"prev_domestic_equity_value", "prev_foreign_equity_value", "prev_cash_value", "prev_gold_value",
	"prev_crypto_value", "prev_fund_value", "prev_insurance_value", "prev_total_value",
	"cost_breakdown", "updated_at",
}

func (s DailySnapshot) Values() ClassValues {
	return ClassValues{
		DomesticEquity: s.DomesticEquityValue,
		ForeignEquity:  s.ForeignEquityValue,
		Cash:           s.CashValue,
		Gold:           s.GoldValue,
		Crypto:         s.CryptoValue,
		Fund:           s.FundValue,
		Insurance:      s.InsuranceValue,
	}
}

func (s *DailySnapshot) SetValues(v ClassValues) {
	s.DomesticEquityValue = v.DomesticEquity
	s.ForeignEquityValue = v.ForeignEquity
	s.CashValue = v.Cash
	s.GoldValue = v.Gold
	s.CryptoValue = v.Crypto
	s.FundValue = v.Fund
	s.InsuranceValue = v.Insurance
}

func (s DailySnapshot) PrevValues() ClassValues {
	return ClassValues{
		DomesticEquity: s.PrevDomesticEquityValue,
		ForeignEquity:  s.PrevForeignEquityValue,
		Cash:           s.PrevCashValue,
		Gold:           s.PrevGoldValue,
		Crypto:         s.PrevCryptoValue,
		Fund:           s.PrevFundValue,
		Insurance:      s.PrevInsuranceValue,
	}
}

func (s *DailySnapshot) SetPrevValues(v ClassValues) {
	s.PrevDomesticEquityValue = v.DomesticEquity
	s.PrevForeignEquityValue = v.ForeignEquity
	s.PrevCashValue = v.Cash
	s.PrevGoldValue = v.Gold
	s.PrevCryptoValue = v.Crypto
	s.PrevFundValue = v.Fund
	s.PrevInsuranceValue = v.Insurance
}

func (s *DailySnapshot) SetCostBreakdown(v ClassValues) {
	s.CostBreakdown = datatypes.NewJSONType(v)
}

func (s DailySnapshot) Costs() ClassValues {
	return s.CostBreakdown.Data()
}

// CalendarDate returns midnight UTC of t's calendar day in loc. Record dates
// are stored in this form so equality comparisons work across drivers.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
