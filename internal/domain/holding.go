package domain

import (
	"time"
)

// Holding is one position owned by a user. A user holds at most one row per
// (asset class, symbol).
type Holding struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"column:user_id;not null;uniqueIndex:idx_holdings_user_class_symbol" json:"user_id"`
	AssetClass  AssetClass `gorm:"column:asset_class;type:varchar(32);not null;uniqueIndex:idx_holdings_user_class_symbol" json:"asset_class"`
	Symbol      string     `gorm:"column:symbol;type:varchar(64);not null;uniqueIndex:idx_holdings_user_class_symbol" json:"symbol"`
	DisplayName string     `gorm:"column:display_name;type:varchar(255)" json:"display_name"`
	Quantity    float64    `gorm:"column:quantity;not null;default:0" json:"quantity"`
	LastPrice   float64    `gorm:"column:last_price;not null;default:0" json:"last_price"`
	AvgCost     float64    `gorm:"column:avg_cost;not null;default:0" json:"avg_cost"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Holding) TableName() string {
	return "holdings"
}

func (h Holding) Ref() HoldingRef {
	return HoldingRef{ID: h.ID, AssetClass: h.AssetClass, Symbol: h.Symbol}
}

// Merge folds an additional purchase of the same symbol into h.
//
// Cash and insurance are balances, so the incoming amounts replace the stored
// ones. Other classes accumulate quantity and keep a weighted average cost.
func (h *Holding) Merge(add Holding) {
	if add.DisplayName != "" {
		h.DisplayName = add.DisplayName
	}
	if h.AssetClass == Cash || h.AssetClass == Insurance {
		h.Quantity = add.Quantity
		h.AvgCost = add.AvgCost
		h.LastPrice = add.LastPrice
		return
	}

	total := h.Quantity + add.Quantity
	switch {
	case total > 0 && add.AvgCost > 0:
		h.AvgCost = (h.Quantity*h.AvgCost + add.Quantity*add.AvgCost) / total
	case h.AvgCost <= 0:
		h.AvgCost = add.AvgCost
	}
	h.Quantity = total
	if add.LastPrice > 0 {
		h.LastPrice = add.LastPrice
	}
}
