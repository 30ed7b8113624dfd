package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"folio-backend/internal/domain"
	"folio-backend/internal/infrastructure/database"

	"gorm.io/gorm"
)

// HoldingStore persists holdings.
type HoldingStore struct {
	DB *gorm.DB
}

// ListHoldings returns every holding of a user ordered by class and symbol.
func (s *HoldingStore) ListHoldings(ctx context.Context, userID uint) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("asset_class, symbol").
		Find(&holdings).Error
	if err != nil {
		return nil, database.Classify(err)
	}
	return holdings, nil
}

// ListRefs returns the holdings of a user whose class has a market price.
func (s *HoldingStore) ListRefs(ctx context.Context, userID uint) ([]domain.HoldingRef, error) {
	var classes []domain.AssetClass
	for _, c := range domain.AllAssetClasses {
		if c.HasMarketPrice() {
			classes = append(classes, c)
		}
	}

	var holdings []domain.Holding
	err := s.DB.WithContext(ctx).
		Select("id", "asset_class", "symbol").
		Where("user_id = ? AND asset_class IN ?", userID, classes).
		Order("id").
		Find(&holdings).Error
	if err != nil {
		return nil, database.Classify(err)
	}

	refs := make([]domain.HoldingRef, 0, len(holdings))
	for _, h := range holdings {
		refs = append(refs, h.Ref())
	}
	return refs, nil
}

// GetHolding loads one holding owned by userID.
func (s *HoldingStore) GetHolding(ctx context.Context, userID, id uint) (*domain.Holding, error) {
	var h domain.Holding
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrHoldingNotFound
	}
	if err != nil {
		return nil, database.Classify(err)
	}
	return &h, nil
}

// FindBySymbol returns nil without error when the user has no such holding.
func (s *HoldingStore) FindBySymbol(ctx context.Context, userID uint, class domain.AssetClass, symbol string) (*domain.Holding, error) {
	var h domain.Holding
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND asset_class = ? AND symbol = ?", userID, class, symbol).
		Take(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(err)
	}
	return &h, nil
}

// SaveHolding inserts h when it has no ID, otherwise updates every column.
func (s *HoldingStore) SaveHolding(ctx context.Context, h *domain.Holding) error {
	return database.Classify(s.DB.WithContext(ctx).Save(h).Error)
}

func (s *HoldingStore) DeleteHolding(ctx context.Context, userID, id uint) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Holding{})
	if res.Error != nil {
		return database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrHoldingNotFound
	}
	return nil
}

// UpdatePrices writes every fetched price for a user in one UPDATE statement.
// Names are only overwritten where the update carries one. Rows belonging to
// other users are never touched. Returns the number of rows changed.
func (s *HoldingStore) UpdatePrices(ctx context.Context, userID uint, updates []domain.PriceUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	var (
		sql      strings.Builder
		args     []interface{}
		nameArgs []interface{}
		ids      = make([]uint, 0, len(updates))
		names    strings.Builder
	)
	sql.WriteString("UPDATE holdings SET last_price = CASE id")
	for _, u := range updates {
		sql.WriteString(" WHEN ? THEN ?")
		args = append(args, u.ID, u.Price)
		if u.Name != "" {
			names.WriteString(" WHEN ? THEN ?")
			nameArgs = append(nameArgs, u.ID, u.Name)
		}
		ids = append(ids, u.ID)
	}
	sql.WriteString(" ELSE last_price END")
	if len(nameArgs) > 0 {
		sql.WriteString(", display_name = CASE id")
		sql.WriteString(names.String())
		sql.WriteString(" ELSE display_name END")
		args = append(args, nameArgs...)
	}
	sql.WriteString(", updated_at = ? WHERE user_id = ? AND id IN ?")
	args = append(args, time.Now().UTC(), userID, ids)

	res := s.DB.WithContext(ctx).Exec(sql.String(), args...)
	if res.Error != nil {
		return 0, database.Classify(res.Error)
	}
	return res.RowsAffected, nil
}
