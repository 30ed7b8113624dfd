package repository

import (
	"context"

	"folio-backend/internal/domain"
	"folio-backend/internal/infrastructure/database"

	"gorm.io/gorm"
)

type UserStore struct {
	DB *gorm.DB
}

// ListUserIDs returns every user ID in ascending order.
func (s *UserStore) ListUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.DB.WithContext(ctx).Model(&domain.User{}).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, database.Classify(err)
	}
	return ids, nil
}
