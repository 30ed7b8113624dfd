package repository

import (
	"context"
	"errors"
	"time"

	"folio-backend/internal/domain"
	"folio-backend/internal/infrastructure/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotStore persists daily snapshots.
type SnapshotStore struct {
	DB *gorm.DB
}

// GetSnapshot returns nil without error when no snapshot exists for the day.
func (s *SnapshotStore) GetSnapshot(ctx context.Context, userID uint, date time.Time) (*domain.DailySnapshot, error) {
	var snap domain.DailySnapshot
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND record_date = ?", userID, date).
		Take(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(err)
	}
	return &snap, nil
}

// CountSnapshotsOn counts snapshots recorded for date across all users.
func (s *SnapshotStore) CountSnapshotsOn(ctx context.Context, date time.Time) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&domain.DailySnapshot{}).
		Where("record_date = ?", date).
		Count(&n).Error
	if err != nil {
		return 0, database.Classify(err)
	}
	return n, nil
}

// UpsertSnapshot inserts the snapshot or overwrites the values of the existing
// row for the same (user, record date), in its own transaction.
func (s *SnapshotStore) UpsertSnapshot(ctx context.Context, snap *domain.DailySnapshot) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "record_date"}},
			DoUpdates: clause.AssignmentColumns(domain.SnapshotValueColumns),
		}).Create(snap).Error
	})
	return database.Classify(err)
}

// ListSnapshots returns a user's snapshots on or after since, oldest first.
func (s *SnapshotStore) ListSnapshots(ctx context.Context, userID uint, since time.Time) ([]domain.DailySnapshot, error) {
	var snaps []domain.DailySnapshot
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND record_date >= ?", userID, since).
		Order("record_date").
		Find(&snaps).Error
	if err != nil {
		return nil, database.Classify(err)
	}
	return snaps, nil
}
