package repository

import (
	"context"

	"github.com/studyroom/reservation-service/internal/models"
	"gorm.io/gorm"
)

// GormStore backs the reservation table with a relational database while
// keeping the same whole-collection contract as the flat file: callers still
// read-modify-write the full table. The transaction in ReplaceAll only keeps
// a failed rewrite from leaving a half-written table; it adds no row locks.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context) ([]models.Reservation, error) {
	var rows []models.Reservation
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) Append(ctx context.Context, r *models.Reservation) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) ReplaceAll(ctx context.Context, rows []models.Reservation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.Reservation{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (s *GormStore) DeleteMatching(ctx context.Context, match func(models.Reservation) bool) (int, error) {
	rows, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}

	ids := make([]int64, 0)
	for _, r := range rows {
		if match(r) {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Delete(&models.Reservation{}, ids)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
