package repository

import (
	"context"

	"github.com/studyroom/reservation-service/internal/models"
)

// MemoryStore holds the table in process memory. Used by tests and as a
// throwaway backend for local runs; it intentionally mirrors the flat file's
// read-modify-write behavior, unsynchronized included.
type MemoryStore struct {
	rows   []models.Reservation
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Load(ctx context.Context) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Reservation, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, r *models.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID == 0 {
		r.ID = s.nextID
	}
	if r.ID >= s.nextID {
		s.nextID = r.ID + 1
	}
	s.rows = append(s.rows, *r)
	return nil
}

func (s *MemoryStore) ReplaceAll(ctx context.Context, rows []models.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.rows = make([]models.Reservation, len(rows))
	copy(s.rows, rows)
	return nil
}

func (s *MemoryStore) DeleteMatching(ctx context.Context, match func(models.Reservation) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	kept := make([]models.Reservation, 0, len(s.rows))
	removed := 0
	for _, r := range s.rows {
		if match(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return removed, nil
}
