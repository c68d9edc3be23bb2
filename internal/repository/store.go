package repository

import (
	"context"

	"github.com/studyroom/reservation-service/internal/models"
)

// Store is the sole owner of reservation rows. All implementations expose
// whole-collection semantics: every mutation reads the full table, changes it
// in memory and writes the full table back. There is no row-level locking;
// the load performed at the start of a request is authoritative and nothing
// is cached across requests.
type Store interface {
	// Load returns all live reservations. A missing backing medium yields an
	// empty slice, not an error; a corrupt one is an error for the request.
	Load(ctx context.Context) ([]models.Reservation, error)
	// Append assigns an ID if the row has none and persists it.
	Append(ctx context.Context, r *models.Reservation) error
	// ReplaceAll rewrites the whole table.
	ReplaceAll(ctx context.Context, rows []models.Reservation) error
	// DeleteMatching removes every row the predicate selects and returns how
	// many were removed.
	DeleteMatching(ctx context.Context, match func(models.Reservation) bool) (int, error)
}
