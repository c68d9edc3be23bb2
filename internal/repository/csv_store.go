package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/studyroom/reservation-service/internal/models"
)

// csvHeader mirrors the reservation columns one-to-one. New rows are appended
// and every mutation rewrites the whole file, header included.
var csvHeader = []string{
	"id", "department", "representative_name", "representative_id", "party_size",
	"date", "start_time", "end_time", "room_id", "attendance_status",
	"team_member_ids", "created_at", "updated_at",
}

// CSVStore keeps the reservation table in one flat, text-delimited file.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Load(ctx context.Context) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Reservation{}, nil
		}
		return nil, fmt.Errorf("open reservation file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read reservation file: %w", err)
	}
	if len(records) == 0 {
		return []models.Reservation{}, nil
	}

	rows := make([]models.Reservation, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		r, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("reservation file row %d: %w", i+2, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (s *CSVStore) Append(ctx context.Context, r *models.Reservation) error {
	rows, err := s.Load(ctx)
	if err != nil {
		return err
	}

	if r.ID == 0 {
		var max int64
		for _, row := range rows {
			if row.ID > max {
				max = row.ID
			}
		}
		r.ID = max + 1
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}

	return s.write(append(rows, *r))
}

func (s *CSVStore) ReplaceAll(ctx context.Context, rows []models.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(rows)
}

func (s *CSVStore) DeleteMatching(ctx context.Context, match func(models.Reservation) bool) (int, error) {
	rows, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}

	kept := rows[:0]
	removed := 0
	for _, r := range rows {
		if match(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.write(kept)
}

func (s *CSVStore) write(rows []models.Reservation) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("rewrite reservation file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(toRecord(r)); err != nil {
			return fmt.Errorf("write row %d: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush reservation file: %w", err)
	}
	return f.Close()
}

func toRecord(r models.Reservation) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Department,
		r.RepName,
		r.RepID,
		strconv.Itoa(r.PartySize),
		r.Date,
		r.StartTime,
		r.EndTime,
		r.RoomID,
		string(r.Status),
		r.TeamMemberIDs,
		r.CreatedAt.Format(time.RFC3339),
		r.UpdatedAt.Format(time.RFC3339),
	}
}

func fromRecord(rec []string) (models.Reservation, error) {
	var r models.Reservation
	if len(rec) != len(csvHeader) {
		return r, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(rec))
	}

	id, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return r, fmt.Errorf("parse id: %w", err)
	}
	size, err := strconv.Atoi(rec[4])
	if err != nil {
		return r, fmt.Errorf("parse party_size: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, rec[11])
	if err != nil {
		return r, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, rec[12])
	if err != nil {
		return r, fmt.Errorf("parse updated_at: %w", err)
	}

	return models.Reservation{
		ID:            id,
		Department:    rec[1],
		RepName:       rec[2],
		RepID:         rec[3],
		PartySize:     size,
		Date:          rec[5],
		StartTime:     rec[6],
		EndTime:       rec[7],
		RoomID:        rec[8],
		Status:        models.AttendanceStatus(rec[9]),
		TeamMemberIDs: rec[10],
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
