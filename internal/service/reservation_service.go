package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/studyroom/reservation-service/internal/models"
	"github.com/studyroom/reservation-service/internal/repository"
	"github.com/studyroom/reservation-service/internal/timeslot"
)

// Extension policy variants: "silent" keeps the checked-in status when the
// end time is rewritten; "reverify" resets the row to not-checked-in and
// re-arms the no-show timer from the moment of extension.
const (
	ExtendSilent   = "silent"
	ExtendReverify = "reverify"
)

// Policy carries the booking rules that differ between deployments.
type Policy struct {
	Rooms              []string
	StudentIDLength    int
	MinPartySize       int
	MaxDuration        time.Duration
	CheckinEarly       time.Duration
	NoShowGrace        time.Duration
	ExtensionWindow    time.Duration
	ExtensionPolicy    string
	BookingHorizonDays int
}

func DefaultPolicy() Policy {
	return Policy{
		Rooms:              []string{"room1", "room2"},
		StudentIDLength:    10,
		MinPartySize:       3,
		MaxDuration:        3 * time.Hour,
		CheckinEarly:       10 * time.Minute,
		NoShowGrace:        15 * time.Minute,
		ExtensionWindow:    30 * time.Minute,
		ExtensionPolicy:    ExtendSilent,
		BookingHorizonDays: 14,
	}
}

// EventPublisher receives lifecycle events. Satisfied by rabbitmq.Publisher;
// nil disables publishing.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type SubmitInput struct {
	Department    string
	RepName       string
	RepID         string
	PartySize     int
	Date          string
	StartTime     string
	EndTime       string
	RoomID        string
	TeamMemberIDs []string
}

// RoomStatus is the derived occupancy answer for one room at one instant.
// It is recomputed on every read and never stored on a reservation.
type RoomStatus struct {
	RoomID    string
	Occupied  bool
	Status    models.AttendanceStatus
	EndTime   string
	NextStart string
}

type ReservationService interface {
	Submit(ctx context.Context, in SubmitInput) (*models.Reservation, error)
	Lookup(ctx context.Context, name, repID string) ([]models.Reservation, error)
	DaySchedule(ctx context.Context, date, room string) ([]models.Reservation, error)
	RoomStatuses(ctx context.Context, date, at string) ([]RoomStatus, error)
	CheckIn(ctx context.Context, roomID string) (*models.Reservation, error)
	Extend(ctx context.Context, name, repID, newEnd string) (*models.Reservation, error)
	Cancel(ctx context.Context, name, repID, date, start string) error
	AdminList(ctx context.Context) ([]models.Reservation, error)
	AdminDelete(ctx context.Context, id int64) error
}

type reservationService struct {
	store  repository.Store
	events EventPublisher
	clock  timeslot.Clock
	policy Policy
}

func NewReservationService(store repository.Store, events EventPublisher, clock timeslot.Clock, policy Policy) ReservationService {
	return &reservationService{
		store:  store,
		events: events,
		clock:  clock,
		policy: policy,
	}
}

func (s *reservationService) Submit(ctx context.Context, in SubmitInput) (*models.Reservation, error) {
	name := strings.TrimSpace(in.RepName)
	repID := strings.TrimSpace(in.RepID)
	if name == "" || !s.validID(repID) {
		return nil, ErrInvalidIdentity
	}

	members := make([]string, 0, len(in.TeamMemberIDs))
	for _, m := range in.TeamMemberIDs {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if !s.validID(m) {
			return nil, ErrInvalidIdentity
		}
		members = append(members, m)
	}

	if !s.roomKnown(in.RoomID) {
		return nil, ErrUnknownRoom
	}
	if err := s.validDate(in.Date); err != nil {
		return nil, err
	}
	if !validWindow(in.StartTime, in.EndTime) {
		return nil, ErrInvalidTimeRange
	}

	rows, err := s.loadSwept(ctx)
	if err != nil {
		return nil, err
	}

	if BelowMinParty(in.PartySize, s.policy.MinPartySize) {
		return nil, ErrBelowMinimumParty
	}
	if ExceedsMaxDuration(in.StartTime, in.EndTime, s.policy.MaxDuration) {
		return nil, ErrDurationExceeded
	}
	if dup, offending := DuplicateForPerson(append([]string{repID}, members...), in.Date, rows); dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBooking, offending)
	}
	if HasTimeOverlap(in.Date, in.StartTime, in.EndTime, in.RoomID, rows) {
		return nil, ErrTimeConflict
	}

	now := s.clock.Now()
	rec := &models.Reservation{
		Department: in.Department,
		RepName:    name,
		RepID:      repID,
		PartySize:  in.PartySize,
		Date:       in.Date,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		RoomID:     in.RoomID,
		Status:     models.StatusNotCheckedIn,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	rec.SetMemberIDs(members)

	if err := s.store.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist reservation: %w", err)
	}

	s.publish("reservation.created", rec)
	return rec, nil
}

func (s *reservationService) Lookup(ctx context.Context, name, repID string) ([]models.Reservation, error) {
	rows, err := s.loadSwept(ctx)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	repID = strings.TrimSpace(repID)

	var mine []models.Reservation
	for _, r := range rows {
		if r.RepName == name && r.RepID == repID {
			mine = append(mine, r)
		}
	}
	if len(mine) == 0 {
		return nil, ErrNotFound
	}
	return mine, nil
}

func (s *reservationService) DaySchedule(ctx context.Context, date, room string) ([]models.Reservation, error) {
	if _, err := time.ParseInLocation(timeslot.DateLayout, date, timeslot.KST); err != nil {
		return nil, ErrInvalidDate
	}
	if room != "" && !s.roomKnown(room) {
		return nil, ErrUnknownRoom
	}

	rows, err := s.loadSwept(ctx)
	if err != nil {
		return nil, err
	}

	day := make([]models.Reservation, 0)
	for _, r := range rows {
		if r.Date != date {
			continue
		}
		if room != "" && r.RoomID != room {
			continue
		}
		day = append(day, r)
	}
	sort.Slice(day, func(i, j int) bool {
		if day[i].RoomID != day[j].RoomID {
			return day[i].RoomID < day[j].RoomID
		}
		return day[i].StartTime < day[j].StartTime
	})
	return day, nil
}

func (s *reservationService) RoomStatuses(ctx context.Context, date, at string) ([]RoomStatus, error) {
	now := s.clock.Now()
	if date == "" {
		date = now.Format(timeslot.DateLayout)
	} else if _, err := time.ParseInLocation(timeslot.DateLayout, date, timeslot.KST); err != nil {
		return nil, ErrInvalidDate
	}
	if at == "" {
		at = now.Format(timeslot.TimeLayout)
	}
	t, err := timeslot.Parse(at)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}

	rows, err := s.loadSwept(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RoomStatus, 0, len(s.policy.Rooms))
	for _, room := range s.policy.Rooms {
		status := RoomStatus{RoomID: room}
		nextStart := -1
		for _, r := range rows {
			if r.RoomID != room || r.Date != date {
				continue
			}
			start, err := timeslot.Parse(r.StartTime)
			if err != nil {
				continue
			}
			end, err := timeslot.Parse(r.EndTime)
			if err != nil {
				continue
			}
			// A pending row tentatively occupies its slot until the no-show
			// sweep removes it; a checked-in row occupies through its
			// (possibly extended) end time.
			if start <= t && t < end {
				status.Occupied = true
				status.Status = r.Status
				status.EndTime = r.EndTime
			}
			if start > t && (nextStart == -1 || start < nextStart) {
				nextStart = start
			}
		}
		if nextStart >= 0 {
			status.NextStart = timeslot.Format(nextStart)
		}
		out = append(out, status)
	}
	return out, nil
}

// CheckIn handles the scanned-code trigger for a room's door. It flips
// exactly one pending reservation to checked-in: the one on today's date
// whose window [start − early, end) contains now, earliest start first.
// Any miss (wrong time, wrong room, already checked in) reports failure and
// mutates nothing, so a second scan after success is a plain failure.
func (s *reservationService) CheckIn(ctx context.Context, roomID string) (*models.Reservation, error) {
	if !s.roomKnown(roomID) {
		return nil, ErrUnknownRoom
	}

	rows, err := s.loadSwept(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := now.Format(timeslot.DateLayout)

	best := -1
	for i, r := range rows {
		if r.RoomID != roomID || r.Date != today || r.Status != models.StatusNotCheckedIn {
			continue
		}
		startAt, err := timeslot.Combine(r.Date, r.StartTime)
		if err != nil {
			continue
		}
		endAt, err := timeslot.Combine(r.Date, r.EndTime)
		if err != nil {
			continue
		}
		if now.Before(startAt.Add(-s.policy.CheckinEarly)) || !now.Before(endAt) {
			continue
		}
		// The overlap invariant means at most one row should qualify; pick
		// the earliest start defensively anyway.
		if best == -1 || rows[i].StartTime < rows[best].StartTime {
			best = i
		}
	}
	if best == -1 {
		return nil, ErrCheckinWindowMiss
	}

	rows[best].Status = models.StatusCheckedIn
	rows[best].UpdatedAt = now
	if err := s.store.ReplaceAll(ctx, rows); err != nil {
		return nil, fmt.Errorf("persist check-in: %w", err)
	}

	checked := rows[best]
	s.publish("reservation.checked_in", &checked)
	return &checked, nil
}

func (s *reservationService) Extend(ctx context.Context, name, repID, newEnd string) (*models.Reservation, error) {
	rows, err := s.loadSwept(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := now.Format(timeslot.DateLayout)
	name = strings.TrimSpace(name)
	repID = strings.TrimSpace(repID)

	// Most recently created booking first, matching how users think of
	// "my current booking" when they have several rows on file.
	target := -1
	for i, r := range rows {
		if r.RepName == name && r.RepID == repID && r.Date == today {
			target = i
		}
	}
	if target == -1 {
		return nil, ErrNotFound
	}
	cur := rows[target]

	if cur.Status != models.StatusCheckedIn {
		return nil, ErrNotCheckedIn
	}

	endAt, err := timeslot.Combine(cur.Date, cur.EndTime)
	if err != nil {
		return nil, fmt.Errorf("reservation %d has unreadable end time: %w", cur.ID, err)
	}
	if now.Before(endAt.Add(-s.policy.ExtensionWindow)) || !now.Before(endAt) {
		return nil, ErrExtensionWindowMiss
	}

	if !timeslot.OnGrid(newEnd) || newEnd <= cur.EndTime {
		return nil, ErrInvalidTimeRange
	}

	// The next chronological booking in the same room bounds the new end;
	// with no follower any grid slot up to the day's last is allowed.
	for _, r := range rows {
		if r.ID == cur.ID || r.RoomID != cur.RoomID || r.Date != cur.Date {
			continue
		}
		if r.StartTime >= cur.EndTime && newEnd > r.StartTime {
			return nil, ErrExtensionConflict
		}
	}

	rows[target].EndTime = newEnd
	rows[target].UpdatedAt = now
	if s.policy.ExtensionPolicy == ExtendReverify {
		// Force a second check-in; the no-show sweep measures the grace
		// period from UpdatedAt for rows re-armed this way.
		rows[target].Status = models.StatusNotCheckedIn
	}

	if err := s.store.ReplaceAll(ctx, rows); err != nil {
		return nil, fmt.Errorf("persist extension: %w", err)
	}

	extended := rows[target]
	s.publish("reservation.extended", &extended)
	return &extended, nil
}

func (s *reservationService) Cancel(ctx context.Context, name, repID, date, start string) error {
	rows, err := s.loadSwept(ctx)
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	repID = strings.TrimSpace(repID)

	target := -1
	for i, r := range rows {
		if r.RepName == name && r.RepID == repID && r.Date == date && r.StartTime == start {
			target = i
			break
		}
	}
	if target == -1 {
		return ErrNotFound
	}

	cancelled := rows[target]
	rows = append(rows[:target], rows[target+1:]...)
	if err := s.store.ReplaceAll(ctx, rows); err != nil {
		return fmt.Errorf("persist cancellation: %w", err)
	}

	s.publish("reservation.cancelled", &cancelled)
	return nil
}

// AdminList returns the table as stored, without running the expiry sweep,
// so the admin panel sees exactly what is on disk.
func (s *reservationService) AdminList(ctx context.Context) ([]models.Reservation, error) {
	return s.store.Load(ctx)
}

func (s *reservationService) AdminDelete(ctx context.Context, id int64) error {
	removed, err := s.store.DeleteMatching(ctx, func(r models.Reservation) bool {
		return r.ID == id
	})
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}

	s.publish("reservation.deleted", map[string]int64{"id": id})
	return nil
}

// loadSwept loads the table after running the no-show sweep: every pending
// reservation on today's date whose grace period has elapsed is deleted.
// The sweep runs at the start of every user-facing request and is idempotent.
func (s *reservationService) loadSwept(ctx context.Context) ([]models.Reservation, error) {
	rows, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	now := s.clock.Now()
	today := now.Format(timeslot.DateLayout)

	kept := make([]models.Reservation, 0, len(rows))
	var expired []models.Reservation
	for _, r := range rows {
		if s.isExpired(r, now, today) {
			expired = append(expired, r)
			continue
		}
		kept = append(kept, r)
	}
	if len(expired) == 0 {
		return rows, nil
	}

	if err := s.store.ReplaceAll(ctx, kept); err != nil {
		return nil, fmt.Errorf("sweep expired reservations: %w", err)
	}
	for i := range expired {
		s.publish("reservation.expired", &expired[i])
	}
	return kept, nil
}

// isExpired decides whether a pending row is a no-show. It deliberately
// loosens the plain start-plus-grace deadline: the row must also be stale
// relative to UpdatedAt, so a booking made mid-slot gets a full grace period
// and a reverify extension re-arms the timer.
func (s *reservationService) isExpired(r models.Reservation, now time.Time, today string) bool {
	if r.Status != models.StatusNotCheckedIn || r.Date != today {
		return false
	}
	startAt, err := timeslot.Combine(r.Date, r.StartTime)
	if err != nil {
		return false
	}
	if !now.After(startAt.Add(s.policy.NoShowGrace)) {
		return false
	}
	return now.After(r.UpdatedAt.Add(s.policy.NoShowGrace))
}

func (s *reservationService) publish(routingKey string, payload any) {
	if s.events != nil {
		_ = s.events.Publish(routingKey, payload)
	}
}

func (s *reservationService) roomKnown(roomID string) bool {
	for _, r := range s.policy.Rooms {
		if r == roomID {
			return true
		}
	}
	return false
}

func (s *reservationService) validID(id string) bool {
	if len(id) != s.policy.StudentIDLength {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (s *reservationService) validDate(date string) error {
	d, err := time.ParseInLocation(timeslot.DateLayout, date, timeslot.KST)
	if err != nil {
		return ErrInvalidDate
	}
	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, timeslot.KST)
	if d.Before(today) || !d.Before(today.AddDate(0, 0, s.policy.BookingHorizonDays)) {
		return ErrInvalidDate
	}
	return nil
}

func validWindow(start, end string) bool {
	return timeslot.OnGrid(start) && timeslot.OnGrid(end) && end > start
}
