package service

import (
	"time"

	"github.com/studyroom/reservation-service/internal/models"
	"github.com/studyroom/reservation-service/internal/timeslot"
)

// The four submission checks are pure decision functions over the loaded
// table. They are evaluated independently; a submission is accepted only if
// none of them fire.

// HasTimeOverlap reports whether [start, end) intersects any existing
// reservation in the same room on the same date. Intervals are half-open, so
// back-to-back bookings (end == next start) never conflict. Rows whose times
// fail to parse are skipped rather than counted as conflicts.
func HasTimeOverlap(date, start, end, room string, existing []models.Reservation) bool {
	ns, err := timeslot.Parse(start)
	if err != nil {
		return false
	}
	ne, err := timeslot.Parse(end)
	if err != nil {
		return false
	}

	for _, r := range existing {
		if r.RoomID != room || r.Date != date {
			continue
		}
		es, err := timeslot.Parse(r.StartTime)
		if err != nil {
			continue
		}
		ee, err := timeslot.Parse(r.EndTime)
		if err != nil {
			continue
		}
		if ns < ee && ne > es {
			return true
		}
	}
	return false
}

// DuplicateForPerson reports whether any of ids (representative first, then
// team members in input order) already appears on a reservation for the given
// date, as representative or team member. The first offending id found is
// returned for error messaging.
func DuplicateForPerson(ids []string, date string, existing []models.Reservation) (bool, string) {
	taken := make(map[string]struct{})
	for _, r := range existing {
		if r.Date != date {
			continue
		}
		for _, id := range r.AllIDs() {
			taken[id] = struct{}{}
		}
	}

	for _, id := range ids {
		if _, ok := taken[id]; ok {
			return true, id
		}
	}
	return false, ""
}

// ExceedsMaxDuration reports whether end − start is strictly greater than max.
func ExceedsMaxDuration(start, end string, max time.Duration) bool {
	s, err := timeslot.Parse(start)
	if err != nil {
		return false
	}
	e, err := timeslot.Parse(end)
	if err != nil {
		return false
	}
	return time.Duration(e-s)*time.Minute > max
}

// BelowMinParty reports whether size fails the minimum occupancy policy.
func BelowMinParty(size, min int) bool {
	return size < min
}
