package timeslot

import (
	"fmt"
	"time"
)

const (
	TimeLayout  = "15:04"
	DateLayout  = "2006-01-02"
	SlotMinutes = 30
)

// LastSlot is the final selectable mark of the day.
const LastSlot = "23:30"

// KST is the booking-local zone. The reference deployment runs on UTC servers
// and treats local time as a fixed +9h offset, not an IANA zone.
var KST = time.FixedZone("KST", 9*60*60)

// Slots returns all 48 half-hour marks from 00:00 to 23:30 in order.
func Slots() []string {
	out := make([]string, 0, 24*60/SlotMinutes)
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m += SlotMinutes {
			out = append(out, fmt.Sprintf("%02d:%02d", h, m))
		}
	}
	return out
}

// Parse converts an HH:MM string to minutes since midnight.
func Parse(hhmm string) (int, error) {
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Format renders minutes since midnight as HH:MM.
func Format(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// OnGrid reports whether hhmm is a valid time on the 30-minute grid. Only the
// canonical zero-padded HH:MM form passes; stored times are compared
// lexicographically, so a "9:00" accepted here would sort after "09:30".
func OnGrid(hhmm string) bool {
	if len(hhmm) != len(TimeLayout) {
		return false
	}
	m, err := Parse(hhmm)
	if err != nil {
		return false
	}
	return m%SlotMinutes == 0
}

// Combine builds the wall-clock instant for a date plus time-of-day in KST.
func Combine(date, hhmm string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, KST)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	m, err := Parse(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(m) * time.Minute), nil
}

// NextAfter returns the first grid slot strictly after hhmm. The second
// return is false when hhmm is at or past the last slot of the day.
func NextAfter(hhmm string) (string, bool) {
	m, err := Parse(hhmm)
	if err != nil {
		return "", false
	}
	next := (m/SlotMinutes + 1) * SlotMinutes
	if next >= 24*60 {
		return "", false
	}
	return Format(next), true
}
