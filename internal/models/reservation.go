package models

import (
	"strings"
	"time"
)

type AttendanceStatus string

const (
	StatusNotCheckedIn AttendanceStatus = "not_checked_in"
	StatusCheckedIn    AttendanceStatus = "checked_in"
)

// Reservation is one booking row. Expired and cancelled bookings are deleted
// from the store, never flagged, so these two statuses are the whole lifecycle.
type Reservation struct {
	ID         int64            `gorm:"primaryKey" json:"id"`
	Department string           `json:"department"`
	RepName    string           `gorm:"not null" json:"representative_name"`
	RepID      string           `gorm:"not null;index" json:"representative_id"`
	PartySize  int              `gorm:"not null" json:"party_size"`
	Date       string           `gorm:"type:varchar(10);not null;index" json:"date"`
	StartTime  string           `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime    string           `gorm:"type:varchar(5);not null" json:"end_time"`
	RoomID     string           `gorm:"type:varchar(32);not null;index" json:"room_id"`
	Status     AttendanceStatus `gorm:"type:varchar(20);not null;default:'not_checked_in'" json:"attendance_status"`

	// Comma-joined student ids sharing the one-booking-per-day rule.
	TeamMemberIDs string `json:"team_member_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberIDs splits the comma-joined team-member column.
func (r *Reservation) MemberIDs() []string {
	if r.TeamMemberIDs == "" {
		return nil
	}
	parts := strings.Split(r.TeamMemberIDs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetMemberIDs stores the team-member id list in column form.
func (r *Reservation) SetMemberIDs(ids []string) {
	r.TeamMemberIDs = strings.Join(ids, ",")
}

// AllIDs returns every identity bound to this row: representative first,
// then team members in stored order.
func (r *Reservation) AllIDs() []string {
	return append([]string{r.RepID}, r.MemberIDs()...)
}
