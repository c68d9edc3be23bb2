package dto

import (
	"time"

	"github.com/studyroom/reservation-service/internal/models"
	"github.com/studyroom/reservation-service/internal/service"
)

type ReservationResponse struct {
	ID                 int64                   `json:"id"`
	Department         string                  `json:"department"`
	RepresentativeName string                  `json:"representative_name"`
	RepresentativeID   string                  `json:"representative_id"`
	PartySize          int                     `json:"party_size"`
	Date               string                  `json:"date"`
	StartTime          string                  `json:"start_time"`
	EndTime            string                  `json:"end_time"`
	RoomID             string                  `json:"room_id"`
	Status             models.AttendanceStatus `json:"attendance_status"`
	TeamMemberIDs      []string                `json:"team_member_ids,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
}

type CheckinResponse struct {
	Message     string              `json:"message"`
	Reservation ReservationResponse `json:"reservation"`
}

type RoomStatusResponse struct {
	RoomID    string                  `json:"room_id"`
	Occupied  bool                    `json:"occupied"`
	Status    models.AttendanceStatus `json:"attendance_status,omitempty"`
	EndTime   string                  `json:"end_time,omitempty"`
	NextStart string                  `json:"next_start,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:                 r.ID,
		Department:         r.Department,
		RepresentativeName: r.RepName,
		RepresentativeID:   r.RepID,
		PartySize:          r.PartySize,
		Date:               r.Date,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		RoomID:             r.RoomID,
		Status:             r.Status,
		TeamMemberIDs:      r.MemberIDs(),
		CreatedAt:          r.CreatedAt,
	}
}

func ToRoomStatusResponse(s service.RoomStatus) RoomStatusResponse {
	return RoomStatusResponse{
		RoomID:    s.RoomID,
		Occupied:  s.Occupied,
		Status:    s.Status,
		EndTime:   s.EndTime,
		NextStart: s.NextStart,
	}
}
