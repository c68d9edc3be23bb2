package dto

type SubmitReservationRequest struct {
	Department         string   `json:"department"`
	RepresentativeName string   `json:"representative_name"`
	RepresentativeID   string   `json:"representative_id"`
	PartySize          int      `json:"party_size"`
	Date               string   `json:"date"`
	StartTime          string   `json:"start_time"`
	EndTime            string   `json:"end_time"`
	RoomID             string   `json:"room_id"`
	TeamMemberIDs      []string `json:"team_member_ids,omitempty"`
}

type ExtendRequest struct {
	RepresentativeName string `json:"representative_name"`
	RepresentativeID   string `json:"representative_id"`
	NewEndTime         string `json:"new_end_time"`
}

type CancelRequest struct {
	RepresentativeName string `json:"representative_name"`
	RepresentativeID   string `json:"representative_id"`
	Date               string `json:"date"`
	StartTime          string `json:"start_time"`
}
