package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/studyroom/reservation-service/internal/dto"
	"github.com/studyroom/reservation-service/internal/service"
)

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/reservations", h.Submit)
	api.GET("/reservations", h.Lookup)
	api.POST("/reservations/extend", h.Extend)
	api.POST("/reservations/cancel", h.Cancel)
	api.GET("/schedule", h.DaySchedule)
	api.GET("/rooms/status", h.RoomStatuses)
}

func (h *ReservationHandler) Submit(c echo.Context) error {
	var req dto.SubmitReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	rec, err := h.svc.Submit(c.Request().Context(), service.SubmitInput{
		Department:    req.Department,
		RepName:       req.RepresentativeName,
		RepID:         req.RepresentativeID,
		PartySize:     req.PartySize,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		RoomID:        req.RoomID,
		TeamMemberIDs: req.TeamMemberIDs,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToReservationResponse(rec))
}

func (h *ReservationHandler) Lookup(c echo.Context) error {
	name := c.QueryParam("name")
	studentID := c.QueryParam("student_id")
	if name == "" || studentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and student_id are required")
	}

	rows, err := h.svc.Lookup(c.Request().Context(), name, studentID)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.ReservationResponse, len(rows))
	for i := range rows {
		resp[i] = dto.ToReservationResponse(&rows[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) DaySchedule(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}

	rows, err := h.svc.DaySchedule(c.Request().Context(), date, c.QueryParam("room"))
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.ReservationResponse, len(rows))
	for i := range rows {
		resp[i] = dto.ToReservationResponse(&rows[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) RoomStatuses(c echo.Context) error {
	statuses, err := h.svc.RoomStatuses(c.Request().Context(), c.QueryParam("date"), c.QueryParam("time"))
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.RoomStatusResponse, len(statuses))
	for i, s := range statuses {
		resp[i] = dto.ToRoomStatusResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) Extend(c echo.Context) error {
	var req dto.ExtendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RepresentativeName == "" || req.RepresentativeID == "" || req.NewEndTime == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "representative_name, representative_id and new_end_time are required")
	}

	rec, err := h.svc.Extend(c.Request().Context(), req.RepresentativeName, req.RepresentativeID, req.NewEndTime)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(rec))
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	var req dto.CancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RepresentativeName == "" || req.RepresentativeID == "" || req.Date == "" || req.StartTime == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "representative_name, representative_id, date and start_time are required")
	}

	if err := h.svc.Cancel(c.Request().Context(), req.RepresentativeName, req.RepresentativeID, req.Date, req.StartTime); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// toHTTPError maps the engine's sentinel rejections onto HTTP codes; anything
// unrecognized is a storage or programming fault and stays a 500.
func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrInvalidIdentity),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrUnknownRoom),
		errors.Is(err, service.ErrBelowMinimumParty),
		errors.Is(err, service.ErrDurationExceeded):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateBooking),
		errors.Is(err, service.ErrTimeConflict),
		errors.Is(err, service.ErrCheckinWindowMiss),
		errors.Is(err, service.ErrNotCheckedIn),
		errors.Is(err, service.ErrExtensionWindowMiss),
		errors.Is(err, service.ErrExtensionConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
