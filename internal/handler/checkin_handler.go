package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/studyroom/reservation-service/internal/dto"
	"github.com/studyroom/reservation-service/internal/service"
)

// CheckinHandler processes the scanned-code trigger posted at a room's door.
// The QR code encodes a URL whose only payload is the checkin=roomN parameter.
type CheckinHandler struct {
	svc service.ReservationService
}

func NewCheckinHandler(svc service.ReservationService) *CheckinHandler {
	return &CheckinHandler{svc: svc}
}

func (h *CheckinHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/checkin", h.CheckIn)
}

func (h *CheckinHandler) CheckIn(c echo.Context) error {
	room := c.QueryParam("checkin")
	if room == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "checkin parameter is required")
	}

	rec, err := h.svc.CheckIn(c.Request().Context(), room)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.CheckinResponse{
		Message:     "checked in: " + rec.RepName,
		Reservation: dto.ToReservationResponse(rec),
	})
}
