package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/studyroom/reservation-service/internal/dto"
	"github.com/studyroom/reservation-service/internal/middleware"
	"github.com/studyroom/reservation-service/internal/service"
)

type AdminHandler struct {
	svc      service.ReservationService
	password string
}

func NewAdminHandler(svc service.ReservationService, password string) *AdminHandler {
	return &AdminHandler{svc: svc, password: password}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/admin", middleware.RequireAdminPassword(h.password))
	g.GET("/reservations", h.ListReservations)
	g.DELETE("/reservations/:id", h.DeleteReservation)
}

func (h *AdminHandler) ListReservations(c echo.Context) error {
	rows, err := h.svc.AdminList(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.ReservationResponse, len(rows))
	for i := range rows {
		resp[i] = dto.ToReservationResponse(&rows[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) DeleteReservation(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reservation id")
	}

	if err := h.svc.AdminDelete(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
