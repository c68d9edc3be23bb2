package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/studyroom/reservation-service/internal/dto"
)

// ErrorHandler renders every error escaping a handler as the service's JSON
// error envelope. Handlers return *echo.HTTPError with the code already
// mapped; anything else is a 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := dto.ErrorResponse{Message: err.Error()}
	code := http.StatusInternalServerError

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			resp.Message = m
		}
	}

	_ = c.JSON(code, resp)
}
