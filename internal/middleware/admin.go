package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const AdminPasswordHeader = "X-Admin-Password"

// RequireAdminPassword gates the admin surface behind one shared passphrase.
// There is no per-admin identity and no audit log; that is the whole auth model.
func RequireAdminPassword(password string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if password == "" {
				return echo.NewHTTPError(http.StatusForbidden, "admin surface is disabled")
			}
			supplied := c.Request().Header.Get(AdminPasswordHeader)
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(password)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin password")
			}
			return next(c)
		}
	}
}
