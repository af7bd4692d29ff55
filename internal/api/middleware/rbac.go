package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/govalyteams/sheetdesk/internal/api/metrics"
	"github.com/govalyteams/sheetdesk/internal/core/policy"
)

// Require rejects callers whose role the access policy does not allow to
// perform op. It must run after Auth. Services check the same policy again.
func Require(op policy.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !policy.Allowed(id.Role, op) {
				metrics.AuthzDeniedTotal.WithLabelValues(string(op)).Inc()
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}
