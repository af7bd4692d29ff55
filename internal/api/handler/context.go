package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/govalyteams/sheetdesk/internal/api/middleware"
	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

const headerIdempotencyKey = "Idempotency-Key"

// callerFrom returns the identity injected by the Auth middleware. Its
// absence means the route was mounted without Auth, which is a 401.
func callerFrom(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// warnRoleMismatch logs when a request body claims a different role than
// the token. The body value is never used for authorization.
func warnRoleMismatch(log zerolog.Logger, c echo.Context, caller domain.Identity, claimed string) {
	if claimed == "" || domain.Role(claimed).Tier() == caller.Role.Tier() {
		return
	}
	log.Warn().
		Str("account_id", caller.AccountID).
		Str("token_role", string(caller.Role)).
		Str("body_role", claimed).
		Str("path", c.Path()).
		Msg("request body role ignored")
}
