package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/govalyteams/sheetdesk/internal/api/metrics"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
)

// AccountHandler serves the identity store.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// List handles GET /accounts.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   accountResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	accounts, err := h.accounts.ListAccounts(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponses(accounts))
}

// Create handles POST /accounts.
//
// @Summary      Create an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createAccountRequest  true   "Account details"
// @Success      201              {object}  accountResponse
// @Failure      400              {object}  map[string]string
// @Failure      403              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Router       /accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.accounts.CreateAccount(c.Request().Context(), caller, ports.CreateAccountInput{
		Username:       req.Username,
		Password:       req.Password,
		Role:           req.Role,
		Designation:    req.Designation,
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}

	if result.Replayed {
		c.Response().Header().Set("Idempotent-Replayed", "true")
	} else {
		metrics.AccountsCreatedTotal.WithLabelValues(string(result.Account.Role)).Inc()
	}
	return c.JSON(http.StatusCreated, toAccountResponse(result.Account))
}
