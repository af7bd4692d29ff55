package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/govalyteams/sheetdesk/internal/api/metrics"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
)

// SheetHandler serves the resource catalog and the assignment ledger.
type SheetHandler struct {
	sheets ports.SheetService
	log    zerolog.Logger
}

func NewSheetHandler(sheets ports.SheetService, log zerolog.Logger) *SheetHandler {
	return &SheetHandler{sheets: sheets, log: log}
}

// List handles GET /sheets.
//
// @Summary      List all sheets
// @Tags         sheets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   sheetResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /sheets [get]
func (h *SheetHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	sheets, err := h.sheets.ListSheets(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSheetResponses(sheets))
}

// Create handles POST /sheets.
//
// @Summary      Create a sheet
// @Tags         sheets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createSheetRequest  true   "Sheet details"
// @Success      201              {object}  sheetResponse
// @Failure      400              {object}  map[string]string
// @Failure      403              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Router       /sheets [post]
func (h *SheetHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req createSheetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.sheets.CreateSheet(c.Request().Context(), caller, ports.CreateSheetInput{
		Name:           req.Name,
		URL:            req.URL,
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}

	metrics.SheetsCreatedTotal.WithLabelValues(strconv.FormatBool(result.Replayed)).Inc()
	if result.Replayed {
		c.Response().Header().Set("Idempotent-Replayed", "true")
	}
	return c.JSON(http.StatusCreated, toSheetResponse(result.Sheet))
}

// Assign handles POST /sheets/assign.
//
// @Summary      Assign a sheet to an account
// @Description  The account may be given by accountId or username, the sheet by sheetId or sheetUrl. Re-assigning an existing pair succeeds with assigned=false.
// @Tags         sheets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      assignSheetRequest  true  "Assignment"
// @Success      200   {object}  assignSheetResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /sheets/assign [post]
func (h *SheetHandler) Assign(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req assignSheetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	warnRoleMismatch(h.log, c, caller, req.Role)

	result, err := h.sheets.AssignSheet(c.Request().Context(), caller, ports.AssignSheetInput{
		AccountID: req.AccountID,
		Username:  req.Username,
		SheetID:   req.SheetID,
		SheetURL:  req.SheetURL,
	})
	if err != nil {
		return err
	}

	msg := "sheet assigned"
	label := "added"
	if !result.Assigned {
		msg = "sheet already assigned"
		label = "existing"
	}
	metrics.AssignmentsTotal.WithLabelValues(label).Inc()

	return c.JSON(http.StatusOK, assignSheetResponse{
		Message:  msg,
		Assigned: result.Assigned,
		Sheet:    toSheetResponse(result.Sheet),
	})
}

// Delete handles DELETE /sheets/:id.
//
// @Summary      Delete a sheet
// @Description  Removes the sheet and every assignment pointing at it.
// @Tags         sheets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sheet ID"
// @Success      200  {object}  deleteSheetResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /sheets/{id} [delete]
func (h *SheetHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req deleteSheetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	warnRoleMismatch(h.log, c, caller, req.Role)

	if err := h.sheets.DeleteSheet(c.Request().Context(), caller, req.ID); err != nil {
		return err
	}
	metrics.SheetsDeletedTotal.Inc()

	return c.JSON(http.StatusOK, deleteSheetResponse{Message: "sheet deleted", ID: req.ID})
}

// ForAccount handles GET /sheets/account/:id and its /sheets/user/:id alias.
//
// @Summary      List the sheets assigned to an account
// @Tags         sheets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {array}   sheetResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /sheets/account/{id} [get]
func (h *SheetHandler) ForAccount(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	sheets, err := h.sheets.ListSheetsForAccount(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSheetResponses(sheets))
}
