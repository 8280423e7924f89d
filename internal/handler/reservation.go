package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/service"
)

// ReservationHandler serves /api/v1/reservations.  JWTAuth runs before
// every method; ownership is enforced by the service.
type ReservationHandler struct {
	Svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc}
}

// reservationReq is the body of create and update.  Datetimes stay strings
// so malformed values are reported per field by the booking validator.
type reservationReq struct {
	Room         *uint64 `json:"room" validate:"omitempty,gt=0"`
	DatetimeFrom *string `json:"datetime_from"`
	DatetimeTo   *string `json:"datetime_to"`
}

func (r reservationReq) input() service.ReservationInput {
	return service.ReservationInput{Room: r.Room, DatetimeFrom: r.DatetimeFrom, DatetimeTo: r.DatetimeTo}
}

// List handles GET /reservations?page=N.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Svc.List(ctx, middleware.Actor(c), pageParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return paginated(c, p)
}

// Create handles POST /reservations.  A conflicting or malformed interval
// yields 400 with every broken rule listed per field.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservationReq
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rv, err := h.Svc.Create(ctx, middleware.Actor(c), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

// Get handles GET /reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rv, err := h.Svc.Get(ctx, middleware.Actor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rv)
}

// Update handles PUT (full) and PATCH (partial) on /reservations/:id.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req reservationReq
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	partial := c.Request().Method == http.MethodPatch
	rv, err := h.Svc.Update(ctx, middleware.Actor(c), id, req.input(), partial)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rv)
}

// Delete handles DELETE /reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, middleware.Actor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
