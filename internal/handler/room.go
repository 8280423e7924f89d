package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/service"
)

// RoomHandler serves the room registry and the availability query.
type RoomHandler struct {
	Rooms          *service.RoomService
	ReservationSvc *service.ReservationService
}

func NewRoomHandler(rooms *service.RoomService, reservations *service.ReservationService) *RoomHandler {
	if rooms == nil || reservations == nil {
		panic("nil service passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, ReservationSvc: reservations}
}

type roomReq struct {
	Name        *string `json:"name" validate:"omitempty,max=50"`
	Slug        *string `json:"slug" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=400"`
	Building    *uint64 `json:"building" validate:"omitempty,gt=0"`
}

func (r roomReq) input() service.RoomInput {
	return service.RoomInput{Name: r.Name, Slug: r.Slug, Description: r.Description, Building: r.Building}
}

// List handles GET /rooms.  With both datetime_from and datetime_to it
// returns only rooms free in that window; a malformed or inverted window is
// rejected with 400 before the store is queried.
func (h *RoomHandler) List(c echo.Context) error {
	w, err := booking.ParseWindow(c.QueryParam("datetime_from"), c.QueryParam("datetime_to"))
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rooms, err := h.Rooms.List(ctx, w)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Reservations handles GET /rooms/:id: every reservation of the room.
func (h *RoomHandler) Reservations(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	_, items, err := h.ReservationSvc.ListByRoom(ctx, middleware.Actor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Create handles POST /rooms (admin).
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rm, err := h.Rooms.Create(ctx, middleware.Actor(c), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, rm)
}

// Update handles PUT and PATCH /rooms/:id (admin).
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req roomReq
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rm, err := h.Rooms.Update(ctx, middleware.Actor(c), id, req.input(), c.Request().Method == http.MethodPatch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rm)
}

// Delete handles DELETE /rooms/:id (admin).  The room's reservations go
// with it.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Rooms.Delete(ctx, middleware.Actor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
