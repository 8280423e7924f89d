package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/service"
)

// BuildingHandler serves /api/v1/buildings.  Reads are public; writes need
// the ADMIN role.
type BuildingHandler struct {
	Svc *service.BuildingService
}

func NewBuildingHandler(svc *service.BuildingService) *BuildingHandler {
	if svc == nil {
		panic("nil service passed to NewBuildingHandler")
	}
	return &BuildingHandler{Svc: svc}
}

type buildingReq struct {
	Name string `json:"name" validate:"required,max=50"`
}

func (h *BuildingHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Svc.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BuildingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	b, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BuildingHandler) Create(c echo.Context) error {
	var req buildingReq
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	b, err := h.Svc.Create(ctx, middleware.Actor(c), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Rename handles PUT /buildings/:id.
func (h *BuildingHandler) Rename(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req buildingReq
	if err := bindValid(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	b, err := h.Svc.Rename(ctx, middleware.Actor(c), id, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /buildings/:id, cascading to rooms and their
// reservations.
func (h *BuildingHandler) Delete(c echo.Context) error {
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
