package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/policy"
)

// API bundles the handlers mounted under APIPrefix.
type API struct {
	Reservations *handler.ReservationHandler
	Rooms        *handler.RoomHandler
	Buildings    *handler.BuildingHandler
	Users        *handler.UserHandler
}

// RegisterAPI registers the registry and reservation endpoints.  cache is
// applied to the public room and building reads and to the room-scoped
// reservation read; every write purges it through the services.
func RegisterAPI(api *echo.Group, h API, jwtSecret string, cache echo.MiddlewareFunc) {
	auth := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireRole(policy.RoleAdmin)

	// ---- Reservations ----
	r := api.Group("/reservations", auth)
	r.GET("", h.Reservations.List)
	r.POST("", h.Reservations.Create)
	r.GET("/:id", h.Reservations.Get)
	r.PUT("/:id", h.Reservations.Update)
	r.PATCH("/:id", h.Reservations.Update)
	r.DELETE("/:id", h.Reservations.Delete)

	// ---- Rooms ----
	api.GET("/rooms", h.Rooms.List, cache)
	api.GET("/rooms/:id", h.Rooms.Reservations, auth, cache)
	api.POST("/rooms", h.Rooms.Create, auth, admin)
	api.PUT("/rooms/:id", h.Rooms.Update, auth, admin)
	api.PATCH("/rooms/:id", h.Rooms.Update, auth, admin)
	api.DELETE("/rooms/:id", h.Rooms.Delete, auth, admin)

	// ---- Buildings ----
	api.GET("/buildings", h.Buildings.List, cache)
	api.GET("/buildings/:id", h.Buildings.Get, cache)
	api.POST("/buildings", h.Buildings.Create, auth, admin)
	api.PUT("/buildings/:id", h.Buildings.Rename, auth, admin)
	api.PATCH("/buildings/:id", h.Buildings.Rename, auth, admin)
	api.DELETE("/buildings/:id", h.Buildings.Delete, auth, admin)

	// ---- Users ----
	api.GET("/users", h.Users.List, auth, admin)
}
