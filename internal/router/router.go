package router // package router defines how HTTP routes are registered

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
)

// APIPrefix is the mount point of the JSON API.
const APIPrefix = "/api/v1"

// RegisterRoutes registers the probes that need no authentication.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the token endpoints on the API group.  Register,
// login, refresh and logout need no session; /me requires a valid access
// token.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	g := api.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)

	api.POST("/api-token-auth", a.ObtainToken)
	api.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterDocs serves the API description and its two viewers.  The
// document itself may be fetched cross-origin by external tooling.
func RegisterDocs(e *echo.Echo) {
	e.GET("/swagger.json", handler.OpenAPI, echomw.CORS())
	e.GET("/swagger/", handler.SwaggerUI)
	e.GET("/redoc/", handler.ReDoc)
}
