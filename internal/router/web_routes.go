package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
)

// RegisterWeb registers the HTML pages.  The access token travels in a
// cookie; pages that show reservations send anonymous visitors to the
// login page.  Middleware is attached per route because a group on the
// root prefix would also catch unknown paths.
func RegisterWeb(e *echo.Echo, w *handler.WebHandler, jwtSecret string) {
	optional := middleware.OptionalJWT(jwtSecret)
	login := middleware.RequireLogin(handler.LoginPath)

	e.GET(handler.LoginPath, w.LoginForm, optional)
	e.POST(handler.LoginPath, w.Login)
	e.GET("/auth/logout/", w.Logout)
	e.POST("/auth/logout/", w.Logout)

	e.GET("/", w.Index, optional, login)
	e.GET("/room/:slug/", w.Room, optional, login)
	e.GET("/new/", w.New, optional, login)
	e.POST("/new/", w.New, optional, login)
	e.GET("/u/:username/", w.Profile, optional, login)
	e.GET("/u/:username/:id/", w.Detail, optional, login)
	e.GET("/u/:username/:id/edit/", w.Edit, optional, login)
	e.POST("/u/:username/:id/edit/", w.Edit, optional, login)
}
