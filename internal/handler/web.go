package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/service"
	"github.com/iliyamo/room-reservation/internal/utils"
	"github.com/iliyamo/room-reservation/internal/web"
)

// LoginPath is where RequireLogin sends anonymous visitors.
const LoginPath = "/auth/login/"

// WebHandler serves the HTML pages.  It goes through the same services as
// the JSON API, so validation and ownership rules are identical.
type WebHandler struct {
	Reservations *service.ReservationService
	Rooms        *service.RoomService
	Auth         *AuthHandler
	PageSize     int
	SecureCookie bool
}

func NewWebHandler(res *service.ReservationService, rooms *service.RoomService, auth *AuthHandler) *WebHandler {
	if res == nil || rooms == nil || auth == nil {
		panic("nil dependency passed to NewWebHandler")
	}
	return &WebHandler{
		Reservations: res,
		Rooms:        rooms,
		Auth:         auth,
		PageSize:     res.PageSize,
		SecureCookie: auth.Cfg.Env == "prod",
	}
}

// view starts the template data of every page with the logged-in username.
func view(c echo.Context) echo.Map {
	return echo.Map{"Me": middleware.Username(c)}
}

// pageErr turns a service error into the error page the HTTP error
// handler renders.
func pageErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, errBadID):
		return echo.ErrNotFound
	case errors.Is(err, policy.ErrForbidden):
		return echo.ErrForbidden
	}
	return err
}

// Index renders GET /: all reservations, newest first.
func (h *WebHandler) Index(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Reservations.List(ctx, middleware.Actor(c), pageParam(c))
	if err != nil {
		return pageErr(err)
	}
	data := view(c)
	data["Page"] = p
	return c.Render(http.StatusOK, "index.html", data)
}

// Room renders GET /room/:slug/.
func (h *WebHandler) Room(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	rm, err := h.Rooms.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return pageErr(err)
	}
	_, items, err := h.Reservations.ListByRoom(ctx, middleware.Actor(c), rm.ID)
	if err != nil {
		return pageErr(err)
	}
	data := view(c)
	data["Room"] = rm
	data["Page"] = service.PageOf(items, pageParam(c), h.PageSize)
	return c.Render(http.StatusOK, "room.html", data)
}

// Profile renders GET /u/:username/.
func (h *WebHandler) Profile(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	u, p, err := h.Reservations.ListByAuthor(ctx, middleware.Actor(c), c.Param("username"), pageParam(c))
	if err != nil {
		return pageErr(err)
	}
	data := view(c)
	data["Profile"] = u
	data["Page"] = p
	return c.Render(http.StatusOK, "profile.html", data)
}

// Detail renders GET /u/:username/:id/.  A reservation that exists but
// belongs to someone else is reported as not found.
func (h *WebHandler) Detail(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return pageErr(err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	actor := middleware.Actor(c)
	u, p, err := h.Reservations.ListByAuthor(ctx, actor, c.Param("username"), 1)
	if err != nil {
		return pageErr(err)
	}
	rv, err := h.Reservations.Get(ctx, actor, id)
	if err != nil {
		return pageErr(err)
	}
	if rv.AuthorID != u.ID {
		return echo.ErrNotFound
	}
	data := view(c)
	data["Profile"] = u
	data["Count"] = p.Total
	data["Reservation"] = rv
	return c.Render(http.StatusOK, "reservation.html", data)
}

// reservationForm is what the reservation form posts back.
type reservationForm struct {
	Room         uint64
	DatetimeFrom string
	DatetimeTo   string
}

func readForm(c echo.Context) (reservationForm, service.ReservationInput) {
	f := reservationForm{
		DatetimeFrom: strings.TrimSpace(c.FormValue("datetime_from")),
		DatetimeTo:   strings.TrimSpace(c.FormValue("datetime_to")),
	}
	in := service.ReservationInput{DatetimeFrom: &f.DatetimeFrom, DatetimeTo: &f.DatetimeTo}
	if id, err := strconv.ParseUint(c.FormValue("room"), 10, 64); err == nil && id > 0 {
		f.Room = id
		in.Room = &f.Room
	}
	return f, in
}

// renderForm shows the reservation form with any field errors.
func (h *WebHandler) renderForm(c echo.Context, status int, action string, f reservationForm, verr *booking.ValidationError) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	rooms, err := h.Rooms.List(ctx, nil)
	if err != nil {
		return err
	}
	data := view(c)
	data["Action"] = action
	data["Rooms"] = rooms
	data["Form"] = f
	if verr != nil {
		data["Errors"] = verr.Fields
	}
	return c.Render(status, "reservation_form.html", data)
}

// New serves GET and POST /new/.  A successful POST redirects to the
// index; a rejected one shows the form again with the reasons.
func (h *WebHandler) New(c echo.Context) error {
	const action = "New reservation"
	if c.Request().Method != http.MethodPost {
		var f reservationForm
		if id, err := strconv.ParseUint(c.QueryParam("room"), 10, 64); err == nil {
			f.Room = id
		}
		return h.renderForm(c, http.StatusOK, action, f, nil)
	}

	f, in := readForm(c)
	ctx, cancel := dbCtx(c)
	defer cancel()
	_, err := h.Reservations.Create(ctx, middleware.Actor(c), in)
	var verr *booking.ValidationError
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, "/")
	case errors.As(err, &verr):
		return h.renderForm(c, http.StatusBadRequest, action, f, verr)
	case errors.Is(err, repository.ErrRoomNotFound):
		verr = &booking.ValidationError{}
		verr.Add(service.FieldRoom, "Select a valid choice.")
		return h.renderForm(c, http.StatusBadRequest, action, f, verr)
	}
	return pageErr(err)
}

// Edit serves GET and POST /u/:username/:id/edit/.  Visitors other than
// the author are sent back to the index.
func (h *WebHandler) Edit(c echo.Context) error {
	const action = "Edit reservation"
	id, err := parseID(c, "id")
	if err != nil {
		return pageErr(err)
	}
	actor := middleware.Actor(c)
	ctx, cancel := dbCtx(c)
	defer cancel()
	rv, err := h.Reservations.Get(ctx, actor, id)
	if err != nil {
		return pageErr(err)
	}
	if rv.Author != c.Param("username") {
		return echo.ErrNotFound
	}
	if rv.AuthorID != actor.UserID {
		return c.Redirect(http.StatusFound, "/")
	}

	if c.Request().Method != http.MethodPost {
		f := reservationForm{
			Room:         rv.RoomID,
			DatetimeFrom: rv.DatetimeFrom.UTC().Format(web.InputLayout),
			DatetimeTo:   rv.DatetimeTo.UTC().Format(web.InputLayout),
		}
		return h.renderForm(c, http.StatusOK, action, f, nil)
	}

	f, in := readForm(c)
	_, err = h.Reservations.Update(ctx, actor, id, in, false)
	var verr *booking.ValidationError
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, "/")
	case errors.As(err, &verr):
		return h.renderForm(c, http.StatusBadRequest, action, f, verr)
	case errors.Is(err, repository.ErrRoomNotFound):
		verr = &booking.ValidationError{}
		verr.Add(service.FieldRoom, "Select a valid choice.")
		return h.renderForm(c, http.StatusBadRequest, action, f, verr)
	}
	return pageErr(err)
}

// LoginForm serves GET /auth/login/.
func (h *WebHandler) LoginForm(c echo.Context) error {
	data := view(c)
	data["Next"] = safeNext(c.QueryParam("next"), "/")
	return c.Render(http.StatusOK, "login.html", data)
}

// Login serves POST /auth/login/.  On success the access token is stored in
// the cookie read by OptionalJWT and the visitor continues to next.
func (h *WebHandler) Login(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	next := safeNext(c.FormValue("next"), "/")

	ctx, cancel := dbCtx(c)
	defer cancel()
	u, err := h.Auth.authenticate(ctx, username, c.FormValue("password"))
	if err != nil {
		if !errors.Is(err, errBadCredentials) {
			return err
		}
		data := view(c)
		data["Next"] = next
		data["Username"] = username
		data["Error"] = "Please enter a correct username and password."
		return c.Render(http.StatusUnauthorized, "login.html", data)
	}
	access, err := utils.NewAccessToken(h.Auth.Cfg.JWTSecret, utils.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}, h.Auth.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    access.Token,
		Path:     "/",
		Expires:  access.Exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, next)
}

// Logout serves /auth/logout/ by expiring the cookie.
func (h *WebHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, "/")
}

// ErrorPages renders 404.html and 500.html for page requests and defers to
// fallback for the JSON API, the docs and any other status.
func ErrorPages(fallback echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		p := c.Request().URL.Path
		if c.Response().Committed || strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/swagger") {
			fallback(err, c)
			return
		}
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		data := view(c)
		switch {
		case code == http.StatusNotFound:
			data["Path"] = p
			err = c.Render(code, "404.html", data)
		case code >= http.StatusInternalServerError:
			c.Logger().Errorf("%s %s: %v", c.Request().Method, p, err)
			err = c.Render(code, "500.html", data)
		default:
			fallback(err, c)
			return
		}
		if err != nil {
			fallback(err, c)
		}
	}
}
