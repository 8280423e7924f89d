package handler // package handler holds the HTTP handlers for the JSON API and the HTML pages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/service"
)

// dbTimeout bounds the store work of a single request.
const dbTimeout = 5 * time.Second

// Validator adapts go-playground/validator to echo.Validator.  Field names
// in reported errors are the JSON keys of the request struct.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the request validator registered on the Echo
// instance.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// fieldErrors turns validator failures into the field-tagged error used by
// the rest of the API.
func fieldErrors(errs validator.ValidationErrors) *booking.ValidationError {
	verr := &booking.ValidationError{}
	for _, fe := range errs {
		verr.Add(fe.Field(), tagMessage(fe))
	}
	return verr
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return service.MsgRequired
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	}
	return "Invalid value."
}

// bindValid binds the request body into req and validates it.
func bindValid(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errBadBody
	}
	if err := c.Validate(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return fieldErrors(ve)
		}
		return err
	}
	return nil
}

var errBadBody = errors.New("invalid body")

// writeError maps a service or repository error onto the API's status codes
// and JSON shapes.  Anything unrecognized is logged and reported as 500.
func writeError(c echo.Context, err error) error {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": verr.Fields})
	case errors.Is(err, errBadBody), errors.Is(err, errBadID):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrBadWindow):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, policy.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	case errors.Is(err, policy.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrBuildingNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

var errBadID = errors.New("invalid id")

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return id, nil
}

// pageParam reads ?page=N, defaulting to 1 on absent or junk values.
func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pageURL returns the absolute URL of the current request with page
// replaced by n.
func pageURL(c echo.Context, n int) string {
	u := *c.Request().URL
	q := u.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	u.Scheme = c.Scheme()
	u.Host = c.Request().Host
	return u.String()
}

// paginated renders a page as {"count","next","previous","results"}.
func paginated[T any](c echo.Context, p service.Page[T]) error {
	var next, prev *string
	if p.HasNext() {
		s := pageURL(c, p.Number+1)
		next = &s
	}
	if p.HasPrev() {
		s := pageURL(c, p.Number-1)
		prev = &s
	}
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":    p.Total,
		"next":     next,
		"previous": prev,
		"results":  items,
	})
}

// safeNext accepts only same-site relative redirect targets.
func safeNext(next, fallback string) string {
	u, err := url.Parse(next)
	if next == "" || err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	return next
}
