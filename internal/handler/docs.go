package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/docs"
)

// OpenAPI serves the embedded API description.
func OpenAPI(c echo.Context) error {
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, docs.OpenAPI)
}

// SwaggerUI serves the interactive API browser.
func SwaggerUI(c echo.Context) error {
	return c.HTML(http.StatusOK, docs.SwaggerUI)
}

// ReDoc serves the read-only API reference.
func ReDoc(c echo.Context) error {
	return c.HTML(http.StatusOK, docs.ReDoc)
}
