package seo

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/nhgweb/seo/content"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	res.WriteHeader(code)
	return cmp.Render(c.Request().Context(), res.Writer)
}

// renderNotFound serves the user's 404 view with the error-variant head
// block resolved from an empty query.
func (a *App) renderNotFound(c echo.Context) error {
	doc := a.document(content.Query{})
	head := a.head.Component(doc, nil)
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(head))
}
