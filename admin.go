package seo

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/document"
)

// metaKinds are the entity kinds the editor accepts.
var metaKinds = map[string]bool{"post": true, "term": true}

// metaSanitizer strips all markup from submitted override values. Titles
// and descriptions are emitted into meta tags, never as HTML.
var metaSanitizer = bluemonday.StrictPolicy()

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return Render(c, a.Views.AdminEditor(MetaForm{Kind: "post"}, c.QueryParam("msg"), CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		a.loginLimiter.Reset(c.RealIP())
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(c.RealIP())
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminMeta shows the override editor for one entity, prefilled with
// the stored values.
func (a *App) handleAdminMeta(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	form, err := a.metaForm(c)
	if err != nil {
		return err
	}
	if form == nil {
		return c.NoContent(http.StatusNotFound)
	}
	return Render(c, a.Views.AdminEditor(*form, c.QueryParam("msg"), CsrfToken(c)))
}

// handleAdminMetaSave stores the submitted overrides. Empty fields delete
// the corresponding override, robots values are normalized through the
// directive allow-list.
func (a *App) handleAdminMetaSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	form, err := a.metaForm(c)
	if err != nil {
		return err
	}
	if form == nil {
		return c.NoContent(http.StatusNotFound)
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}

	fields := map[string]string{
		content.MetaTitle:       metaSanitizer.Sanitize(strings.TrimSpace(c.FormValue("title"))),
		content.MetaDescription: metaSanitizer.Sanitize(strings.TrimSpace(c.FormValue("description"))),
		content.MetaRobots:      normalizeRobotsValue(c.FormValue("robots")),
		content.MetaCanonical:   a.normalizeCanonicalValue(c.FormValue("canonical")),
	}
	for field, value := range fields {
		if err := a.Store.SetMeta(form.Kind, form.ID, field, value); err != nil {
			return err
		}
	}

	if form.Kind == "post" {
		if raw := strings.TrimSpace(c.FormValue(content.MetaPrimaryTerm)); raw != "" {
			termID, err := strconv.ParseInt(raw, 10, 64)
			if err == nil && termID > 0 {
				if err := a.Store.AttachPostTerm(form.ID, termID, true); err != nil {
					return err
				}
			}
		}
	}

	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/admin/meta/"+form.Kind+"/"+strconv.FormatInt(form.ID, 10)+"/?msg=saved")
}

// metaForm resolves the kind/id route parameters to an editor form, nil
// when the entity does not exist.
func (a *App) metaForm(c echo.Context) (*MetaForm, error) {
	kind := c.Param("kind")
	if !metaKinds[kind] {
		return nil, nil
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return nil, nil
	}

	var label string
	switch kind {
	case "post":
		post, err := a.Store.PostByID(id)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, nil
		}
		label = post.Title
	case "term":
		term, err := a.Store.TermByID(id)
		if err != nil {
			return nil, err
		}
		if term == nil {
			return nil, nil
		}
		label = term.Name
	}

	form := &MetaForm{Kind: kind, ID: id, EntityLabel: label}
	form.Title, _ = a.Store.GetMeta(kind, id, content.MetaTitle)
	form.Description, _ = a.Store.GetMeta(kind, id, content.MetaDescription)
	form.Robots, _ = a.Store.GetMeta(kind, id, content.MetaRobots)
	form.Canonical, _ = a.Store.GetMeta(kind, id, content.MetaCanonical)
	return form, nil
}

// normalizeRobotsValue runs a submitted directive list through the
// allow-list. An input that normalizes to the index/follow default is
// stored as empty so no override lingers.
func normalizeRobotsValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	normalized := document.ValidateRobots(document.ParseRobots(raw)).String()
	if normalized == "index, follow" {
		return ""
	}
	return normalized
}

// normalizeCanonicalValue resolves site-relative canonical overrides
// against the configured base URL.
func (a *App) normalizeCanonicalValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !IsRelative(raw) {
		return raw
	}
	return BuildURL(a.Config.URL, strings.Trim(raw, "/"))
}
