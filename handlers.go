package seo

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nhgweb/seo/content"
)

const (
	postsPerPage    = 10
	productsPerPage = 12
)

func (a *App) handleFront(c echo.Context) error {
	var post *content.Post
	if a.Config.FrontPageID != 0 {
		p, err := a.Store.PostByID(a.Config.FrontPageID)
		if err != nil {
			return err
		}
		post = p
	}
	q := content.Query{
		IsFrontPage: true,
		IsSingular:  post != nil,
		Post:        post,
		Page:        a.bodyPage(c),
		Paged:       1,
	}
	doc := a.document(q)
	head := a.head.Component(doc, nil)
	return Render(c, a.Views.Page(head, post))
}

func (a *App) handlePage(c echo.Context) error {
	slug := c.Param("slug")
	if isYearSlug(slug) {
		return a.handleArchiveRedirect(c)
	}
	post, err := a.Cache.PostBySlug(content.KindPage, slug)
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}
	q := content.Query{
		IsSingular: true,
		Post:       post,
		Page:       a.bodyPage(c),
		Paged:      1,
		ReplyTo:    c.QueryParam("replytocom") != "",
	}
	doc := a.document(q)
	head := a.head.Component(doc, a.pageCrumbs(post))
	return Render(c, a.Views.Page(head, post))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.PostBySlug(content.KindPost, c.Param("slug"))
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}
	q := content.Query{
		IsSingular: true,
		Post:       post,
		Page:       a.bodyPage(c),
		Paged:      1,
		ReplyTo:    c.QueryParam("replytocom") != "",
	}
	doc := a.document(q)
	head := a.head.Component(doc, a.postCrumbs(post, content.TaxCategory, ""))
	return Render(c, a.Views.Page(head, post))
}

func (a *App) handleProduct(c echo.Context) error {
	post, err := a.Cache.PostBySlug(content.KindProduct, c.Param("slug"))
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}
	product, err := a.Store.ProductByPostID(post.ID)
	if err != nil {
		return err
	}
	q := content.Query{
		IsSingular: true,
		Post:       post,
		Page:       a.bodyPage(c),
		Paged:      1,
		ReplyTo:    c.QueryParam("replytocom") != "",
	}
	doc := a.document(q)
	head := a.head.Component(doc, a.postCrumbs(post, content.TaxProductCategory, "Shop"))
	return Render(c, a.Views.Product(head, post, product))
}

func (a *App) handleShop(c echo.Context) error {
	paged := a.archivePage(c)
	posts, pages, err := a.Store.ListPosts(content.KindProduct, paged, productsPerPage)
	if err != nil {
		return err
	}
	var shopPage *content.Post
	if a.Config.ShopPageID != 0 {
		shopPage, err = a.Store.PostByID(a.Config.ShopPageID)
		if err != nil {
			return err
		}
	}
	q := content.Query{
		IsShopPage:  true,
		Post:        shopPage,
		Paged:       paged,
		MaxNumPages: pages,
	}
	doc := a.document(q)
	head := a.head.Component(doc, []Crumb{{Name: "Shop"}})
	return Render(c, a.Views.Archive(head, "Shop", posts, paged, pages))
}

func (a *App) taxonomyHandler(taxonomy string) echo.HandlerFunc {
	return func(c echo.Context) error {
		term, err := a.Cache.TermBySlug(taxonomy, c.Param("slug"))
		if err != nil {
			if err == ErrNotFound {
				return a.renderNotFound(c)
			}
			return err
		}
		paged := a.archivePage(c)
		posts, pages, err := a.Store.ListPostsByTerm(term.ID, paged, postsPerPage)
		if err != nil {
			return err
		}
		q := content.Query{
			Term:        term,
			Paged:       paged,
			MaxNumPages: pages,
		}
		doc := a.document(q)
		head := a.head.Component(doc, a.termCrumbs(term))
		return Render(c, a.Views.Archive(head, term.Name, posts, paged, pages))
	}
}

func (a *App) handleSearch(c echo.Context) error {
	query := c.Param("query")
	if query == "" {
		query = c.QueryParam("s")
	}
	paged := a.archivePage(c)
	var (
		posts []content.Post
		pages int
		err   error
	)
	if query != "" {
		posts, pages, err = a.Store.SearchPosts(query, paged, postsPerPage)
		if err != nil {
			return err
		}
	}
	q := content.Query{
		IsSearch:    true,
		SearchQuery: query,
		Paged:       paged,
		MaxNumPages: pages,
	}
	doc := a.document(q)
	head := a.head.Component(doc, nil)
	return Render(c, a.Views.Search(head, query, posts, paged, pages))
}

// utilityPageHandler serves the cart, checkout and account surfaces, which
// are flagged so they never end up in a search index.
func (a *App) utilityPageHandler(surface string) echo.HandlerFunc {
	return func(c echo.Context) error {
		post, err := a.Cache.PostBySlug(content.KindPage, surface)
		if err != nil && err != ErrNotFound {
			return err
		}
		q := content.Query{
			IsSingular: post != nil,
			Post:       post,
			IsCart:     surface == "cart",
			IsCheckout: surface == "checkout",
			IsAccount:  surface == "account",
			Page:       1,
			Paged:      1,
		}
		doc := a.document(q)
		head := a.head.Component(doc, nil)
		return Render(c, a.Views.Page(head, post))
	}
}

// bodyPage reads the in-body page number of a paginated post.
func (a *App) bodyPage(c echo.Context) int {
	return pageParamValue(c.QueryParam(a.Config.documentSettings().PageQueryParamOrDefault()))
}

// archivePage reads the archive page number from the pretty path segment
// or the query string.
func (a *App) archivePage(c echo.Context) int {
	if n := pageParamValue(c.Param("n")); n > 1 {
		return n
	}
	return pageParamValue(c.QueryParam(a.Config.documentSettings().PagedQueryParamOrDefault()))
}

func pageParamValue(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// pageCrumbs builds the breadcrumb trail of a plain page from its parent
// chain.
func (a *App) pageCrumbs(post *content.Post) []Crumb {
	var trail []Crumb
	parent := post.ParentID
	for depth := 0; parent != 0 && depth < 8; depth++ {
		p, err := a.Store.PostByID(parent)
		if err != nil || p == nil {
			break
		}
		trail = append([]Crumb{{Name: p.Title, URL: a.links.PostURL(p)}}, trail...)
		parent = p.ParentID
	}
	return append(trail, Crumb{Name: post.Title})
}

// postCrumbs builds the trail of a post or product: an optional root
// crumb, the primary term, then the entity itself.
func (a *App) postCrumbs(post *content.Post, taxonomy, root string) []Crumb {
	var trail []Crumb
	if root == "Shop" && a.Config.ShopPageID != 0 {
		trail = append(trail, Crumb{Name: root, URL: a.Config.URL + "/shop/"})
	}
	terms, err := a.Store.TermsForPost(post.ID, taxonomy)
	if err == nil && len(terms) > 0 {
		if u, err := a.links.TermURL(&terms[0]); err == nil {
			trail = append(trail, Crumb{Name: terms[0].Name, URL: u})
		}
	}
	return append(trail, Crumb{Name: post.Title})
}

func (a *App) termCrumbs(term *content.Term) []Crumb {
	ancestors, err := a.Store.TermAncestors(term.ID)
	var trail []Crumb
	if err == nil {
		for i := range ancestors {
			if u, err := a.links.TermURL(&ancestors[i]); err == nil {
				trail = append(trail, Crumb{Name: ancestors[i].Name, URL: u})
			}
		}
	}
	return append(trail, Crumb{Name: term.Name})
}

// handleArchiveRedirect sends legacy date and author archive URLs to the
// front page. Neither archive type exists in this permalink scheme.
func (a *App) handleArchiveRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, BuildURL(a.Config.URL))
}

// handleDateArchive covers month-level date archive URLs like /2024/05/.
func (a *App) handleDateArchive(c echo.Context) error {
	month := c.Param("month")
	if !isYearSlug(c.Param("slug")) || len(month) > 2 || !isDigits(month) {
		return a.renderNotFound(c)
	}
	return a.handleArchiveRedirect(c)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isYearSlug(s string) bool {
	return len(s) == 4 && isDigits(s)
}

// handleAttachment redirects old attachment page URLs to the parent post
// permalink, or to the front page for orphaned uploads.
func (a *App) handleAttachment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return a.renderNotFound(c)
	}
	ref, err := a.Store.AttachmentByID(id)
	if err != nil {
		return err
	}
	if ref == nil {
		return a.renderNotFound(c)
	}
	if ref.PostID != 0 {
		post, err := a.Store.PostByID(ref.PostID)
		if err != nil {
			return err
		}
		if post != nil {
			return c.Redirect(http.StatusMovedPermanently, a.links.PostURL(post))
		}
	}
	return c.Redirect(http.StatusMovedPermanently, BuildURL(a.Config.URL))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

// handleRobotsTxt serves a generated robots.txt pointing crawlers at the
// sitemap. Discouraged sites disallow everything.
func (a *App) handleRobotsTxt(c echo.Context) error {
	body := "User-agent: *\n"
	if a.Config.DiscourageIndexing {
		body += "Disallow: /\n"
	} else {
		body += "Disallow: /admin/\nDisallow: /cart/\nDisallow: /checkout/\nDisallow: /account/\n"
	}
	body += "\nSitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error("server error", zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
