// Package seo is a search-metadata engine for content sites with a product
// catalog, built with Go, Echo, and templ. It resolves titles,
// descriptions, robots directives, canonical URLs, social tags and
// structured data per request, and ships the surrounding site plumbing:
// storage, sitemap, feed, and an admin editor for per-entity overrides.
//
// Users provide their own templ components via the ViewFuncs struct and
// embed the rendered head block in their layouts; the package handles the
// resolution pipeline, middleware, and database operations.
package seo

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/document"
)

// ViewFuncs holds user-provided templ components that the engine calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates. Every page component
// receives the assembled head block for its layout's <head>.
type ViewFuncs struct {
	Page        func(head templ.Component, post *content.Post) templ.Component
	Product     func(head templ.Component, post *content.Post, product *content.Product) templ.Component
	Archive     func(head templ.Component, heading string, posts []content.Post, page, pages int) templ.Component
	Search      func(head templ.Component, query string, posts []content.Post, page, pages int) templ.Component
	AdminLogin  func(showError bool, csrfToken string) templ.Component
	AdminEditor func(form MetaForm, message string, csrfToken string) templ.Component
	NotFound    func(head templ.Component) templ.Component
	ServerError func() templ.Component
}

// App is the central application. It wires together the store, cache,
// resolution pipeline, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *CatalogCache
	Views  ViewFuncs

	log          *zap.Logger
	strategy     *document.Strategy
	links        document.Links
	head         *Head
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, cache, resolution pipeline, middleware,
// routes, and starts the server.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("seo: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("seo: SessionSecret is required")
	}

	logger, err := NewLogger()
	if err != nil {
		return fmt.Errorf("seo: init logger: %w", err)
	}
	a.log = logger

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("seo: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewCatalogCache(a.Store, a.Config.ContentCacheTTL)
	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttemptLimit, a.Config.LoginAttemptWindow)

	a.strategy = document.NewStrategy()
	a.links = siteLinks{cfg: a.Config}
	product := NewProductSchema(a.Config, a.Store, a.Store, a.links)
	images := NewOGImageSelector(a.Config, a.Store, a.Store)
	a.head = NewHead(a.Config, a.links, a.Store, a.Store, product, images)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// document resolves the metadata bundle for one classified request.
func (a *App) document(q content.Query) *document.Document {
	return document.New(q, document.Deps{
		Settings: a.Config.documentSettings(),
		Strategy: a.strategy,
		Meta:     a.Store,
		Links:    a.links,
	})
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobotsTxt)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleFront)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/product/:slug/", a.handleProduct)
	e.GET("/shop/", a.handleShop)
	e.GET("/shop/page/:n/", a.handleShop)
	e.GET("/category/:slug/", a.taxonomyHandler(content.TaxCategory))
	e.GET("/category/:slug/page/:n/", a.taxonomyHandler(content.TaxCategory))
	e.GET("/tag/:slug/", a.taxonomyHandler(content.TaxTag))
	e.GET("/tag/:slug/page/:n/", a.taxonomyHandler(content.TaxTag))
	e.GET("/product-category/:slug/", a.taxonomyHandler(content.TaxProductCategory))
	e.GET("/product-category/:slug/page/:n/", a.taxonomyHandler(content.TaxProductCategory))
	e.GET("/product-brand/:slug/", a.taxonomyHandler(content.TaxProductBrand))
	e.GET("/product-brand/:slug/page/:n/", a.taxonomyHandler(content.TaxProductBrand))
	e.GET("/search/", a.handleSearch)
	e.GET("/search/:query/", a.handleSearch)
	e.GET("/cart/", a.utilityPageHandler("cart"))
	e.GET("/checkout/", a.utilityPageHandler("checkout"))
	e.GET("/account/", a.utilityPageHandler("account"))

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/meta/:kind/:id/", a.handleAdminMeta)
	e.POST("/admin/meta/:kind/:id/", a.handleAdminMetaSave)
	e.POST("/admin/images/upload/", a.handleImageUpload)

	// Legacy URL shapes from the old permalink scheme redirect permanently.
	e.GET("/author/:slug/", a.handleArchiveRedirect)
	e.GET("/attachment/:id/", a.handleAttachment)

	// Plain pages resolve last so the static routes above win; date
	// archives share the top-level wildcard and are detected by shape.
	e.GET("/:slug/", a.handlePage)
	e.GET("/:slug/:month/", a.handleDateArchive)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("seo: required environment variable %s is not set", key)
	}
	return v
}
