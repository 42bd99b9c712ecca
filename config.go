package seo

import (
	"strings"
	"time"

	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/document"
)

// SiteConfig holds all configuration for a site served by this engine.
type SiteConfig struct {
	Name        string // Site name (default "Shop")
	URL         string // Canonical base URL (default "http://localhost:3000")
	Description string // Site description for RSS and the WebSite schema node
	Separator   string // Title separator (default "-")
	Locale      string // Open Graph locale (default "en_US")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/site.db")

	// Currency is the ISO 4217 code emitted in product offers (default "USD").
	Currency string
	// PricesIncludeTax marks offer price specifications as tax inclusive.
	PricesIncludeTax bool
	// WeightUnit and DimensionUnit are the store's measurement units
	// ("kg", "cm", ...); they map to UN/CEFACT codes in structured data.
	WeightUnit    string
	DimensionUnit string
	// RatingsEnabled toggles aggregate rating and review markup.
	RatingsEnabled bool
	// ProductDescriptionFallback replaces empty product meta descriptions.
	ProductDescriptionFallback string

	// PrettyPermalinks selects path-style pagination URLs.
	PrettyPermalinks bool
	// PaginationBase is the path segment before archive page numbers
	// ("page" -> /page/3/). PageQueryParam and PagedQueryParam name the
	// query parameters for body and archive pagination under query-style
	// permalinks (defaults "page" and "paged").
	PaginationBase  string
	PageQueryParam  string
	PagedQueryParam string
	// DiscourageIndexing forces noindex on every page.
	DiscourageIndexing bool

	// FrontPageID is the post ID of the static front page, 0 for none.
	// ShopPageID designates the commerce catalog root page.
	FrontPageID int64
	ShopPageID  int64

	// TypeLabels maps post types to the plural labels used in archive
	// titles (defaults cover post/page/product).
	TypeLabels map[string]string

	// Webmaster verification and social identities, emitted in the head.
	GoogleSiteVerification string
	FacebookAppID          string
	FacebookAdminID        string
	FacebookURL            string
	TwitterUsername        string
	DefaultOGImage         string

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	// LoginAttemptLimit failed logins per LoginAttemptWindow lock an IP
	// out of the admin login (defaults 5 per minute).
	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration

	ContentCacheTTL time.Duration // Content cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Shop"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Separator == "" {
		c.Separator = "-"
	}
	if c.Locale == "" {
		c.Locale = "en_US"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.WeightUnit == "" {
		c.WeightUnit = "kg"
	}
	if c.DimensionUnit == "" {
		c.DimensionUnit = "cm"
	}
	if c.ProductDescriptionFallback == "" {
		c.ProductDescriptionFallback = "Find everything you need in our shop. Wide selection and fast delivery."
	}
	if c.TypeLabels == nil {
		c.TypeLabels = map[string]string{
			content.KindPost:    "Posts",
			content.KindPage:    "Pages",
			content.KindProduct: "Products",
		}
	}
	if c.LoginAttemptLimit == 0 {
		c.LoginAttemptLimit = 5
	}
	if c.LoginAttemptWindow == 0 {
		c.LoginAttemptWindow = time.Minute
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
}

// documentSettings projects the site configuration onto the slice the
// document resolver consumes.
func (c *SiteConfig) documentSettings() document.Settings {
	return document.Settings{
		SiteName:                   c.Name,
		HomeURL:                    c.URL,
		Separator:                  c.Separator,
		PrettyPermalinks:           c.PrettyPermalinks,
		PaginationBase:             c.PaginationBase,
		PageQueryParam:             c.PageQueryParam,
		PagedQueryParam:            c.PagedQueryParam,
		DiscourageIndexing:         c.DiscourageIndexing,
		ProductDescriptionFallback: c.ProductDescriptionFallback,
		TypeLabels:                 c.TypeLabels,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
