// Package document resolves a classified request into its SEO metadata
// bundle: title, description, robots directives and canonical URL. One
// Document is built per request; each field is computed lazily and
// memoized for the remainder of that request.
package document

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/replacer"
)

// TitleNotFound is emitted when a context has no resolvable backing entity.
const TitleNotFound = "Page not found"

// Settings is the site configuration slice the resolver needs.
type Settings struct {
	SiteName  string
	HomeURL   string // absolute base URL, no trailing slash
	Separator string // defaults to replacer.DefaultSep when empty

	// PrettyPermalinks selects path-style pagination URLs; query-style
	// otherwise.
	PrettyPermalinks bool
	// PaginationBase is the localized path segment inserted before archive
	// page numbers ("page" -> /page/3/).
	PaginationBase string
	// PageQueryParam paginates a singular post body, PagedQueryParam an
	// archive.
	PageQueryParam  string
	PagedQueryParam string

	// DiscourageIndexing forces noindex site-wide.
	DiscourageIndexing bool

	// ProductDescriptionFallback is emitted for products whose description
	// template renders empty.
	ProductDescriptionFallback string

	// TypeLabels maps post types to plural labels for {pt_plural}.
	TypeLabels map[string]string
}

func (s Settings) separator() string {
	if s.Separator == "" {
		return replacer.DefaultSep
	}
	return s.Separator
}

func (s Settings) paginationBase() string {
	if s.PaginationBase == "" {
		return "page"
	}
	return s.PaginationBase
}

// PageQueryParamOrDefault returns the body-page query parameter name.
func (s Settings) PageQueryParamOrDefault() string {
	if s.PageQueryParam == "" {
		return "page"
	}
	return s.PageQueryParam
}

// PagedQueryParamOrDefault returns the archive-page query parameter name.
func (s Settings) PagedQueryParamOrDefault() string {
	if s.PagedQueryParam == "" {
		return "paged"
	}
	return s.PagedQueryParam
}

// Links resolves entity permalinks. Implemented by the host site's routing
// layer.
type Links interface {
	PostURL(p *content.Post) string
	TermURL(t *content.Term) (string, error)
	SearchURL(query string) string
}

// Deps are the collaborators a Document resolves against.
type Deps struct {
	Settings Settings
	Strategy *Strategy
	Meta     content.MetaStore
	Links    Links
}

// variant is the per-context resolution behavior. Exactly one variant is
// active per Document.
type variant interface {
	title() string
	description() string
	robots() Robots
	canonical() canonicalParts
}

// canonicalParts is the raw canonical data a variant contributes before
// document-level post-processing.
type canonicalParts struct {
	canonical string
	unpaged   string
	override  string // manual override, wins outright when non-empty
}

// Document memoizes the metadata bundle for one request. Not safe for
// concurrent use; build one per request and do not reuse.
type Document struct {
	q    content.Query
	deps Deps
	v    variant

	title       *string
	description *string
	robots      Robots
	canonical   *resolvedCanonical
}

type resolvedCanonical struct {
	canonical  string
	unpaged    string
	noOverride string
}

// New classifies q into exactly one context variant. Classification order:
// search, shop, singular (a static front page counts), taxonomy archive,
// then the not-found fallback.
func New(q content.Query, deps Deps) *Document {
	if deps.Strategy == nil {
		deps.Strategy = NewStrategy()
	}
	d := &Document{q: q, deps: deps}
	switch {
	case q.IsSearch:
		d.v = &search{d: d}
	case q.IsShopPage:
		d.v = &shop{singular{d: d, post: q.Post}}
	case q.IsSingular || (q.IsFrontPage && q.Post != nil):
		d.v = &singular{d: d, post: q.Post}
	case q.Term != nil:
		d.v = &taxonomy{d: d, term: q.Term}
	default:
		d.v = notFound{}
	}
	return d
}

// Query returns the request context the document was built from.
func (d *Document) Query() content.Query {
	return d.q
}

// Title returns the sanitized document title: whitespace collapsed, markup
// stripped, entities decoded, emoticon shortcodes converted.
func (d *Document) Title() string {
	if d.title != nil {
		return *d.title
	}
	title := d.v.title()
	if title != "" {
		title = CollapseWhitespace(title)
		title = StripTags(title)
		title = ConvertSmilies(title)
	}
	d.title = &title
	return title
}

// Description returns the sanitized meta description, markup stripped.
func (d *Document) Description() string {
	if d.description != nil {
		return *d.description
	}
	desc := strings.TrimSpace(d.v.description())
	if desc != "" {
		desc = StripTags(desc)
	}
	d.description = &desc
	return desc
}

// RobotsDirectives returns the validated robots mapping for the request.
// Cart, checkout and account views are forced to noindex,follow without
// consulting the variant; the site-wide discourage-indexing toggle and the
// comment-reply query indicator force noindex on top of any variant result.
func (d *Document) RobotsDirectives() Robots {
	if d.robots != nil {
		return d.robots
	}
	if d.q.IsCart || d.q.IsCheckout || d.q.IsAccount {
		d.robots = Robots{"index": "noindex", "follow": "follow"}
		return d.robots
	}
	robots := ValidateRobots(d.v.robots())
	if d.deps.Settings.DiscourageIndexing || d.q.ReplyTo {
		robots["index"] = "noindex"
	}
	d.robots = robots
	return d.robots
}

// Canonical returns the final canonical URL: always absolute, with any
// manual override applied. Empty when the context has none.
func (d *Document) Canonical() string {
	return d.resolveCanonical().canonical
}

// CanonicalUnpaged returns the canonical without archive pagination,
// used as the base for rel prev/next links.
func (d *Document) CanonicalUnpaged() string {
	return d.resolveCanonical().unpaged
}

// CanonicalNoOverride returns the computed canonical ignoring any manual
// override.
func (d *Document) CanonicalNoOverride() string {
	return d.resolveCanonical().noOverride
}

func (d *Document) resolveCanonical() *resolvedCanonical {
	if d.canonical != nil {
		return d.canonical
	}

	parts := d.v.canonical()
	canonical := parts.canonical
	unpaged := parts.unpaged

	if d.q.IsFrontPage {
		canonical = trailingSlash(d.deps.Settings.HomeURL)
	}

	// Non-singular contexts can be paginated at the archive level.
	if !d.singularLike() {
		unpaged = canonical
		canonical = d.CanonicalPaged(canonical, d.q.Paged, true, d.deps.Settings.PagedQueryParamOrDefault())
	}

	noOverride := canonical

	// Canonical links are absolute; relative is not an option.
	if canonical != "" && isRelative(canonical) {
		canonical = d.baseURL(canonical)
	}
	if parts.override != "" {
		canonical = parts.override
	}

	d.canonical = &resolvedCanonical{
		canonical:  canonical,
		unpaged:    unpaged,
		noOverride: noOverride,
	}
	return d.canonical
}

func (d *Document) singularLike() bool {
	return d.q.IsSingular || (d.q.IsFrontPage && d.q.Post != nil)
}

// CanonicalPaged extends base with pagination for page numbers >= 2:
// a pagination-base path segment plus page number under path-style
// permalinks, a query parameter otherwise. Smaller page numbers return
// base unchanged.
func (d *Document) CanonicalPaged(base string, page int, addBase bool, queryName string) string {
	if base == "" || page < 2 {
		return base
	}
	if d.deps.Settings.PrettyPermalinks {
		u := trailingSlash(base)
		if addBase {
			u += trailingSlash(d.deps.Settings.paginationBase())
		}
		return trailingSlash(u + strconv.Itoa(page))
	}
	return addQueryArg(trailingSlash(base), queryName, strconv.Itoa(page))
}

// baseURL resolves a path against the scheme+host of the configured home
// URL.
func (d *Document) baseURL(path string) string {
	u, err := url.Parse(d.deps.Settings.HomeURL)
	if err != nil {
		return path
	}
	base := u.Scheme + "://" + u.Host + "/"
	return base + strings.TrimLeft(path, "/")
}

// replacerCtx builds the variable-resolution context for the active
// request. Page/MaxPages derive from the body page count for singular
// contexts and from the archive query otherwise.
func (d *Document) replacerCtx() *replacer.Context {
	s := d.deps.Settings
	ctx := &replacer.Context{
		Sep:         s.separator(),
		SiteName:    StripTags(s.SiteName),
		Post:        d.q.Post,
		Term:        d.q.Term,
		SearchQuery: d.q.SearchQuery,
	}
	if d.singularLike() {
		ctx.Page = d.q.Page
		ctx.MaxPages = d.q.BodyPages()
	} else {
		ctx.Page = d.q.Paged
		ctx.MaxPages = d.q.MaxNumPages
	}
	// The shop page is an archive of products regardless of its own type.
	switch {
	case d.q.IsShopPage:
		ctx.TypeLabel = s.TypeLabels[content.KindProduct]
	case d.q.Post != nil:
		ctx.TypeLabel = s.TypeLabels[d.q.Post.Type]
	}
	return ctx
}

// metaCanonical reads a stored canonical override for the queried entity.
func (d *Document) metaCanonical(kind string, id int64) string {
	if d.deps.Meta == nil {
		return ""
	}
	value, ok := d.deps.Meta.GetMeta(kind, id, content.MetaCanonical)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

var rePageToken = regexp.MustCompile(`^page/\d+$`)

func trailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func isRelative(u string) bool {
	return !strings.HasPrefix(u, "http") && !strings.HasPrefix(u, "//")
}

func addQueryArg(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
