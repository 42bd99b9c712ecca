// Package content defines the read-only data model the SEO engine resolves
// metadata against: posts, taxonomy terms, products, reviews and images,
// plus the accessor interfaces the host site implements on top of its
// storage. The engine itself never writes content; the only mutable surface
// is the per-entity metadata override store.
package content

import "strings"

// Post kinds understood by the engine. Custom kinds fall back to the
// strategy table's default subtype.
const (
	KindPost    = "post"
	KindPage    = "page"
	KindProduct = "product"
)

// Post statuses.
const (
	StatusPublish = "publish"
	StatusPrivate = "private"
	StatusDraft   = "draft"
)

// Built-in taxonomies. Custom taxonomies resolve through the strategy
// table's default subtype like custom post kinds do.
const (
	TaxCategory        = "category"
	TaxTag             = "post_tag"
	TaxProductCategory = "product_cat"
	TaxProductBrand    = "product_brand"
)

// PageBreak marks a manual page break inside a post body. Bodies containing
// N markers render as N+1 pages.
const PageBreak = "<!--nextpage-->"

// Post is a single content entity: a blog post, a static page or the post
// backing a product.
type Post struct {
	ID         int64
	Slug       string
	Type       string // KindPost, KindPage or KindProduct
	Title      string
	Excerpt    string
	Content    string
	Date       string // YYYY-MM-DD
	Status     string
	Password   string // non-empty means password protected
	FeaturedID int64  // attachment id, 0 when unset
	ParentID   int64
}

// Term is a taxonomy term: a category, tag, product category or brand.
type Term struct {
	ID          int64
	Taxonomy    string
	Slug        string
	Name        string
	Description string
	Parent      int64
	ThumbnailID int64 // attachment id, 0 when unset
}

// Product carries the commerce fields attached to a product post.
type Product struct {
	PostID      int64
	Kind        string // "simple" or "variable"
	Price       string // formatted decimal, empty when no price is set
	OnSale      bool
	SaleEnd     string // YYYY-MM-DD, empty when no sale end date
	InStock     bool
	SKU         string
	GTIN        string // global trade identifier, classified by digit length
	Weight      string
	Height      string
	Width       string
	Length      string
	RatingAvg   string
	RatingCount int
	ReviewCount int
	GalleryIDs  []int64
}

// Review is an approved top-level product review.
type Review struct {
	ID     int64
	PostID int64
	Author string
	Body   string
	Rating int
	Date   string // RFC 3339
}

// ImageRef describes a stored image attachment.
type ImageRef struct {
	ID     int64
	PostID int64 // owning post, 0 for unattached uploads
	URL    string
	Width  int
	Height int
	Alt    string
	Mime   string
}

// PriceRange is the min/max variation price of a variable product.
type PriceRange struct {
	Low   string
	High  string
	Count int // number of variations
}

// Source provides read access to content entities. Implementations must be
// safe for concurrent readers.
type Source interface {
	PostByID(id int64) (*Post, error)
	TermByID(id int64) (*Term, error)
	// TermsForPost returns the terms of the given taxonomy attached to a
	// post, primary term first when one has been designated.
	TermsForPost(postID int64, taxonomy string) ([]Term, error)
	// TermAncestors returns the ancestors of a term ordered root first.
	TermAncestors(termID int64) ([]Term, error)
	// ApprovedReviews returns up to limit approved top-level reviews for a
	// post, most recent first.
	ApprovedReviews(postID int64, limit int) ([]Review, error)
	AttachmentByID(id int64) (*ImageRef, error)
	AttachmentByURL(url string) (*ImageRef, error)
}

// Commerce provides read access to the commerce fields of product posts.
type Commerce interface {
	ProductByPostID(postID int64) (*Product, error)
	VariationPrices(postID int64) (PriceRange, error)
}

// Metadata override fields.
const (
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaRobots      = "robots"
	MetaCanonical   = "canonical"
	MetaPrimaryTerm = "primary_term"
)

// MetaStore reads and writes per-entity metadata overrides keyed by
// (entity kind, entity id, field). Get treats malformed or missing values
// as absent.
type MetaStore interface {
	GetMeta(kind string, id int64, field string) (string, bool)
	SetMeta(kind string, id int64, field, value string) error
	DeleteMeta(kind string, id int64, field string) error
}

// Query is the classified state of one inbound request, built once by the
// handler layer and passed through the resolution pipeline unchanged. It
// replaces any notion of ambient "current request" globals.
type Query struct {
	IsSearch    bool
	SearchQuery string

	IsShopPage  bool
	IsFrontPage bool
	IsPostsPage bool
	IsSingular  bool

	// Commerce surfaces that are never indexed.
	IsCart     bool
	IsCheckout bool
	IsAccount  bool

	// Post is the queried entity for singular (and shop) requests, Term for
	// taxonomy archives. At most one is set.
	Post *Post
	Term *Term

	// Page is the in-body page of a paginated singular post (?page=N).
	// Paged is the archive page number (?paged=N). Both default to 1.
	Page  int
	Paged int
	// MaxNumPages is the total page count of the current archive query.
	MaxNumPages int

	// ReplyTo is set when the request carries the comment-reply query
	// parameter; such permutations of a URL are never indexed.
	ReplyTo bool
}

// IsPaged reports whether the request views a non-first page.
func (q Query) IsPaged() bool {
	return q.Paged > 1
}

// BodyPages returns the page count of the queried post's body, counting
// manual page-break markers. Returns 1 when no post is queried.
func (q Query) BodyPages() int {
	if q.Post == nil {
		return 1
	}
	return countPages(q.Post.Content)
}

func countPages(body string) int {
	return strings.Count(body, PageBreak) + 1
}

