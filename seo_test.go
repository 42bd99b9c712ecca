package seo

import (
	"strconv"
	"strings"

	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/document"
)

// fakeCatalog is an in-memory content.Source, content.Commerce and
// content.MetaStore for tests.
type fakeCatalog struct {
	posts       map[int64]*content.Post
	terms       map[int64]*content.Term
	postTerms   map[int64]map[string][]content.Term
	ancestors   map[int64][]content.Term
	reviews     map[int64][]content.Review
	attachments map[int64]*content.ImageRef
	products    map[int64]*content.Product
	prices      map[int64]content.PriceRange
	meta        map[string]string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		posts:       make(map[int64]*content.Post),
		terms:       make(map[int64]*content.Term),
		postTerms:   make(map[int64]map[string][]content.Term),
		ancestors:   make(map[int64][]content.Term),
		reviews:     make(map[int64][]content.Review),
		attachments: make(map[int64]*content.ImageRef),
		products:    make(map[int64]*content.Product),
		prices:      make(map[int64]content.PriceRange),
		meta:        make(map[string]string),
	}
}

func (f *fakeCatalog) PostByID(id int64) (*content.Post, error) { return f.posts[id], nil }
func (f *fakeCatalog) TermByID(id int64) (*content.Term, error) { return f.terms[id], nil }

func (f *fakeCatalog) TermsForPost(postID int64, taxonomy string) ([]content.Term, error) {
	return f.postTerms[postID][taxonomy], nil
}

func (f *fakeCatalog) TermAncestors(termID int64) ([]content.Term, error) {
	return f.ancestors[termID], nil
}

func (f *fakeCatalog) ApprovedReviews(postID int64, limit int) ([]content.Review, error) {
	reviews := f.reviews[postID]
	if len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews, nil
}

func (f *fakeCatalog) AttachmentByID(id int64) (*content.ImageRef, error) {
	return f.attachments[id], nil
}

func (f *fakeCatalog) AttachmentByURL(url string) (*content.ImageRef, error) {
	url, _, _ = strings.Cut(url, "?")
	for _, ref := range f.attachments {
		if ref.URL == url {
			return ref, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ProductByPostID(postID int64) (*content.Product, error) {
	return f.products[postID], nil
}

func (f *fakeCatalog) VariationPrices(postID int64) (content.PriceRange, error) {
	return f.prices[postID], nil
}

func (f *fakeCatalog) GetMeta(kind string, id int64, field string) (string, bool) {
	v, ok := f.meta[metaKey(kind, id, field)]
	return v, ok && v != ""
}

func (f *fakeCatalog) SetMeta(kind string, id int64, field, value string) error {
	f.meta[metaKey(kind, id, field)] = value
	return nil
}

func (f *fakeCatalog) DeleteMeta(kind string, id int64, field string) error {
	delete(f.meta, metaKey(kind, id, field))
	return nil
}

func metaKey(kind string, id int64, field string) string {
	return kind + ":" + strconv.FormatInt(id, 10) + ":" + field
}

func testConfig() SiteConfig {
	cfg := SiteConfig{
		Name:             "Demo Shop",
		URL:              "https://example.com",
		Description:      "A demo storefront.",
		Locale:           "en_US",
		Currency:         "USD",
		WeightUnit:       "kg",
		DimensionUnit:    "cm",
		RatingsEnabled:   true,
		PrettyPermalinks: true,
		TwitterUsername:  "demoshop",
	}
	cfg.setDefaults()
	return cfg
}

// testDocument resolves a query against the fake catalog using the real
// permalink scheme.
func testDocument(cfg SiteConfig, q content.Query, fc *fakeCatalog) *document.Document {
	return document.New(q, document.Deps{
		Settings: cfg.documentSettings(),
		Meta:     fc,
		Links:    siteLinks{cfg: cfg},
	})
}
