package seo

import (
	"database/sql"
	"sync"
	"time"

	"github.com/nhgweb/seo/content"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = sql.ErrNoRows

// cachedTaxonomies are the term groups the cache preloads.
var cachedTaxonomies = []string{
	content.TaxCategory,
	content.TaxTag,
	content.TaxProductCategory,
	content.TaxProductBrand,
}

// CatalogCache is an in-memory cache of published posts and terms with
// TTL, serving the sitemap, the feed and slug lookups on hot paths.
type CatalogCache struct {
	mu      sync.RWMutex
	posts   []content.Post
	terms   []content.Term
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewCatalogCache creates a CatalogCache backed by the given Store.
func NewCatalogCache(s *Store, ttl time.Duration) *CatalogCache {
	return &CatalogCache{store: s, ttl: ttl}
}

func (c *CatalogCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.terms = nil
	c.mu.Unlock()
}

func (c *CatalogCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPublishedPosts()
	if err != nil {
		return err
	}
	var terms []content.Term
	for _, tax := range cachedTaxonomies {
		ts, err := c.store.ListTerms(tax)
		if err != nil {
			return err
		}
		terms = append(terms, ts...)
	}
	c.posts = posts
	c.terms = terms
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and terms after ensuring the cache is
// fresh. It tries a read lock first; only takes a write lock if a reload
// is needed.
func (c *CatalogCache) ensureLoaded() ([]content.Post, []content.Term, error) {
	c.mu.RLock()
	if c.valid() {
		posts, terms := c.posts, c.terms
		c.mu.RUnlock()
		return posts, terms, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.terms, nil
}

// PublishedPosts returns every published post, newest first.
func (c *CatalogCache) PublishedPosts() ([]content.Post, error) {
	posts, _, err := c.ensureLoaded()
	return posts, err
}

// Terms returns the cached terms of one taxonomy.
func (c *CatalogCache) Terms(taxonomy string) ([]content.Term, error) {
	_, terms, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var out []content.Term
	for _, t := range terms {
		if t.Taxonomy == taxonomy {
			out = append(out, t)
		}
	}
	return out, nil
}

// PostBySlug returns a published post by type and slug from the cache.
func (c *CatalogCache) PostBySlug(typ, slug string) (*content.Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Type == typ && posts[i].Slug == slug {
			return &posts[i], nil
		}
	}
	return nil, ErrNotFound
}

// TermBySlug returns a term by taxonomy and slug from the cache.
func (c *CatalogCache) TermBySlug(taxonomy, slug string) (*content.Term, error) {
	_, terms, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	for i := range terms {
		if terms[i].Taxonomy == taxonomy && terms[i].Slug == slug {
			return &terms[i], nil
		}
	}
	return nil, ErrNotFound
}
