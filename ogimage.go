package seo

import (
	"regexp"
	"strings"

	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/document"
)

// Pixel bounds outside which social networks reject or crop images.
const (
	ogImageMinSize = 200
	ogImageMaxSize = 2000
)

var reContentImg = regexp.MustCompile(`<img [^>]*src=["']([^"']+)["']`)

// OGImageSelector picks the social preview images for a resolved
// request: featured image, product gallery, term thumbnail or content
// scan, with the configured default as last resort.
type OGImageSelector struct {
	cfg SiteConfig
	src content.Source
	com content.Commerce
}

// NewOGImageSelector wires an image selector.
func NewOGImageSelector(cfg SiteConfig, src content.Source, com content.Commerce) *OGImageSelector {
	return &OGImageSelector{cfg: cfg, src: src, com: com}
}

// Select returns the preview images for doc in emission order. Protected
// posts expose no imagery.
func (s *OGImageSelector) Select(doc *document.Document) []content.ImageRef {
	q := doc.Query()
	if q.Post != nil && q.Post.Password != "" {
		return nil
	}

	c := newImageCollector()
	switch {
	case q.IsFrontPage || q.IsPostsPage:
		s.addFeatured(c, q.Post)
	case q.IsSingular:
		s.addFeatured(c, q.Post)
		if q.Post != nil && q.Post.Type == content.KindProduct {
			s.addGallery(c, q.Post.ID)
		}
		if c.empty() && q.Post != nil {
			s.addFromContent(c, q.Post.Content)
		}
	case q.Term != nil && q.Term.Taxonomy == content.TaxProductCategory:
		s.addAttachment(c, q.Term.ThumbnailID)
	}

	if c.empty() && s.cfg.DefaultOGImage != "" {
		c.add(content.ImageRef{URL: s.cfg.DefaultOGImage})
	}
	return c.images
}

func (s *OGImageSelector) addFeatured(c *imageCollector, post *content.Post) {
	if post == nil {
		return
	}
	s.addAttachment(c, post.FeaturedID)
}

func (s *OGImageSelector) addGallery(c *imageCollector, postID int64) {
	product, err := s.com.ProductByPostID(postID)
	if err != nil || product == nil {
		return
	}
	for _, id := range product.GalleryIDs {
		s.addAttachment(c, id)
	}
}

// addFromContent falls back to the first body image that resolves to a
// known attachment.
func (s *OGImageSelector) addFromContent(c *imageCollector, body string) {
	m := reContentImg.FindStringSubmatch(body)
	if m == nil {
		return
	}
	ref, err := s.src.AttachmentByURL(m[1])
	if err != nil || ref == nil {
		return
	}
	if usableOGImage(*ref) {
		c.add(*ref)
	}
}

func (s *OGImageSelector) addAttachment(c *imageCollector, id int64) {
	if id == 0 {
		return
	}
	ref, err := s.src.AttachmentByID(id)
	if err != nil || ref == nil {
		return
	}
	if usableOGImage(*ref) {
		c.add(*ref)
	}
}

func usableOGImage(ref content.ImageRef) bool {
	return ref.Width >= ogImageMinSize && ref.Width <= ogImageMaxSize &&
		ref.Height >= ogImageMinSize && ref.Height <= ogImageMaxSize
}

// imageCollector keeps insertion order and drops duplicates. CDN cache
// busters make the same file show up under varying query strings, so the
// dedupe key ignores them.
type imageCollector struct {
	images []content.ImageRef
	seen   map[string]bool
}

func newImageCollector() *imageCollector {
	return &imageCollector{seen: make(map[string]bool)}
}

func (c *imageCollector) add(ref content.ImageRef) {
	key, _, _ := strings.Cut(ref.URL, "?")
	if key == "" || c.seen[key] {
		return
	}
	c.seen[key] = true
	c.images = append(c.images, ref)
}

func (c *imageCollector) empty() bool {
	return len(c.images) == 0
}
