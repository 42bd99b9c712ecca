package seo

import (
	"strconv"
	"strings"

	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/document"
)

// openGraphParts emits the Open Graph tag group. Facebook consumes the
// property attribute, so these use metaPropertyTag throughout.
func (h *Head) openGraphParts(doc *document.Document, images []content.ImageRef) []string {
	var out []string
	og := func(property, content string) {
		if content != "" {
			out = append(out, metaPropertyTag(property, content))
		}
	}

	og("og:locale", h.cfg.Locale)
	og("og:type", h.ogType(doc))
	og("og:title", doc.Title())
	og("og:description", Truncate(doc.Description(), descriptionLimit))
	og("og:url", doc.Canonical())
	og("og:site_name", h.cfg.Name)

	for i, img := range images {
		og("og:image", img.URL)
		if strings.HasPrefix(img.URL, "https://") {
			og("og:image:secure_url", img.URL)
		}
		// Dimension and type hints only make sense for the primary image.
		if i == 0 {
			if img.Width > 0 && img.Height > 0 {
				og("og:image:width", strconv.Itoa(img.Width))
				og("og:image:height", strconv.Itoa(img.Height))
			}
			og("og:image:alt", img.Alt)
			og("og:image:type", img.Mime)
		}
	}

	switch h.ogType(doc) {
	case "product":
		h.productTags(doc, og)
	case "article":
		og("article:publisher", h.cfg.FacebookURL)
	}

	og("fb:app_id", h.cfg.FacebookAppID)
	og("fb:admins", h.cfg.FacebookAdminID)
	return out
}

// ogType classifies the request for the og:type tag.
func (h *Head) ogType(doc *document.Document) string {
	q := doc.Query()
	switch {
	case q.IsFrontPage || q.IsPostsPage:
		return "website"
	case !q.IsSingular && !q.IsShopPage:
		return "object"
	case q.Post != nil && q.Post.Type == content.KindProduct:
		return "product"
	default:
		return "article"
	}
}

// productTags adds the commerce extension tags for single products.
func (h *Head) productTags(doc *document.Document, og func(property, content string)) {
	post := doc.Query().Post
	if post == nil {
		return
	}
	if brands, err := h.src.TermsForPost(post.ID, content.TaxProductBrand); err == nil && len(brands) > 0 {
		og("product:brand", brands[0].Name)
	}
	product, err := h.com.ProductByPostID(post.ID)
	if err != nil || product == nil {
		return
	}
	if product.Price != "" {
		og("product:price:amount", product.Price)
		og("product:price:currency", h.cfg.Currency)
	}
	if product.InStock {
		og("product:availability", "instock")
	}
}

// twitterParts emits the Twitter card group. Twitter reads the name
// attribute rather than property.
func (h *Head) twitterParts(doc *document.Document, images []content.ImageRef) []string {
	var out []string
	tw := func(name, content string) {
		if content != "" {
			out = append(out, metaNameTag(name, content))
		}
	}

	tw("twitter:card", "summary_large_image")
	if u := strings.TrimPrefix(h.cfg.TwitterUsername, "@"); u != "" {
		tw("twitter:site", "@"+u)
	}
	tw("twitter:title", doc.Title())
	tw("twitter:description", Truncate(doc.Description(), descriptionLimit))
	if len(images) > 0 {
		tw("twitter:image", images[0].URL)
	}
	return out
}
