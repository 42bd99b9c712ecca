package seo

import (
	"context"
	"encoding/json"
	"html"
	"io"
	"sort"

	"github.com/a-h/templ"
	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/document"
)

// Emission slots, lowest first. The gaps leave room for host-site
// extensions between the standard groups.
const (
	slotTitle       = 1
	slotDescription = 6
	slotRobots      = 10
	slotCanonical   = 15
	slotRelLinks    = 20
	slotOpenGraph   = 30
	slotTwitter     = 40
	slotClosing     = 99
)

const descriptionLimit = 160

type headPart struct {
	slot int
	html string
}

// Head assembles the full <head> metadata block for a resolved request:
// title, description, robots, canonical, rel prev/next, social tags and
// the structured-data graph.
type Head struct {
	cfg     SiteConfig
	links   document.Links
	src     content.Source
	com     content.Commerce
	product *ProductSchema
	images  *OGImageSelector
}

// NewHead wires a head assembler.
func NewHead(cfg SiteConfig, links document.Links, src content.Source, com content.Commerce, product *ProductSchema, images *OGImageSelector) *Head {
	return &Head{cfg: cfg, links: links, src: src, com: com, product: product, images: images}
}

// Component renders the metadata block as a templ component, wrapped in
// marker comments so the block is identifiable in page source.
func (h *Head) Component(doc *document.Document, crumbs []Crumb) templ.Component {
	parts := h.parts(doc, crumbs)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!-- NHG SEO plugin -->\n"); err != nil {
			return err
		}
		for _, p := range parts {
			if _, err := io.WriteString(w, p.html+"\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "<!-- /NHG SEO plugin -->\n")
		return err
	})
}

func (h *Head) parts(doc *document.Document, crumbs []Crumb) []headPart {
	robots := doc.RobotsDirectives()
	noindex := robots["index"] == "noindex"

	var parts []headPart
	add := func(slot int, html string) {
		if html != "" {
			parts = append(parts, headPart{slot: slot, html: html})
		}
	}

	add(slotTitle, "<title>"+html.EscapeString(doc.Title())+"</title>")
	if desc := Truncate(doc.Description(), descriptionLimit); desc != "" {
		add(slotDescription, metaNameTag("description", desc))
	}
	add(slotRobots, metaNameTag("robots", robots.String()))

	// Search engines ignore canonical and pagination hints on pages they
	// are told not to index.
	if !noindex {
		if canonical := doc.Canonical(); canonical != "" {
			add(slotCanonical, linkTag("canonical", canonical))
		}
		for _, p := range h.relLinks(doc) {
			add(slotRelLinks, p.html)
		}
	}

	images := h.images.Select(doc)
	for _, p := range h.openGraphParts(doc, images) {
		add(slotOpenGraph, p)
	}
	for _, p := range h.twitterParts(doc, images) {
		add(slotTwitter, p)
	}

	if v := h.cfg.GoogleSiteVerification; v != "" {
		add(slotClosing, metaNameTag("google-site-verification", v))
	}
	add(slotClosing, h.schemaScript(doc, crumbs))

	sort.SliceStable(parts, func(i, j int) bool { return parts[i].slot < parts[j].slot })
	return parts
}

// relLinks emits rel="prev"/rel="next" hints: body pages for singular
// posts, archive pages otherwise.
func (h *Head) relLinks(doc *document.Document) []headPart {
	q := doc.Query()
	var out []headPart

	if q.IsSingular {
		pages := q.BodyPages()
		if pages < 2 || q.Post == nil {
			return nil
		}
		page := q.Page
		if page < 1 {
			page = 1
		}
		base := h.links.PostURL(q.Post)
		if page > 1 {
			out = append(out, headPart{html: linkTag("prev", h.pagedURL(doc, base, page-1, true, h.pageParam()))})
		}
		if page < pages {
			out = append(out, headPart{html: linkTag("next", h.pagedURL(doc, base, page+1, true, h.pageParam()))})
		}
		return out
	}

	if q.MaxNumPages < 2 {
		return nil
	}
	paged := q.Paged
	if paged < 1 {
		paged = 1
	}
	base := doc.CanonicalUnpaged()
	if q.IsFrontPage {
		base = h.cfg.URL + "/"
	}
	if base == "" {
		return nil
	}
	if paged > 1 {
		out = append(out, headPart{html: linkTag("prev", h.pagedURL(doc, base, paged-1, true, h.pagedParam()))})
	}
	if paged < q.MaxNumPages {
		out = append(out, headPart{html: linkTag("next", h.pagedURL(doc, base, paged+1, true, h.pagedParam()))})
	}
	return out
}

// pagedURL returns base unchanged for the first page.
func (h *Head) pagedURL(doc *document.Document, base string, page int, addBase bool, queryName string) string {
	if page < 2 {
		return base
	}
	return doc.CanonicalPaged(base, page, addBase, queryName)
}

func (h *Head) pageParam() string {
	return h.cfg.documentSettings().PageQueryParamOrDefault()
}

func (h *Head) pagedParam() string {
	return h.cfg.documentSettings().PagedQueryParamOrDefault()
}

// schemaScript serializes the structured-data graph for the request.
func (h *Head) schemaScript(doc *document.Document, crumbs []Crumb) string {
	g := &Graph{}
	if doc.Query().IsFrontPage {
		g.Add(WebSiteNode(h.cfg))
	}
	if b := BreadcrumbNode(h.cfg, crumbs, doc.Canonical()); b != nil {
		g.Add(b)
	}
	if h.product != nil {
		if p := h.product.Node(doc); p != nil {
			g.Add(p)
		}
	}
	if g.Empty() {
		return ""
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return ""
	}
	return `<script type="application/ld+json">` + string(raw) + `</script>`
}

func metaNameTag(name, content string) string {
	return `<meta name="` + html.EscapeString(name) + `" content="` + html.EscapeString(content) + `">`
}

func metaPropertyTag(property, content string) string {
	return `<meta property="` + html.EscapeString(property) + `" content="` + html.EscapeString(content) + `">`
}

func linkTag(rel, href string) string {
	return `<link rel="` + rel + `" href="` + html.EscapeString(href) + `">`
}
