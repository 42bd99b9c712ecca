package seo

import (
	"fmt"
	"net/url"

	"github.com/nhgweb/seo/content"
)

// termBases maps each linkable taxonomy to its URL prefix.
var termBases = map[string]string{
	content.TaxCategory:        "/category/",
	content.TaxTag:             "/tag/",
	content.TaxProductCategory: "/product-category/",
	content.TaxProductBrand:    "/product-brand/",
}

// siteLinks resolves entity permalinks against the site's routing scheme.
type siteLinks struct {
	cfg SiteConfig
}

func (l siteLinks) PostURL(p *content.Post) string {
	if p == nil {
		return ""
	}
	switch {
	case p.ID == l.cfg.FrontPageID:
		return l.cfg.URL + "/"
	case p.ID == l.cfg.ShopPageID:
		return l.cfg.URL + "/shop/"
	}
	switch p.Type {
	case content.KindProduct:
		return l.cfg.URL + "/product/" + PathEscape(p.Slug) + "/"
	case content.KindPage:
		return l.cfg.URL + "/" + PathEscape(p.Slug) + "/"
	default:
		return l.cfg.URL + "/blog/" + PathEscape(p.Slug) + "/"
	}
}

func (l siteLinks) TermURL(t *content.Term) (string, error) {
	if t == nil {
		return "", fmt.Errorf("links: nil term")
	}
	base, ok := termBases[t.Taxonomy]
	if !ok {
		return "", fmt.Errorf("links: no permalink base for taxonomy %q", t.Taxonomy)
	}
	return l.cfg.URL + base + PathEscape(t.Slug) + "/", nil
}

func (l siteLinks) SearchURL(query string) string {
	if l.cfg.PrettyPermalinks {
		return l.cfg.URL + "/search/" + PathEscape(query) + "/"
	}
	return l.cfg.URL + "/?s=" + url.QueryEscape(query)
}
