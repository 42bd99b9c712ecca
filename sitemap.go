package seo

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nhgweb/seo/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.PublishedPosts()
	if err != nil {
		return err
	}

	urls := []sitemapURL{
		{Loc: a.Config.URL + "/"},
	}
	for i := range posts {
		p := &posts[i]
		if !a.sitemapIncludesPost(p) {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     a.links.PostURL(p),
			LastMod: p.Date,
		})
	}
	for _, tax := range cachedTaxonomies {
		terms, err := a.Cache.Terms(tax)
		if err != nil {
			return err
		}
		for i := range terms {
			t := &terms[i]
			if a.metaNoindexed("term", t.ID) {
				continue
			}
			loc, err := a.links.TermURL(t)
			if err != nil {
				continue
			}
			urls = append(urls, sitemapURL{Loc: loc})
		}
	}

	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

// sitemapIncludesPost excludes entries search engines are told not to
// index: protected posts and entities carrying a noindex override.
func (a *App) sitemapIncludesPost(p *content.Post) bool {
	if p.Password != "" {
		return false
	}
	// The front page is listed separately as the site root.
	if p.ID == a.Config.FrontPageID {
		return false
	}
	return !a.metaNoindexed("post", p.ID)
}

func (a *App) metaNoindexed(kind string, id int64) bool {
	robots, ok := a.Store.GetMeta(kind, id, content.MetaRobots)
	return ok && strings.Contains(robots, "noindex")
}
