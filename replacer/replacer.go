// Package replacer substitutes {variable} placeholders in metadata
// templates. The vocabulary is a small closed registry of named resolvers;
// it is not a general templating engine.
package replacer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nhgweb/seo/content"
)

// DefaultSep is the separator used when the context does not set one.
const DefaultSep = "-"

var (
	rePlaceholder = regexp.MustCompile(`\{([^}]*)\}`)
	reCaption     = regexp.MustCompile(`(?is)\s*\[caption[^\]]*\].*?\[/caption\]\s*`)
	reShortcode   = regexp.MustCompile(`(?s)\[/?.*?\]`)
)

// Context carries the values the variable resolvers read. Fields absent for
// the current request variant stay zero and the matching variables resolve
// to nothing.
type Context struct {
	Sep      string
	SiteName string

	Post *content.Post
	Term *content.Term

	SearchQuery string

	// Page and MaxPages drive the {page} variable: "Page X of Y" is only
	// rendered when both exceed 1.
	Page     int
	MaxPages int

	// TypeLabel is the plural label of the queried post type ("Products").
	TypeLabel string
}

func (ctx *Context) sep() string {
	if ctx.Sep == "" {
		return DefaultSep
	}
	return ctx.Sep
}

// resolver returns the replacement for one variable; empty when the
// backing context field is absent for the current variant.
type resolver func(ctx *Context) string

// variables is the closed registry. Unknown names resolve to nothing
// deterministically; there is no reflection or dynamic dispatch.
var variables = map[string]resolver{
	"sep": func(ctx *Context) string {
		return ctx.sep()
	},
	"sitename": func(ctx *Context) string {
		return ctx.SiteName
	},
	"page": func(ctx *Context) string {
		if ctx.MaxPages > 1 && ctx.Page > 1 {
			return fmt.Sprintf("%s Page %d of %d", ctx.sep(), ctx.Page, ctx.MaxPages)
		}
		return ""
	},
	"searchphrase": func(ctx *Context) string {
		return ctx.SearchQuery
	},
	"term": func(ctx *Context) string {
		if ctx.Term != nil && ctx.Term.Taxonomy != "" {
			return ctx.Term.Name
		}
		return ""
	},
	"term_description": func(ctx *Context) string {
		if ctx.Term != nil {
			return ctx.Term.Description
		}
		return ""
	},
	"title": func(ctx *Context) string {
		if ctx.Post != nil {
			return ctx.Post.Title
		}
		return ""
	},
	"excerpt": func(ctx *Context) string {
		if ctx.Post != nil {
			return ctx.Post.Excerpt
		}
		return ""
	},
	"pt_plural": func(ctx *Context) string {
		return ctx.TypeLabel
	},
}

// Replace resolves every known {variable} in template against ctx. Each
// distinct variable is resolved once; all its occurrences are substituted,
// with absent context fields substituting the empty string. Unknown
// variable names are left untouched. When {sep} resolves to a non-empty
// separator, runs of the separator left behind by empty-resolving
// neighbours are collapsed to a single instance.
func Replace(template string, ctx *Context) string {
	if !strings.Contains(template, "{") {
		return template
	}
	if ctx == nil {
		ctx = &Context{}
	}
	ctx = ctx.stripped()

	replacements := setUpReplacements(template, ctx)
	if len(replacements) == 0 {
		return template
	}

	pairs := make([]string, 0, 2*len(replacements))
	for token, value := range replacements {
		pairs = append(pairs, token, value)
	}
	out := strings.NewReplacer(pairs...).Replace(template)

	if sep, ok := replacements["{sep}"]; ok && sep != "" {
		out = collapseSep(out, sep)
	}
	return out
}

// stripped returns a copy of ctx with shortcodes removed from the
// post-content-derived fields, so raw shortcode markup never leaks into
// meta tags.
func (ctx *Context) stripped() *Context {
	if ctx.Post == nil {
		return ctx
	}
	if !strings.Contains(ctx.Post.Content, "[") && !strings.Contains(ctx.Post.Excerpt, "[") {
		return ctx
	}
	c := *ctx
	p := *ctx.Post
	p.Content = StripShortcodes(p.Content)
	p.Excerpt = StripShortcodes(p.Excerpt)
	c.Post = &p
	return &c
}

func setUpReplacements(template string, ctx *Context) map[string]string {
	matches := rePlaceholder.FindAllStringSubmatch(template, -1)
	if matches == nil {
		return nil
	}
	replacements := make(map[string]string, len(matches))
	for _, m := range matches {
		token, name := m[0], m[1]
		if _, done := replacements[token]; done {
			continue
		}
		fn, known := variables[name]
		if !known {
			continue
		}
		replacements[token] = fn(ctx)
	}
	return replacements
}

// collapseSep rewrites runs of the separator, optionally interleaved with
// whitespace, into one instance. Adjacent variables resolving empty would
// otherwise leave "- -" artifacts.
func collapseSep(s, sep string) string {
	q := regexp.QuoteMeta(sep)
	re, err := regexp.Compile(q + `(?:\s*` + q + `)+`)
	if err != nil {
		return s
	}
	return re.ReplaceAllString(s, sep)
}

// StripShortcodes removes [shortcode] blocks from body text, including
// caption wrappers and orphaned or unrecognized closing tags.
func StripShortcodes(body string) string {
	if !strings.Contains(body, "[") {
		return body
	}
	body = reCaption.ReplaceAllString(body, "")
	return reShortcode.ReplaceAllString(body, "")
}
