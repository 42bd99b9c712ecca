package document

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy  = bluemonday.StrictPolicy()
	reWhitespace = regexp.MustCompile(`\s+`)
)

// smilies maps emoticon shortcodes to their visual form, mirroring the
// classic set supported by the host platform's text filters.
var smilies = map[string]string{
	":)":  "\U0001F642",
	":-)": "\U0001F642",
	":(":  "\U0001F641",
	":-(": "\U0001F641",
	";)":  "\U0001F609",
	";-)": "\U0001F609",
	":D":  "\U0001F600",
	":-D": "\U0001F600",
	":P":  "\U0001F61B",
	":-P": "\U0001F61B",
	":|":  "\U0001F610",
	"<3":  "❤️",
}

var smileyReplacer *strings.Replacer

func init() {
	pairs := make([]string, 0, 2*len(smilies))
	for code, visual := range smilies {
		pairs = append(pairs, code, visual)
	}
	smileyReplacer = strings.NewReplacer(pairs...)
}

// StripTags removes all HTML markup from s and decodes entities, leaving
// plain text suitable for meta tag content.
func StripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// CollapseWhitespace rewrites runs of whitespace to single spaces.
func CollapseWhitespace(s string) string {
	return reWhitespace.ReplaceAllString(s, " ")
}

// ConvertSmilies rewrites emoticon shortcodes to their visual form.
func ConvertSmilies(s string) string {
	return smileyReplacer.Replace(s)
}
