package document

import (
	"strings"

	"github.com/nhgweb/seo/content"
	"github.com/nhgweb/seo/replacer"
)

// Object types the strategy table is keyed by.
const (
	TypePost    = "post"
	TypeTerm    = "term"
	TypeArchive = "archive"
	TypeSearch  = "search"
)

const defaultSubtype = "default"

// Entry is one strategy configuration: the metadata templates and default
// robots policy for a (object type, subtype) pair.
type Entry struct {
	Title       string
	Description string
	Robots      Robots
}

// Strategy is the static lookup table mapping content types to metadata
// templates. Lookups fall back to the per-type default subtype and fail
// closed (zero Entry) for unknown object types.
type Strategy struct {
	settings map[string]map[string]Entry
}

// NewStrategy returns the built-in strategy table.
func NewStrategy() *Strategy {
	return &Strategy{
		settings: map[string]map[string]Entry{
			TypePost: {
				"post": {
					Title:       "{title} {page} {sep} {sitename}",
					Description: "{excerpt}",
				},
				defaultSubtype: {
					Title:       "{title} {page} {sep} {sitename}",
					Description: "{excerpt}",
				},
			},
			TypeTerm: {
				defaultSubtype: {
					Title:       "{term} {page} {sep} {sitename}",
					Description: "{term_description}",
				},
			},
			TypeArchive: {
				defaultSubtype: {
					Title:       "{pt_plural} Archive {page} {sep} {sitename}",
					Description: "{pt_plural} Archive {page} {sep} {sitename}",
				},
			},
			TypeSearch: {
				defaultSubtype: {
					Title: "Searched for {searchphrase} {page} {sep} {sitename}",
				},
			},
		},
	}
}

// lookup returns the entry for (objectType, subtype). An empty subtype
// selects the default entry directly, which is how subtype-less types
// (search) are addressed.
func (s *Strategy) lookup(objectType, subtype string) (Entry, bool) {
	block, ok := s.settings[objectType]
	if !ok {
		return Entry{}, false
	}
	if subtype != "" {
		if entry, ok := block[subtype]; ok {
			return entry, true
		}
	}
	entry, ok := block[defaultSubtype]
	return entry, ok
}

// Title renders the title template for (objectType, subtype) against ctx.
func (s *Strategy) Title(objectType, subtype string, ctx *replacer.Context) string {
	entry, ok := s.lookup(objectType, subtype)
	if !ok || entry.Title == "" {
		return ""
	}
	return replacer.Replace(entry.Title, ctx)
}

// Description renders the description template for (objectType, subtype).
func (s *Strategy) Description(objectType, subtype string, ctx *replacer.Context) string {
	entry, ok := s.lookup(objectType, subtype)
	if !ok || entry.Description == "" {
		return ""
	}
	return replacer.Replace(entry.Description, ctx)
}

// RobotsPolicy returns a copy of the robots policy for (objectType,
// subtype); an empty policy when the type is unknown.
func (s *Strategy) RobotsPolicy(objectType, subtype string) Robots {
	entry, ok := s.lookup(objectType, subtype)
	if !ok {
		return Robots{}
	}
	return entry.Robots.clone()
}

// FromMeta renders a stored per-entity override for field. Stored title
// overrides omit the branding suffix, so it is re-appended before
// rendering. ok is false when no override is stored or it is empty.
func FromMeta(meta content.MetaStore, kind string, id int64, field string, ctx *replacer.Context) (string, bool) {
	if meta == nil {
		return "", false
	}
	value, ok := meta.GetMeta(kind, id, field)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if field == content.MetaTitle {
		value += " {sep} {sitename}"
	}
	if field == content.MetaTitle || field == content.MetaDescription {
		return replacer.Replace(value, ctx), true
	}
	return value, true
}
