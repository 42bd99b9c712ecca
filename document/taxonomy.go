package document

import "github.com/nhgweb/seo/content"

// taxonomy resolves metadata for a term archive (category, tag or custom
// taxonomy).
type taxonomy struct {
	d    *Document
	term *content.Term
}

func (t *taxonomy) title() string {
	if t.term == nil {
		return TitleNotFound
	}
	if title, ok := FromMeta(t.d.deps.Meta, "term", t.term.ID, content.MetaTitle, t.d.replacerCtx()); ok {
		return title
	}
	return t.d.deps.Strategy.Title(TypeTerm, t.term.Taxonomy, t.d.replacerCtx())
}

func (t *taxonomy) description() string {
	if t.term == nil {
		return ""
	}
	if desc, ok := FromMeta(t.d.deps.Meta, "term", t.term.ID, content.MetaDescription, t.d.replacerCtx()); ok {
		return desc
	}
	return t.d.deps.Strategy.Description(TypeTerm, t.term.Taxonomy, t.d.replacerCtx())
}

func (t *taxonomy) robots() Robots {
	if t.term == nil {
		return Robots{}
	}
	return t.d.deps.Strategy.RobotsPolicy(TypeTerm, t.term.Taxonomy)
}

func (t *taxonomy) canonical() canonicalParts {
	if t.term == nil {
		return canonicalParts{}
	}
	link, err := t.d.deps.Links.TermURL(t.term)
	if err != nil {
		link = ""
	}
	return canonicalParts{
		canonical: link,
		override:  t.d.metaCanonical("term", t.term.ID),
	}
}
