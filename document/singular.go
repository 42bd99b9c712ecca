package document

import "github.com/nhgweb/seo/content"

// singular resolves metadata for a single content entity, including the
// static front page.
type singular struct {
	d    *Document
	post *content.Post
}

func (s *singular) title() string {
	if s.post == nil {
		return TitleNotFound
	}
	if title, ok := FromMeta(s.d.deps.Meta, "post", s.post.ID, content.MetaTitle, s.d.replacerCtx()); ok {
		return title
	}
	return s.d.deps.Strategy.Title(TypePost, s.post.Type, s.d.replacerCtx())
}

func (s *singular) description() string {
	if s.post == nil {
		return ""
	}
	if desc, ok := FromMeta(s.d.deps.Meta, "post", s.post.ID, content.MetaDescription, s.d.replacerCtx()); ok {
		return desc
	}
	if desc := s.d.deps.Strategy.Description(TypePost, s.post.Type, s.d.replacerCtx()); desc != "" {
		return desc
	}
	// Products never ship with an empty description; fall back to the
	// configured marketing copy.
	if s.post.Type == content.KindProduct {
		return s.d.deps.Settings.ProductDescriptionFallback
	}
	return ""
}

func (s *singular) robots() Robots {
	if s.post == nil {
		return Robots{}
	}
	robots := s.d.deps.Strategy.RobotsPolicy(TypePost, s.post.Type)
	if s.noindexed() {
		robots["index"] = "noindex"
	}
	return robots
}

// noindexed reports the conditions that keep an entity page out of the
// index: private status, password protection, or a non-first archive page.
func (s *singular) noindexed() bool {
	return s.post.Status == content.StatusPrivate ||
		s.post.Password != "" ||
		s.d.q.IsPaged()
}

func (s *singular) canonical() canonicalParts {
	if s.post == nil {
		return canonicalParts{}
	}
	canonical := s.d.deps.Links.PostURL(s.post)

	// Paginated entity bodies canonicalize to the page being viewed, but
	// only when the page genuinely exists in the content.
	if page := s.d.q.Page; page > 1 {
		if pages := s.d.q.BodyPages(); pages > 0 && page <= pages {
			canonical = s.d.CanonicalPaged(canonical, page, true, s.d.deps.Settings.PageQueryParamOrDefault())
		}
	}

	return canonicalParts{
		canonical: canonical,
		unpaged:   canonical,
		override:  s.d.metaCanonical("post", s.post.ID),
	}
}
