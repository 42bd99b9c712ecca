package document

// search resolves metadata for a search results request.
type search struct {
	d *Document
}

func (s *search) title() string {
	return s.d.deps.Strategy.Title(TypeSearch, "", s.d.replacerCtx())
}

func (s *search) description() string {
	return ""
}

func (s *search) robots() Robots {
	return Robots{}
}

func (s *search) canonical() canonicalParts {
	query := s.d.q.SearchQuery
	// A bare pagination token is not a real query; such requests get no
	// canonical at all.
	if query == "" || rePageToken.MatchString(query) {
		return canonicalParts{}
	}
	return canonicalParts{canonical: s.d.deps.Links.SearchURL(query)}
}
