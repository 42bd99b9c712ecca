package document

import "github.com/nhgweb/seo/content"

// shop resolves metadata for the commerce catalog root page. It is bound
// to the shop page entity and reuses singular's canonical logic, but pulls
// its templates from the product archive strategy.
type shop struct {
	singular
}

func (s *shop) title() string {
	if s.post == nil {
		return TitleNotFound
	}
	return s.d.deps.Strategy.Title(TypeArchive, content.KindProduct, s.d.replacerCtx())
}

func (s *shop) description() string {
	if s.post == nil {
		return ""
	}
	return s.d.deps.Strategy.Description(TypeArchive, content.KindProduct, s.d.replacerCtx())
}

func (s *shop) robots() Robots {
	if s.post == nil {
		return Robots{}
	}
	robots := s.d.deps.Strategy.RobotsPolicy(TypeArchive, content.KindProduct)
	if s.noindexed() {
		robots["index"] = "noindex"
	}
	return robots
}
