package document

import (
	"strings"
	"testing"

	"github.com/nhgweb/seo/content"
)

type fakeLinks struct{}

func (fakeLinks) PostURL(p *content.Post) string {
	return "https://example.com/" + p.Slug + "/"
}

func (fakeLinks) TermURL(t *content.Term) (string, error) {
	return "https://example.com/" + t.Taxonomy + "/" + t.Slug + "/", nil
}

func (fakeLinks) SearchURL(query string) string {
	return "https://example.com/search/" + query + "/"
}

type fakeMeta map[string]string

func (m fakeMeta) GetMeta(kind string, id int64, field string) (string, bool) {
	v, ok := m[kind+":"+field]
	return v, ok
}

func (m fakeMeta) SetMeta(kind string, id int64, field, value string) error {
	m[kind+":"+field] = value
	return nil
}

func (m fakeMeta) DeleteMeta(kind string, id int64, field string) error {
	delete(m, kind+":"+field)
	return nil
}

func testSettings() Settings {
	return Settings{
		SiteName:         "Example Shop",
		HomeURL:          "https://example.com",
		PrettyPermalinks: true,
	}
}

func testDeps(meta content.MetaStore) Deps {
	return Deps{
		Settings: testSettings(),
		Meta:     meta,
		Links:    fakeLinks{},
	}
}

func TestTitleFromStrategy(t *testing.T) {
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 1, Slug: "hello", Type: content.KindPost, Title: "Hello World"},
	}
	d := New(q, testDeps(nil))

	got := d.Title()
	want := "Hello World - Example Shop"
	if got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
}

func TestTitleMetaOverrideAppendsSiteName(t *testing.T) {
	meta := fakeMeta{"post:" + content.MetaTitle: "Custom Title"}
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 1, Slug: "hello", Type: content.KindPost, Title: "Hello World"},
	}
	d := New(q, testDeps(meta))

	got := d.Title()
	want := "Custom Title - Example Shop"
	if got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
}

func TestTitleSanitized(t *testing.T) {
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 1, Slug: "hi", Type: content.KindPost, Title: "Hello   <em>World</em> :)"},
	}
	d := New(q, testDeps(nil))

	got := d.Title()
	want := "Hello World \U0001f642 - Example Shop"
	if got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
}

func TestDescriptionFallsBackForProducts(t *testing.T) {
	deps := testDeps(nil)
	deps.Settings.ProductDescriptionFallback = "Everything you need, delivered fast."
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 7, Slug: "kettlebell", Type: content.KindProduct, Title: "Kettlebell"},
	}
	d := New(q, deps)

	got := d.Description()
	if got != deps.Settings.ProductDescriptionFallback {
		t.Errorf("Description() = %q, want fallback copy", got)
	}
}

func TestDescriptionStripsMarkup(t *testing.T) {
	q := content.Query{
		IsSingular: true,
		Post: &content.Post{
			ID: 1, Slug: "hi", Type: content.KindPost,
			Title:   "Hi",
			Excerpt: "  Fresh <strong>deals</strong> every week.  ",
		},
	}
	d := New(q, testDeps(nil))

	got := d.Description()
	want := "Fresh deals every week."
	if got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
}

func TestNotFoundBundle(t *testing.T) {
	d := New(content.Query{}, testDeps(nil))

	if got := d.Title(); got != "Page not found" {
		t.Errorf("Title() = %q, want %q", got, "Page not found")
	}
	if got := d.Description(); got != "" {
		t.Errorf("Description() = %q, want empty", got)
	}
	if got := d.RobotsDirectives().String(); got != "noindex, follow" {
		t.Errorf("robots = %q, want %q", got, "noindex, follow")
	}
	if got := d.Canonical(); got != "" {
		t.Errorf("Canonical() = %q, want empty", got)
	}
}

func TestRobotsDefaults(t *testing.T) {
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 1, Slug: "hi", Type: content.KindPost, Title: "Hi"},
	}
	d := New(q, testDeps(nil))

	got := d.RobotsDirectives().String()
	want := "index, follow"
	if got != want {
		t.Errorf("robots = %q, want %q", got, want)
	}
}

func TestRobotsNoindexConditions(t *testing.T) {
	tests := []struct {
		name string
		post content.Post
		q    content.Query
	}{
		{"private", content.Post{ID: 1, Status: content.StatusPrivate}, content.Query{IsSingular: true}},
		{"password protected", content.Post{ID: 1, Status: content.StatusPublish, Password: "s3cret"}, content.Query{IsSingular: true}},
		{"paged archive view", content.Post{ID: 1, Status: content.StatusPublish}, content.Query{IsSingular: true, Paged: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.post.Type = content.KindPost
			tt.q.Post = &tt.post
			d := New(tt.q, testDeps(nil))
			if !d.RobotsDirectives().NoIndex() {
				t.Errorf("robots = %v, want noindex", d.RobotsDirectives())
			}
		})
	}
}

func TestRobotsCartShortCircuit(t *testing.T) {
	q := content.Query{
		IsSingular: true,
		IsCart:     true,
		Post:       &content.Post{ID: 1, Slug: "cart", Type: content.KindPage, Title: "Cart"},
	}
	d := New(q, testDeps(nil))

	got := d.RobotsDirectives().String()
	want := "noindex, follow"
	if got != want {
		t.Errorf("robots = %q, want %q", got, want)
	}
}

func TestRobotsDiscourageIndexing(t *testing.T) {
	deps := testDeps(nil)
	deps.Settings.DiscourageIndexing = true
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 1, Slug: "hi", Type: content.KindPost, Title: "Hi"},
	}
	d := New(q, deps)

	if !d.RobotsDirectives().NoIndex() {
		t.Errorf("robots = %v, want noindex", d.RobotsDirectives())
	}
}

func TestValidateRobotsDropsUnknownKeys(t *testing.T) {
	got := ValidateRobots(Robots{"noarchive": "noarchive", "bogus": "bogus"})
	if _, ok := got["bogus"]; ok {
		t.Error("unknown directive survived validation")
	}
	if got["index"] != "index" || got["follow"] != "follow" {
		t.Errorf("validated robots = %v, want index and follow defaulted", got)
	}
}

func TestCanonicalSingular(t *testing.T) {
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 1, Slug: "hello", Type: content.KindPost, Title: "Hello"},
	}
	d := New(q, testDeps(nil))

	got := d.Canonical()
	want := "https://example.com/hello/"
	if got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}

func TestCanonicalSingularPagedBody(t *testing.T) {
	body := "one" + content.PageBreak + "two" + content.PageBreak + "three"
	q := content.Query{
		IsSingular: true,
		Page:       2,
		Post:       &content.Post{ID: 1, Slug: "guide", Type: content.KindPost, Title: "Guide", Content: body},
	}
	d := New(q, testDeps(nil))

	got := d.Canonical()
	want := "https://example.com/guide/page/2/"
	if got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}

func TestCanonicalSingularPageBeyondContent(t *testing.T) {
	q := content.Query{
		IsSingular: true,
		Page:       5,
		Post:       &content.Post{ID: 1, Slug: "guide", Type: content.KindPost, Title: "Guide", Content: "one page only"},
	}
	d := New(q, testDeps(nil))

	got := d.Canonical()
	want := "https://example.com/guide/"
	if got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}

func TestCanonicalTaxonomyPaged(t *testing.T) {
	q := content.Query{
		Paged:       3,
		MaxNumPages: 5,
		Term:        &content.Term{ID: 4, Taxonomy: "category", Slug: "training", Name: "Training"},
	}
	d := New(q, testDeps(nil))

	if got, want := d.Canonical(), "https://example.com/category/training/page/3/"; got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
	if got, want := d.CanonicalUnpaged(), "https://example.com/category/training/"; got != want {
		t.Errorf("CanonicalUnpaged() = %q, want %q", got, want)
	}
}

func TestCanonicalPagedQueryStyle(t *testing.T) {
	deps := testDeps(nil)
	deps.Settings.PrettyPermalinks = false
	d := New(content.Query{}, deps)

	got := d.CanonicalPaged("https://example.com/category/training", 3, true, "page")
	want := "https://example.com/category/training/?page=3"
	if got != want {
		t.Errorf("CanonicalPaged() = %q, want %q", got, want)
	}
}

func TestCanonicalPagedFirstPageUnchanged(t *testing.T) {
	d := New(content.Query{}, testDeps(nil))

	base := "https://example.com/category/training/"
	if got := d.CanonicalPaged(base, 1, true, "page"); got != base {
		t.Errorf("CanonicalPaged() = %q, want %q", got, base)
	}
}

func TestCanonicalFrontPage(t *testing.T) {
	q := content.Query{
		IsFrontPage: true,
		Post:        &content.Post{ID: 2, Slug: "home", Type: content.KindPage, Title: "Home"},
	}
	d := New(q, testDeps(nil))

	got := d.Canonical()
	want := "https://example.com/"
	if got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}

func TestCanonicalOverrideWins(t *testing.T) {
	meta := fakeMeta{"post:" + content.MetaCanonical: "https://example.com/preferred/"}
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 1, Slug: "hello", Type: content.KindPost, Title: "Hello"},
	}
	d := New(q, testDeps(meta))

	if got, want := d.Canonical(), "https://example.com/preferred/"; got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
	if got, want := d.CanonicalNoOverride(), "https://example.com/hello/"; got != want {
		t.Errorf("CanonicalNoOverride() = %q, want %q", got, want)
	}
}

func TestCanonicalSearch(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"protein", "https://example.com/search/protein/"},
		{"", ""},
		{"page/2", ""},
	}
	for _, tt := range tests {
		q := content.Query{IsSearch: true, SearchQuery: tt.query}
		d := New(q, testDeps(nil))
		if got := d.Canonical(); got != tt.want {
			t.Errorf("Canonical() for query %q = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestSearchTitle(t *testing.T) {
	q := content.Query{IsSearch: true, SearchQuery: "protein"}
	d := New(q, testDeps(nil))

	got := d.Title()
	want := "Searched for protein - Example Shop"
	if got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
}

func TestShopUsesProductArchiveStrategy(t *testing.T) {
	deps := testDeps(nil)
	deps.Settings.TypeLabels = map[string]string{content.KindProduct: "Products"}
	q := content.Query{
		IsShopPage:  true,
		Paged:       2,
		MaxNumPages: 4,
		Post:        &content.Post{ID: 9, Slug: "shop", Type: content.KindPage, Title: "Shop", Status: content.StatusPublish},
	}
	d := New(q, deps)

	got := d.Title()
	want := "Products Archive - Page 2 of 4 - Example Shop"
	if got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
	// The shop page is bound to an entity but paginates like an archive.
	if got, want := d.Canonical(), "https://example.com/shop/page/2/"; got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
	if !d.RobotsDirectives().NoIndex() {
		t.Errorf("robots = %v, want noindex on paged shop", d.RobotsDirectives())
	}
}

func TestTitleMemoized(t *testing.T) {
	meta := fakeMeta{"post:" + content.MetaTitle: "First"}
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 1, Slug: "hello", Type: content.KindPost, Title: "Hello"},
	}
	d := New(q, testDeps(meta))

	first := d.Title()
	meta["post:"+content.MetaTitle] = "Second"
	if got := d.Title(); got != first {
		t.Errorf("Title() = %q after meta change, want memoized %q", got, first)
	}
}

func TestStrategyFailsClosed(t *testing.T) {
	s := NewStrategy()
	if got := s.Title("unknown", "whatever", nil); got != "" {
		t.Errorf("Title() = %q, want empty for unknown object type", got)
	}
	if got := s.RobotsPolicy("unknown", "whatever"); len(got) != 0 {
		t.Errorf("RobotsPolicy() = %v, want empty mapping", got)
	}
}

func TestStrategySubtypeFallback(t *testing.T) {
	s := NewStrategy()
	post := &content.Post{Title: "My Page"}
	d := New(content.Query{IsSingular: true, Post: post}, testDeps(nil))

	got := s.Title(TypePost, "page", d.replacerCtx())
	if !strings.HasPrefix(got, "My Page") {
		t.Errorf("Title() = %q, want default subtype template applied", got)
	}
}

type relativeLinks struct{ fakeLinks }

func (relativeLinks) PostURL(p *content.Post) string {
	return "/" + p.Slug + "/"
}

func TestCanonicalRelativePermalinkMadeAbsolute(t *testing.T) {
	q := content.Query{
		IsSingular: true,
		Post:       &content.Post{ID: 7, Slug: "foo", Type: content.KindPost},
		Paged:      1,
	}
	deps := testDeps(nil)
	deps.Links = relativeLinks{}
	d := New(q, deps)

	if got, want := d.Canonical(), "https://example.com/foo/"; got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}
