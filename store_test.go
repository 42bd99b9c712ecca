package seo

import (
	"path/filepath"
	"testing"

	"github.com/nhgweb/seo/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetPost(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.SavePost(content.Post{
		Slug:    "protein-bar",
		Type:    content.KindProduct,
		Title:   "Protein Bar",
		Excerpt: "A chewy protein bar.",
		Content: "Twelve grams of protein per serving.",
		Date:    "2024-01-15",
		Status:  content.StatusPublish,
	})
	if err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	if id == 0 {
		t.Fatal("SavePost returned id 0")
	}

	got, err := s.PostByID(id)
	if err != nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("PostByID returned nil")
	}
	if got.Slug != "protein-bar" {
		t.Errorf("Slug = %q, want %q", got.Slug, "protein-bar")
	}
	if got.Type != content.KindProduct {
		t.Errorf("Type = %q, want %q", got.Type, content.KindProduct)
	}
	if got.Title != "Protein Bar" {
		t.Errorf("Title = %q, want %q", got.Title, "Protein Bar")
	}

	bySlug, err := s.PostBySlug(content.KindProduct, "protein-bar")
	if err != nil {
		t.Fatalf("PostBySlug failed: %v", err)
	}
	if bySlug == nil || bySlug.ID != id {
		t.Errorf("PostBySlug returned %+v, want id %d", bySlug, id)
	}
}

func TestSavePostUpdate(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.SavePost(content.Post{
		Slug: "guide", Type: content.KindPost, Title: "Original Title",
		Date: "2024-01-01", Status: content.StatusPublish,
	})
	if err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	if _, err := s.SavePost(content.Post{
		Slug: "guide", Type: content.KindPost, Title: "Updated Title",
		Date: "2024-01-02", Status: content.StatusPublish,
	}); err != nil {
		t.Fatalf("SavePost update failed: %v", err)
	}

	got, err := s.PostByID(id)
	if err != nil || got == nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if got.Title != "Updated Title" {
		t.Errorf("Title = %q, want %q", got.Title, "Updated Title")
	}
	if got.Date != "2024-01-02" {
		t.Errorf("Date = %q, want %q", got.Date, "2024-01-02")
	}
}

func TestPostByIDMissing(t *testing.T) {
	s := setupTestStore(t)

	got, err := s.PostByID(999)
	if err != nil {
		t.Fatalf("PostByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("PostByID = %+v, want nil", got)
	}
}

func TestListPostsPagination(t *testing.T) {
	s := setupTestStore(t)

	for _, p := range []content.Post{
		{Slug: "a", Type: content.KindPost, Title: "A", Date: "2024-01-01", Status: content.StatusPublish},
		{Slug: "b", Type: content.KindPost, Title: "B", Date: "2024-01-02", Status: content.StatusPublish},
		{Slug: "c", Type: content.KindPost, Title: "C", Date: "2024-01-03", Status: content.StatusPublish},
		{Slug: "d", Type: content.KindPost, Title: "D", Date: "2024-01-04", Status: content.StatusDraft},
	} {
		if _, err := s.SavePost(p); err != nil {
			t.Fatalf("SavePost failed: %v", err)
		}
	}

	posts, pages, err := s.ListPosts(content.KindPost, 1, 2)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if pages != 2 {
		t.Errorf("pages = %d, want 2", pages)
	}
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}
	// Drafts are excluded, order is newest first.
	if posts[0].Slug != "c" || posts[1].Slug != "b" {
		t.Errorf("page 1 = [%s %s], want [c b]", posts[0].Slug, posts[1].Slug)
	}

	posts, _, err = s.ListPosts(content.KindPost, 2, 2)
	if err != nil {
		t.Fatalf("ListPosts page 2 failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "a" {
		t.Errorf("page 2 = %v, want [a]", posts)
	}
}

func TestTermsForPostPrimaryFirst(t *testing.T) {
	s := setupTestStore(t)

	postID, err := s.SavePost(content.Post{
		Slug: "whey", Type: content.KindProduct, Title: "Whey",
		Date: "2024-01-01", Status: content.StatusPublish,
	})
	if err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	aID, err := s.SaveTerm(content.Term{Taxonomy: content.TaxProductCategory, Slug: "accessories", Name: "Accessories"})
	if err != nil {
		t.Fatalf("SaveTerm failed: %v", err)
	}
	pID, err := s.SaveTerm(content.Term{Taxonomy: content.TaxProductCategory, Slug: "protein", Name: "Protein"})
	if err != nil {
		t.Fatalf("SaveTerm failed: %v", err)
	}
	if err := s.AttachPostTerm(postID, aID, false); err != nil {
		t.Fatalf("AttachPostTerm failed: %v", err)
	}
	if err := s.AttachPostTerm(postID, pID, true); err != nil {
		t.Fatalf("AttachPostTerm failed: %v", err)
	}

	terms, err := s.TermsForPost(postID, content.TaxProductCategory)
	if err != nil {
		t.Fatalf("TermsForPost failed: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("len(terms) = %d, want 2", len(terms))
	}
	if terms[0].Slug != "protein" {
		t.Errorf("primary term = %q, want %q", terms[0].Slug, "protein")
	}
}

func TestTermAncestors(t *testing.T) {
	s := setupTestStore(t)

	rootID, err := s.SaveTerm(content.Term{Taxonomy: content.TaxProductCategory, Slug: "nutrition", Name: "Nutrition"})
	if err != nil {
		t.Fatalf("SaveTerm failed: %v", err)
	}
	midID, err := s.SaveTerm(content.Term{Taxonomy: content.TaxProductCategory, Slug: "protein", Name: "Protein", Parent: rootID})
	if err != nil {
		t.Fatalf("SaveTerm failed: %v", err)
	}
	leafID, err := s.SaveTerm(content.Term{Taxonomy: content.TaxProductCategory, Slug: "bars", Name: "Bars", Parent: midID})
	if err != nil {
		t.Fatalf("SaveTerm failed: %v", err)
	}

	ancestors, err := s.TermAncestors(leafID)
	if err != nil {
		t.Fatalf("TermAncestors failed: %v", err)
	}
	if len(ancestors) != 2 {
		t.Fatalf("len(ancestors) = %d, want 2", len(ancestors))
	}
	if ancestors[0].Name != "Nutrition" || ancestors[1].Name != "Protein" {
		t.Errorf("ancestors = [%s %s], want [Nutrition Protein]", ancestors[0].Name, ancestors[1].Name)
	}
}

func TestProductRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	postID, err := s.SavePost(content.Post{
		Slug: "whey-900", Type: content.KindProduct, Title: "Whey 900g",
		Date: "2024-02-01", Status: content.StatusPublish,
	})
	if err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	if err := s.SaveProduct(content.Product{
		PostID:      postID,
		Kind:        "simple",
		Price:       "29.99",
		InStock:     true,
		SKU:         "WHEY-900",
		GTIN:        "12345678",
		Weight:      "0.9",
		RatingAvg:   "4.5",
		RatingCount: 12,
		ReviewCount: 9,
		GalleryIDs:  []int64{3, 7},
	}); err != nil {
		t.Fatalf("SaveProduct failed: %v", err)
	}

	got, err := s.ProductByPostID(postID)
	if err != nil {
		t.Fatalf("ProductByPostID failed: %v", err)
	}
	if got == nil {
		t.Fatal("ProductByPostID returned nil")
	}
	if got.Price != "29.99" {
		t.Errorf("Price = %q, want %q", got.Price, "29.99")
	}
	if !got.InStock {
		t.Error("InStock should be true")
	}
	if len(got.GalleryIDs) != 2 || got.GalleryIDs[0] != 3 || got.GalleryIDs[1] != 7 {
		t.Errorf("GalleryIDs = %v, want [3 7]", got.GalleryIDs)
	}
}

func TestVariationPrices(t *testing.T) {
	s := setupTestStore(t)

	for _, price := range []string{"19.99", "24.99", "9.99"} {
		if err := s.SaveVariation(42, price); err != nil {
			t.Fatalf("SaveVariation failed: %v", err)
		}
	}

	r, err := s.VariationPrices(42)
	if err != nil {
		t.Fatalf("VariationPrices failed: %v", err)
	}
	if r.Low != "9.99" {
		t.Errorf("Low = %q, want %q", r.Low, "9.99")
	}
	if r.High != "24.99" {
		t.Errorf("High = %q, want %q", r.High, "24.99")
	}
	if r.Count != 3 {
		t.Errorf("Count = %d, want 3", r.Count)
	}
}

func TestApprovedReviews(t *testing.T) {
	s := setupTestStore(t)

	reviews := []struct {
		author   string
		date     string
		approved bool
		parent   int64
	}{
		{"Alice", "2024-03-01", true, 0},
		{"Bob", "2024-03-02", false, 0},
		{"Carol", "2024-03-03", true, 0},
		{"Dave", "2024-03-04", true, 1}, // reply, not top-level
	}
	for _, r := range reviews {
		if err := s.SaveReview(content.Review{
			PostID: 7, Author: r.author, Body: "Great", Rating: 5, Date: r.date,
		}, r.approved, r.parent); err != nil {
			t.Fatalf("SaveReview failed: %v", err)
		}
	}

	got, err := s.ApprovedReviews(7, 5)
	if err != nil {
		t.Fatalf("ApprovedReviews failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(reviews) = %d, want 2", len(got))
	}
	if got[0].Author != "Carol" || got[1].Author != "Alice" {
		t.Errorf("reviews = [%s %s], want [Carol Alice]", got[0].Author, got[1].Author)
	}
}

func TestAttachmentByURLIgnoresQuery(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.SaveAttachment(content.ImageRef{
		URL: "https://example.com/public/uploads/whey.jpg", Width: 800, Height: 600, Mime: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("SaveAttachment failed: %v", err)
	}

	got, err := s.AttachmentByURL("https://example.com/public/uploads/whey.jpg?ver=3")
	if err != nil {
		t.Fatalf("AttachmentByURL failed: %v", err)
	}
	if got == nil || got.ID != id {
		t.Errorf("AttachmentByURL = %+v, want id %d", got, id)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SetMeta("post", 5, content.MetaTitle, "Custom Title"); err != nil {
		t.Fatalf("SetMeta failed: %v", err)
	}

	got, ok := s.GetMeta("post", 5, content.MetaTitle)
	if !ok {
		t.Fatal("GetMeta reported missing after SetMeta")
	}
	if got != "Custom Title" {
		t.Errorf("GetMeta = %q, want %q", got, "Custom Title")
	}

	// Setting empty deletes the override.
	if err := s.SetMeta("post", 5, content.MetaTitle, ""); err != nil {
		t.Fatalf("SetMeta empty failed: %v", err)
	}
	if _, ok := s.GetMeta("post", 5, content.MetaTitle); ok {
		t.Error("GetMeta should report missing after empty SetMeta")
	}
}

func TestSearchPosts(t *testing.T) {
	s := setupTestStore(t)

	for _, p := range []content.Post{
		{Slug: "whey-guide", Type: content.KindPost, Title: "Whey Guide", Content: "All about whey.", Date: "2024-01-01", Status: content.StatusPublish},
		{Slug: "casein", Type: content.KindPost, Title: "Casein", Content: "Slow protein.", Date: "2024-01-02", Status: content.StatusPublish},
		{Slug: "hidden", Type: content.KindPost, Title: "Whey Draft", Content: "", Date: "2024-01-03", Status: content.StatusDraft},
	} {
		if _, err := s.SavePost(p); err != nil {
			t.Fatalf("SavePost failed: %v", err)
		}
	}

	posts, pages, err := s.SearchPosts("whey", 1, 10)
	if err != nil {
		t.Fatalf("SearchPosts failed: %v", err)
	}
	if pages != 1 {
		t.Errorf("pages = %d, want 1", pages)
	}
	if len(posts) != 1 || posts[0].Slug != "whey-guide" {
		t.Errorf("posts = %v, want [whey-guide]", posts)
	}
}
