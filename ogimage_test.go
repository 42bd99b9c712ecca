package seo

import (
	"testing"

	"github.com/nhgweb/seo/content"
)

func TestOGImageFeaturedSelected(t *testing.T) {
	cfg := testConfig()
	fc := newFakeCatalog()
	post := productFixture(fc)

	doc := testDocument(cfg, content.Query{IsSingular: true, Post: post, Page: 1, Paged: 1}, fc)
	images := NewOGImageSelector(cfg, fc, fc).Select(doc)
	if len(images) != 2 {
		t.Fatalf("len(images) = %d, want 2 (featured + gallery)", len(images))
	}
	if images[0].URL != "https://example.com/public/uploads/whey.jpg" {
		t.Errorf("first image = %q, want featured", images[0].URL)
	}
}

func TestOGImageRejectsOutOfBounds(t *testing.T) {
	cfg := testConfig()
	fc := newFakeCatalog()
	post := productFixture(fc)
	fc.attachments[100].Width = 64
	fc.attachments[100].Height = 64

	doc := testDocument(cfg, content.Query{IsSingular: true, Post: post, Page: 1, Paged: 1}, fc)
	images := NewOGImageSelector(cfg, fc, fc).Select(doc)
	for _, img := range images {
		if img.ID == 100 {
			t.Errorf("undersized featured image selected: %+v", img)
		}
	}
}

func TestOGImageProtectedPostHasNone(t *testing.T) {
	cfg := testConfig()
	fc := newFakeCatalog()
	post := productFixture(fc)
	post.Password = "secret"

	doc := testDocument(cfg, content.Query{IsSingular: true, Post: post, Page: 1, Paged: 1}, fc)
	if images := NewOGImageSelector(cfg, fc, fc).Select(doc); len(images) != 0 {
		t.Errorf("images = %v, want none for protected post", images)
	}
}

func TestOGImageContentFallback(t *testing.T) {
	cfg := testConfig()
	fc := newFakeCatalog()
	post := &content.Post{
		ID: 60, Slug: "recipe", Type: content.KindPost, Title: "Recipe",
		Content: `<p>Mix it.</p><img src="https://example.com/public/uploads/shake.jpg?ver=2" alt="">`,
		Status:  content.StatusPublish,
	}
	fc.posts[post.ID] = post
	fc.attachments[200] = &content.ImageRef{ID: 200, URL: "https://example.com/public/uploads/shake.jpg", Width: 1200, Height: 800, Mime: "image/jpeg"}

	doc := testDocument(cfg, content.Query{IsSingular: true, Post: post, Page: 1, Paged: 1}, fc)
	images := NewOGImageSelector(cfg, fc, fc).Select(doc)
	if len(images) != 1 || images[0].ID != 200 {
		t.Errorf("images = %v, want content fallback image", images)
	}
}

func TestOGImageTermThumbnail(t *testing.T) {
	cfg := testConfig()
	fc := newFakeCatalog()
	term := &content.Term{ID: 7, Taxonomy: content.TaxProductCategory, Slug: "protein", Name: "Protein", ThumbnailID: 300}
	fc.attachments[300] = &content.ImageRef{ID: 300, URL: "https://example.com/public/uploads/protein-cat.jpg", Width: 600, Height: 600, Mime: "image/jpeg"}

	doc := testDocument(cfg, content.Query{Term: term, Paged: 1}, fc)
	images := NewOGImageSelector(cfg, fc, fc).Select(doc)
	if len(images) != 1 || images[0].ID != 300 {
		t.Errorf("images = %v, want term thumbnail", images)
	}
}

func TestOGImageDefaultFallback(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultOGImage = "https://example.com/public/og-default.jpg"
	fc := newFakeCatalog()
	post := &content.Post{ID: 70, Slug: "bare", Type: content.KindPost, Title: "Bare", Status: content.StatusPublish}
	fc.posts[post.ID] = post

	doc := testDocument(cfg, content.Query{IsSingular: true, Post: post, Page: 1, Paged: 1}, fc)
	images := NewOGImageSelector(cfg, fc, fc).Select(doc)
	if len(images) != 1 || images[0].URL != cfg.DefaultOGImage {
		t.Errorf("images = %v, want configured default", images)
	}
}

func TestOGImageDedupesByURL(t *testing.T) {
	cfg := testConfig()
	fc := newFakeCatalog()
	post := productFixture(fc)
	// Gallery repeats the featured image under a cache-buster query.
	fc.attachments[101].URL = "https://example.com/public/uploads/whey.jpg?ver=5"

	doc := testDocument(cfg, content.Query{IsSingular: true, Post: post, Page: 1, Paged: 1}, fc)
	images := NewOGImageSelector(cfg, fc, fc).Select(doc)
	if len(images) != 1 {
		t.Errorf("len(images) = %d, want 1 after dedupe", len(images))
	}
}
