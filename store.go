package seo

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nhgweb/seo/content"
)

// Store wraps a SQLite database holding the site catalog: posts, terms,
// products, reviews, attachments and the per-entity metadata overrides.
// It implements content.Source, content.Commerce and content.MetaStore.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'post',
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'publish',
    password TEXT NOT NULL DEFAULT '',
    featured_id INTEGER NOT NULL DEFAULT 0,
    parent_id INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS terms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taxonomy TEXT NOT NULL,
    slug TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    parent INTEGER NOT NULL DEFAULT 0,
    thumbnail_id INTEGER NOT NULL DEFAULT 0,
    UNIQUE (taxonomy, slug)
);
CREATE TABLE IF NOT EXISTS post_terms (
    post_id INTEGER NOT NULL,
    term_id INTEGER NOT NULL,
    is_primary INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (post_id, term_id)
);
CREATE TABLE IF NOT EXISTS products (
    post_id INTEGER PRIMARY KEY,
    kind TEXT NOT NULL DEFAULT 'simple',
    price TEXT NOT NULL DEFAULT '',
    on_sale INTEGER NOT NULL DEFAULT 0,
    sale_end TEXT NOT NULL DEFAULT '',
    in_stock INTEGER NOT NULL DEFAULT 1,
    sku TEXT NOT NULL DEFAULT '',
    gtin TEXT NOT NULL DEFAULT '',
    weight TEXT NOT NULL DEFAULT '',
    height TEXT NOT NULL DEFAULT '',
    width TEXT NOT NULL DEFAULT '',
    length TEXT NOT NULL DEFAULT '',
    rating_avg TEXT NOT NULL DEFAULT '',
    rating_count INTEGER NOT NULL DEFAULT 0,
    review_count INTEGER NOT NULL DEFAULT 0,
    gallery TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS variations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    price TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    parent INTEGER NOT NULL DEFAULT 0,
    author TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    rating INTEGER NOT NULL DEFAULT 0,
    approved INTEGER NOT NULL DEFAULT 1,
    date TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS attachments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL DEFAULT 0,
    url TEXT NOT NULL UNIQUE,
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    alt TEXT NOT NULL DEFAULT '',
    mime TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS meta (
    kind TEXT NOT NULL,
    entity_id INTEGER NOT NULL,
    field TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (kind, entity_id, field)
);
`)
	return err
}

const postColumns = `id, slug, type, title, excerpt, content, date, status, password, featured_id, parent_id`

func scanPost(row interface{ Scan(...any) error }) (*content.Post, error) {
	var p content.Post
	err := row.Scan(&p.ID, &p.Slug, &p.Type, &p.Title, &p.Excerpt, &p.Content,
		&p.Date, &p.Status, &p.Password, &p.FeaturedID, &p.ParentID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PostByID returns a post by id, nil when absent.
func (s *Store) PostByID(id int64) (*content.Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// PostBySlug returns a post by slug and type, nil when absent.
func (s *Store) PostBySlug(typ, slug string) (*content.Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE type = ? AND slug = ?`, typ, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ListPosts returns one archive page of published posts of the given type,
// newest first, along with the total page count for the query.
func (s *Store) ListPosts(typ string, page, perPage int) ([]content.Post, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE type = ? AND status = ?`,
		typ, content.StatusPublish).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.Query(`SELECT `+postColumns+` FROM posts WHERE type = ? AND status = ? ORDER BY date DESC LIMIT ? OFFSET ?`,
		typ, content.StatusPublish, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	pages := (total + perPage - 1) / perPage
	return posts, pages, nil
}

// ListPostsByTerm returns one archive page of published posts attached to
// a term, newest first, along with the total page count.
func (s *Store) ListPostsByTerm(termID int64, page, perPage int) ([]content.Post, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p JOIN post_terms pt ON pt.post_id = p.id
		WHERE pt.term_id = ? AND p.status = ?`, termID, content.StatusPublish).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.Query(`SELECT p.id, p.slug, p.type, p.title, p.excerpt, p.content, p.date, p.status, p.password, p.featured_id, p.parent_id
		FROM posts p JOIN post_terms pt ON pt.post_id = p.id
		WHERE pt.term_id = ? AND p.status = ? ORDER BY p.date DESC LIMIT ? OFFSET ?`,
		termID, content.StatusPublish, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	pages := (total + perPage - 1) / perPage
	return posts, pages, nil
}

// SearchPosts returns one page of published posts matching the query in
// title or body, newest first, along with the total page count.
func (s *Store) SearchPosts(query string, page, perPage int) ([]content.Post, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	pattern := "%" + query + "%"
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE status = ? AND (title LIKE ? OR content LIKE ?)`,
		content.StatusPublish, pattern, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.Query(`SELECT `+postColumns+` FROM posts WHERE status = ? AND (title LIKE ? OR content LIKE ?)
		ORDER BY date DESC LIMIT ? OFFSET ?`,
		content.StatusPublish, pattern, pattern, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	pages := (total + perPage - 1) / perPage
	return posts, pages, nil
}

// ListPublishedPosts returns every published post ordered by date
// descending, used by the sitemap and feed builders.
func (s *Store) ListPublishedPosts() ([]content.Post, error) {
	rows, err := s.db.Query(`SELECT `+postColumns+` FROM posts WHERE status = ? ORDER BY date DESC`, content.StatusPublish)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

const termColumns = `id, taxonomy, slug, name, description, parent, thumbnail_id`

func scanTerm(row interface{ Scan(...any) error }) (*content.Term, error) {
	var t content.Term
	err := row.Scan(&t.ID, &t.Taxonomy, &t.Slug, &t.Name, &t.Description, &t.Parent, &t.ThumbnailID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TermByID returns a term by id, nil when absent.
func (s *Store) TermByID(id int64) (*content.Term, error) {
	t, err := scanTerm(s.db.QueryRow(`SELECT `+termColumns+` FROM terms WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// TermBySlug returns a term by taxonomy and slug, nil when absent.
func (s *Store) TermBySlug(taxonomy, slug string) (*content.Term, error) {
	t, err := scanTerm(s.db.QueryRow(`SELECT `+termColumns+` FROM terms WHERE taxonomy = ? AND slug = ?`, taxonomy, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// ListTerms returns all terms of a taxonomy ordered by name.
func (s *Store) ListTerms(taxonomy string) ([]content.Term, error) {
	rows, err := s.db.Query(`SELECT `+termColumns+` FROM terms WHERE taxonomy = ? ORDER BY name`, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []content.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, *t)
	}
	return terms, rows.Err()
}

// TermsForPost returns the terms of the given taxonomy attached to a post,
// the designated primary term first.
func (s *Store) TermsForPost(postID int64, taxonomy string) ([]content.Term, error) {
	rows, err := s.db.Query(`SELECT t.id, t.taxonomy, t.slug, t.name, t.description, t.parent, t.thumbnail_id
		FROM terms t JOIN post_terms pt ON pt.term_id = t.id
		WHERE pt.post_id = ? AND t.taxonomy = ?
		ORDER BY pt.is_primary DESC, t.name`, postID, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []content.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, *t)
	}
	return terms, rows.Err()
}

// TermAncestors walks the parent chain of a term and returns the ancestors
// root first.
func (s *Store) TermAncestors(termID int64) ([]content.Term, error) {
	var ancestors []content.Term
	t, err := s.TermByID(termID)
	if err != nil || t == nil {
		return nil, err
	}
	// A parent cycle in bad data would loop forever without a bound.
	for depth := 0; t.Parent != 0 && depth < 32; depth++ {
		t, err = s.TermByID(t.Parent)
		if err != nil {
			return nil, err
		}
		if t == nil {
			break
		}
		ancestors = append([]content.Term{*t}, ancestors...)
	}
	return ancestors, nil
}

// AttachPostTerm links a post to a term, optionally marking it the primary
// term of its taxonomy for that post.
func (s *Store) AttachPostTerm(postID, termID int64, primary bool) error {
	p := 0
	if primary {
		p = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO post_terms (post_id, term_id, is_primary) VALUES (?, ?, ?)`,
		postID, termID, p)
	return err
}

// ApprovedReviews returns up to limit approved top-level reviews for a
// post, most recent first.
func (s *Store) ApprovedReviews(postID int64, limit int) ([]content.Review, error) {
	rows, err := s.db.Query(`SELECT id, post_id, author, body, rating, date FROM reviews
		WHERE post_id = ? AND approved = 1 AND parent = 0 ORDER BY date DESC LIMIT ?`, postID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []content.Review
	for rows.Next() {
		var r content.Review
		if err := rows.Scan(&r.ID, &r.PostID, &r.Author, &r.Body, &r.Rating, &r.Date); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func scanAttachment(row interface{ Scan(...any) error }) (*content.ImageRef, error) {
	var ref content.ImageRef
	err := row.Scan(&ref.ID, &ref.PostID, &ref.URL, &ref.Width, &ref.Height, &ref.Alt, &ref.Mime)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// AttachmentByID returns an attachment by id, nil when absent.
func (s *Store) AttachmentByID(id int64) (*content.ImageRef, error) {
	ref, err := scanAttachment(s.db.QueryRow(`SELECT id, post_id, url, width, height, alt, mime FROM attachments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return ref, err
}

// AttachmentByURL resolves an image URL back to its attachment record.
// Query strings are ignored, matching how the URLs appear in post bodies.
func (s *Store) AttachmentByURL(url string) (*content.ImageRef, error) {
	url, _, _ = strings.Cut(url, "?")
	ref, err := scanAttachment(s.db.QueryRow(`SELECT id, post_id, url, width, height, alt, mime FROM attachments WHERE url = ?`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return ref, err
}

// SaveAttachment upserts an attachment record and returns its id.
func (s *Store) SaveAttachment(ref content.ImageRef) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO attachments (post_id, url, width, height, alt, mime) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET post_id = excluded.post_id, width = excluded.width, height = excluded.height, alt = excluded.alt, mime = excluded.mime`,
		ref.PostID, ref.URL, ref.Width, ref.Height, ref.Alt, ref.Mime)
	if err != nil {
		return 0, err
	}
	if ref.ID != 0 {
		return ref.ID, nil
	}
	return res.LastInsertId()
}

// ProductByPostID returns the commerce record of a product post, nil when
// absent.
func (s *Store) ProductByPostID(postID int64) (*content.Product, error) {
	var p content.Product
	var onSale, inStock int
	var gallery string
	err := s.db.QueryRow(`SELECT post_id, kind, price, on_sale, sale_end, in_stock, sku, gtin,
		weight, height, width, length, rating_avg, rating_count, review_count, gallery
		FROM products WHERE post_id = ?`, postID).
		Scan(&p.PostID, &p.Kind, &p.Price, &onSale, &p.SaleEnd, &inStock, &p.SKU, &p.GTIN,
			&p.Weight, &p.Height, &p.Width, &p.Length, &p.RatingAvg, &p.RatingCount, &p.ReviewCount, &gallery)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.OnSale = onSale == 1
	p.InStock = inStock == 1
	p.GalleryIDs = parseIDList(gallery)
	return &p, nil
}

// VariationPrices returns the price spread across a variable product's
// variations. Prices are stored as decimal strings and compared
// numerically, with the original strings returned.
func (s *Store) VariationPrices(postID int64) (content.PriceRange, error) {
	rows, err := s.db.Query(`SELECT price FROM variations WHERE post_id = ? AND price != ''`, postID)
	if err != nil {
		return content.PriceRange{}, err
	}
	defer rows.Close()

	var r content.PriceRange
	var low, high float64
	for rows.Next() {
		var price string
		if err := rows.Scan(&price); err != nil {
			return content.PriceRange{}, err
		}
		v, err := strconv.ParseFloat(price, 64)
		if err != nil {
			continue
		}
		if r.Count == 0 || v < low {
			low, r.Low = v, price
		}
		if r.Count == 0 || v > high {
			high, r.High = v, price
		}
		r.Count++
	}
	return r, rows.Err()
}

// GetMeta returns a metadata override, reporting whether a non-empty value
// is stored.
func (s *Store) GetMeta(kind string, id int64, field string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE kind = ? AND entity_id = ? AND field = ?`,
		kind, id, field).Scan(&value)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// SetMeta upserts a metadata override. An empty value deletes it.
func (s *Store) SetMeta(kind string, id int64, field, value string) error {
	if value == "" {
		return s.DeleteMeta(kind, id, field)
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta (kind, entity_id, field, value) VALUES (?, ?, ?, ?)`,
		kind, id, field, value)
	return err
}

// DeleteMeta removes a metadata override.
func (s *Store) DeleteMeta(kind string, id int64, field string) error {
	_, err := s.db.Exec(`DELETE FROM meta WHERE kind = ? AND entity_id = ? AND field = ?`, kind, id, field)
	return err
}

// SavePost upserts a post and returns its id.
func (s *Store) SavePost(p content.Post) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO posts (slug, type, title, excerpt, content, date, status, password, featured_id, parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET type = excluded.type, title = excluded.title, excerpt = excluded.excerpt,
		content = excluded.content, date = excluded.date, status = excluded.status, password = excluded.password,
		featured_id = excluded.featured_id, parent_id = excluded.parent_id`,
		p.Slug, p.Type, p.Title, p.Excerpt, p.Content, p.Date, p.Status, p.Password, p.FeaturedID, p.ParentID)
	if err != nil {
		return 0, err
	}
	if p.ID != 0 {
		return p.ID, nil
	}
	return res.LastInsertId()
}

// SaveTerm upserts a term and returns its id.
func (s *Store) SaveTerm(t content.Term) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO terms (taxonomy, slug, name, description, parent, thumbnail_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(taxonomy, slug) DO UPDATE SET name = excluded.name, description = excluded.description,
		parent = excluded.parent, thumbnail_id = excluded.thumbnail_id`,
		t.Taxonomy, t.Slug, t.Name, t.Description, t.Parent, t.ThumbnailID)
	if err != nil {
		return 0, err
	}
	if t.ID != 0 {
		return t.ID, nil
	}
	return res.LastInsertId()
}

// SaveProduct upserts the commerce record of a product post.
func (s *Store) SaveProduct(p content.Product) error {
	onSale, inStock := 0, 0
	if p.OnSale {
		onSale = 1
	}
	if p.InStock {
		inStock = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO products (post_id, kind, price, on_sale, sale_end, in_stock, sku, gtin,
		weight, height, width, length, rating_avg, rating_count, review_count, gallery)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PostID, p.Kind, p.Price, onSale, p.SaleEnd, inStock, p.SKU, p.GTIN,
		p.Weight, p.Height, p.Width, p.Length, p.RatingAvg, p.RatingCount, p.ReviewCount, joinIDList(p.GalleryIDs))
	return err
}

// SaveVariation records one variation price for a variable product.
func (s *Store) SaveVariation(postID int64, price string) error {
	_, err := s.db.Exec(`INSERT INTO variations (post_id, price) VALUES (?, ?)`, postID, price)
	return err
}

// SaveReview records a product review.
func (s *Store) SaveReview(r content.Review, approved bool, parent int64) error {
	a := 0
	if approved {
		a = 1
	}
	_, err := s.db.Exec(`INSERT INTO reviews (post_id, parent, author, body, rating, approved, date) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.PostID, parent, r.Author, r.Body, r.Rating, a, r.Date)
	return err
}

// parseIDList splits a comma-delimited id string (e.g. "3,7,9") into a slice.
func parseIDList(s string) []int64 {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func joinIDList(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
