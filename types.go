package seo

// MetaForm carries one entity's metadata overrides into the admin editor
// template and back.
type MetaForm struct {
	Kind        string // "post" or "term"
	ID          int64
	EntityLabel string // post title or term name, display only

	Title       string
	Description string
	Robots      string
	Canonical   string
}
