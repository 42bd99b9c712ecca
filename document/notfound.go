package document

// notFound is the fallback for requests that resolve to nothing.
type notFound struct{}

func (notFound) title() string           { return TitleNotFound }
func (notFound) description() string     { return "" }
func (notFound) robots() Robots          { return Robots{"index": "noindex"} }
func (notFound) canonical() canonicalParts { return canonicalParts{} }
