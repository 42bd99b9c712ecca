package seo

import (
	"bytes"
	"encoding/json"
)

// Node is a JSON-LD object fragment. Properties marshal in insertion
// order, so the emitted markup is stable regardless of map iteration.
type Node struct {
	keys  []string
	props map[string]any
}

// NewNode returns a node with its @type property already set.
func NewNode(typ string) *Node {
	n := &Node{props: make(map[string]any)}
	n.Set("@type", typ)
	return n
}

// Set adds or replaces a property. First insertion fixes its position.
func (n *Node) Set(key string, value any) {
	if _, ok := n.props[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.props[key] = value
}

// Get returns a property value.
func (n *Node) Get(key string) (any, bool) {
	v, ok := n.props[key]
	return v, ok
}

// Has reports whether a property is set.
func (n *Node) Has(key string) bool {
	_, ok := n.props[key]
	return ok
}

// Type returns the node's @type, or "".
func (n *Node) Type() string {
	t, _ := n.props["@type"].(string)
	return t
}

// MarshalJSON emits the properties in insertion order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(n.props[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Graph collects the structured-data nodes for one page and renders them
// as a single application/ld+json payload.
type Graph struct {
	nodes []*Node
}

// Add appends a node to the graph. Nodes without a @type are rejected.
func (g *Graph) Add(n *Node) bool {
	if n == nil || n.Type() == "" {
		return false
	}
	g.nodes = append(g.nodes, n)
	return true
}

// Empty reports whether any node was collected.
func (g *Graph) Empty() bool {
	return len(g.nodes) == 0
}

// MarshalJSON wraps the collected nodes in a schema.org @graph envelope.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"@context": "https://schema.org/",
		"@graph":   g.nodes,
	})
}

// WebSiteNode describes the site itself for search engines.
func WebSiteNode(cfg SiteConfig) *Node {
	n := NewNode("WebSite")
	n.Set("name", cfg.Name)
	n.Set("url", BuildURL(cfg.URL))
	if cfg.Description != "" {
		n.Set("description", cfg.Description)
	}
	return n
}

// Crumb is one entry of a breadcrumb trail.
type Crumb struct {
	Name string
	URL  string
}

// BreadcrumbNode renders a trail as a BreadcrumbList with the home crumb
// prepended. Crumbs without a URL point at currentURL.
func BreadcrumbNode(cfg SiteConfig, crumbs []Crumb, currentURL string) *Node {
	if len(crumbs) == 0 {
		return nil
	}
	trail := make([]Crumb, 0, len(crumbs)+1)
	trail = append(trail, Crumb{Name: "Home", URL: BuildURL(cfg.URL)})
	trail = append(trail, crumbs...)

	items := make([]*Node, 0, len(trail))
	for i, crumb := range trail {
		item := NewNode("ListItem")
		item.Set("position", i+1)
		entity := map[string]string{"name": crumb.Name}
		if crumb.URL != "" {
			entity["@id"] = crumb.URL
		} else if currentURL != "" {
			entity["@id"] = currentURL
		}
		item.Set("item", entity)
		items = append(items, item)
	}

	n := NewNode("BreadcrumbList")
	n.Set("itemListElement", items)
	return n
}
