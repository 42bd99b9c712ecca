package document

import "strings"

// Robots is an ordered robots directive mapping. After validation it always
// carries the index and follow keys plus zero or more of the optional
// allow-listed keys; unrecognized keys never survive.
type Robots map[string]string

// robotsOrder fixes the emission order of directives independent of map
// iteration.
var robotsOrder = []string{"index", "follow", "noarchive", "noimageindex", "nosnippet"}

var robotsAllowed = map[string]struct{}{
	"index":        {},
	"follow":       {},
	"noarchive":    {},
	"noimageindex": {},
	"nosnippet":    {},
}

func (r Robots) clone() Robots {
	c := make(Robots, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// String joins the directive values in canonical order, comma separated.
func (r Robots) String() string {
	var parts []string
	for _, key := range robotsOrder {
		if v, ok := r[key]; ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// NoIndex reports whether indexing is disabled.
func (r Robots) NoIndex() bool {
	return r["index"] == "noindex"
}

// ParseRobots builds a directive mapping from a comma separated list such
// as "noindex, nofollow, noarchive". Directives keep their key so a later
// value for the same axis wins.
func ParseRobots(s string) Robots {
	r := Robots{}
	for _, tok := range strings.Split(s, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		switch tok {
		case "":
		case "index", "noindex":
			r["index"] = tok
		case "follow", "nofollow":
			r["follow"] = tok
		default:
			r[tok] = tok
		}
	}
	return r
}

// ValidateRobots intersects r with the allow-list and defaults the index
// and follow directives back in when absent. A nil or empty input yields
// the index/follow defaults.
func ValidateRobots(r Robots) Robots {
	if len(r) == 0 {
		return Robots{"index": "index", "follow": "follow"}
	}
	out := make(Robots, len(r))
	for k, v := range r {
		if _, ok := robotsAllowed[k]; ok {
			out[k] = v
		}
	}
	if _, ok := out["index"]; !ok {
		out["index"] = "index"
	}
	if _, ok := out["follow"]; !ok {
		out["follow"] = "follow"
	}
	return out
}
