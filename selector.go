package riftplot

import (
	"fmt"
	"strings"
)

// selector matches nodes. A selector string is a comma-separated list of
// simple selectors: "*" (every node), "type" (e.g. "cartesian"), "#id",
// ".class", or a type followed by an id or class ("line.red", "point#p").
type selector []simpleSelector

type simpleSelector struct {
	any   bool
	typ   NodeType
	byTyp bool
	id    string
	class string
}

// parseSelector parses a selector string.
func parseSelector(s string) (selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadSelector)
	}
	var sel selector
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		ss, err := parseSimpleSelector(part)
		if err != nil {
			return nil, err
		}
		sel = append(sel, ss)
	}
	return sel, nil
}

func parseSimpleSelector(part string) (simpleSelector, error) {
	if part == "*" {
		return simpleSelector{any: true}, nil
	}
	if part == "" {
		return simpleSelector{}, fmt.Errorf("%w: empty term", ErrBadSelector)
	}
	var ss simpleSelector
	typ := part
	if i := strings.IndexAny(part, "#."); i >= 0 {
		typ = part[:i]
		rest := part[i+1:]
		if rest == "" {
			return ss, fmt.Errorf("%w: %q", ErrBadSelector, part)
		}
		if part[i] == '#' {
			ss.id = rest
		} else {
			ss.class = rest
		}
	}
	if typ != "" {
		t, ok := parseNodeType(typ)
		if !ok || t == NodeTypeBase {
			return ss, fmt.Errorf("%w: unknown node type %q", ErrBadSelector, typ)
		}
		ss.typ = t
		ss.byTyp = true
	}
	return ss, nil
}

// matches reports whether n is selected. The base container never matches.
func (sel selector) matches(n *Node) bool {
	if n.Type == NodeTypeBase {
		return false
	}
	for _, ss := range sel {
		if ss.matches(n) {
			return true
		}
	}
	return false
}

func (ss simpleSelector) matches(n *Node) bool {
	if ss.any {
		return true
	}
	if ss.byTyp && n.Type != ss.typ {
		return false
	}
	if ss.id != "" && n.Name != ss.id {
		return false
	}
	if ss.class != "" && !n.HasClass(ss.class) {
		return false
	}
	return true
}
