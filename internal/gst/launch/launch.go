// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package launch parses gst-launch style pipeline descriptions:
//
//	videotestsrc num-buffers=10 ! video/x-raw,width=320 ! appsink name=out appsrc
//
// Elements joined by "!" are linked, key=value tokens set properties on the
// preceding element, tokens containing a media type are caps filters, and an
// element not preceded by "!" starts a new, unlinked chain.
package launch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax classifies every parse failure.
var ErrSyntax = errors.New("invalid pipeline description")

// SyntaxError reports where a description stopped making sense.
type SyntaxError struct {
	Token int // zero-based token index, -1 for whole-description problems
	Msg   string
}

func (e *SyntaxError) Error() string {
	if e.Token < 0 {
		return fmt.Sprintf("%s: %s", ErrSyntax, e.Msg)
	}
	return fmt.Sprintf("%s: token %d: %s", ErrSyntax, e.Token, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// CapsFilterFactory is the factory used for inline caps.
const CapsFilterFactory = "capsfilter"

// Element is one element of the description.
type Element struct {
	Factory    string
	Name       string
	Properties map[string]string
}

// Prop returns a property value.
func (e Element) Prop(key string) (string, bool) {
	v, ok := e.Properties[key]
	return v, ok
}

// IntProp returns an integer property, or def when unset or malformed.
func (e Element) IntProp(key string, def int) int {
	v, ok := e.Properties[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Link joins the source pad of From to the sink pad of To (element indexes).
type Link struct {
	From int
	To   int
}

// Graph is a parsed description.
type Graph struct {
	Elements []Element
	Links    []Link
}

// Parse parses description into a Graph.
func Parse(description string) (*Graph, error) {
	tokens, err := tokenize(description)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &SyntaxError{Token: -1, Msg: "empty description"}
	}

	g := &Graph{}
	counters := make(map[string]int)
	names := make(map[string]int)
	current := -1
	linkPending := false

	// Generated names skip over names already taken explicitly.
	addElement := func(factory string) {
		var name string
		for {
			name = fmt.Sprintf("%s%d", factory, counters[factory])
			counters[factory]++
			if _, taken := names[name]; !taken {
				break
			}
		}
		g.Elements = append(g.Elements, Element{
			Factory:    factory,
			Name:       name,
			Properties: make(map[string]string),
		})
		next := len(g.Elements) - 1
		names[name] = next
		if linkPending {
			g.Links = append(g.Links, Link{From: current, To: next})
			linkPending = false
		}
		current = next
	}

	for i, tok := range tokens {
		switch {
		case tok.text == "!" && !tok.quoted:
			if current < 0 || linkPending {
				return nil, &SyntaxError{Token: i, Msg: "link without source element"}
			}
			linkPending = true

		case isCaps(tok.text):
			addElement(CapsFilterFactory)
			g.Elements[current].Properties["caps"] = tok.text

		case strings.Contains(tok.text, "="):
			if current < 0 {
				return nil, &SyntaxError{Token: i, Msg: "property without element"}
			}
			if linkPending {
				return nil, &SyntaxError{Token: i, Msg: "property after link"}
			}
			key, value, _ := strings.Cut(tok.text, "=")
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, &SyntaxError{Token: i, Msg: "empty property name"}
			}
			value = unquote(value)
			el := &g.Elements[current]
			if key == "name" {
				if value == "" {
					return nil, &SyntaxError{Token: i, Msg: "empty element name"}
				}
				if other, dup := names[value]; dup && other != current {
					return nil, &SyntaxError{Token: i, Msg: fmt.Sprintf("duplicate element name %q", value)}
				}
				delete(names, el.Name)
				el.Name = value
				names[value] = current
			}
			el.Properties[key] = value

		default:
			if !validFactory(tok.text) {
				return nil, &SyntaxError{Token: i, Msg: fmt.Sprintf("unsupported token %q", tok.text)}
			}
			addElement(tok.text)
		}
	}

	if linkPending {
		return nil, &SyntaxError{Token: len(tokens) - 1, Msg: "link without sink element"}
	}
	return g, nil
}

// ByFactory returns the indexes of all elements made by factory.
func (g *Graph) ByFactory(factory string) []int {
	var out []int
	for i, el := range g.Elements {
		if el.Factory == factory {
			out = append(out, i)
		}
	}
	return out
}

// ByName returns the index of the element called name.
func (g *Graph) ByName(name string) (int, bool) {
	for i, el := range g.Elements {
		if el.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Upstream returns the element linked into i.
func (g *Graph) Upstream(i int) (int, bool) {
	for _, l := range g.Links {
		if l.To == i {
			return l.From, true
		}
	}
	return -1, false
}

// Downstream returns the first element i links to.
func (g *Graph) Downstream(i int) (int, bool) {
	for _, l := range g.Links {
		if l.From == i {
			return l.To, true
		}
	}
	return -1, false
}

// Head walks upstream from i to the first element of its chain.
func (g *Graph) Head(i int) int {
	seen := make(map[int]bool)
	for !seen[i] {
		seen[i] = true
		up, ok := g.Upstream(i)
		if !ok {
			return i
		}
		i = up
	}
	return i
}

// Tail walks downstream from i to the last element of its chain.
func (g *Graph) Tail(i int) int {
	seen := make(map[int]bool)
	for !seen[i] {
		seen[i] = true
		down, ok := g.Downstream(i)
		if !ok {
			return i
		}
		i = down
	}
	return i
}

// String renders the graph back into description form.
func (g *Graph) String() string {
	var b strings.Builder
	for i, el := range g.Elements {
		if i > 0 {
			if up, ok := g.Upstream(i); ok && up == i-1 {
				b.WriteString(" ! ")
			} else {
				b.WriteString(" ")
			}
		}
		if el.Factory == CapsFilterFactory {
			if caps, ok := el.Properties["caps"]; ok && len(el.Properties) == 1 {
				b.WriteString(caps)
				continue
			}
		}
		b.WriteString(el.Factory)
		for _, k := range sortedKeys(el.Properties) {
			v := el.Properties[k]
			if strings.ContainsAny(v, " \t!") {
				v = strconv.Quote(v)
			}
			fmt.Fprintf(&b, " %s=%s", k, v)
		}
	}
	return b.String()
}
