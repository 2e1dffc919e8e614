// internal/dom/snapshot.go
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Snapshot is a parsed, immutable view of the host page's DOM at one instant.
// The host application re-renders aggressively, so snapshots are never cached
// across reconciliation ticks; every tick re-parses the current markup.
type Snapshot struct {
	root *html.Node
}

// Element wraps a single element node inside a Snapshot.
type Element struct {
	node *html.Node
}

// Parse reads an HTML document into a Snapshot.
func Parse(r io.Reader) (*Snapshot, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DOM snapshot: %w", err)
	}
	return &Snapshot{root: root}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup string) (*Snapshot, error) {
	return Parse(strings.NewReader(markup))
}

// Walk visits every element node in document order. Returning false from the
// visitor stops the walk.
func (s *Snapshot) Walk(visit func(el Element) bool) {
	if s == nil || s.root == nil {
		return
	}
	walk(s.root, visit)
}

func walk(n *html.Node, visit func(el Element) bool) bool {
	if n.Type == html.ElementNode {
		if !visit(Element{node: n}) {
			return false
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// FindAll returns, in document order, every element for which match returns true.
func (s *Snapshot) FindAll(match func(el Element) bool) []Element {
	var out []Element
	s.Walk(func(el Element) bool {
		if match(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// First returns the first element in document order matching the predicate.
func (s *Snapshot) First(match func(el Element) bool) (Element, bool) {
	var found Element
	ok := false
	s.Walk(func(el Element) bool {
		if match(el) {
			found = el
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// ByID returns the element carrying the given id attribute.
func (s *Snapshot) ByID(id string) (Element, bool) {
	return s.First(func(el Element) bool { return el.Attr("id") == id })
}

// HasID reports whether any element carries the given id attribute. Injection
// routines use this as their check-before-insert guard.
func (s *Snapshot) HasID(id string) bool {
	_, ok := s.ByID(id)
	return ok
}

// IsZero reports whether the element is the zero value (no underlying node).
func (e Element) IsZero() bool { return e.node == nil }

// Tag returns the lowercase tag name.
func (e Element) Tag() string {
	if e.node == nil {
		return ""
	}
	return strings.ToLower(e.node.Data)
}

// Attr returns the value of the named attribute, or "" when absent. Missing
// attributes are never an error; predicate contracts treat them as non-matching.
func (e Element) Attr(name string) string {
	v, _ := e.LookupAttr(name)
	return v
}

// LookupAttr returns the attribute value and whether the attribute is present.
func (e Element) LookupAttr(name string) (string, bool) {
	if e.node == nil {
		return "", false
	}
	for _, a := range e.node.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether the element's class list contains the given class.
func (e Element) HasClass(class string) bool {
	for _, c := range strings.Fields(e.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Text returns the element's concatenated text content with surrounding
// whitespace collapsed, mirroring what a user reads on the rendered control.
func (e Element) Text() string {
	if e.node == nil {
		return ""
	}
	var b strings.Builder
	collectText(e.node, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// Parent returns the closest element ancestor.
func (e Element) Parent() (Element, bool) {
	if e.node == nil {
		return Element{}, false
	}
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return Element{node: p}, true
		}
	}
	return Element{}, false
}

// Closest walks up the ancestor chain (starting at the element itself) and
// returns the first element matching the predicate.
func (e Element) Closest(match func(el Element) bool) (Element, bool) {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		el := Element{node: n}
		if match(el) {
			return el, true
		}
	}
	return Element{}, false
}

// Descendants visits every element below this one in document order.
func (e Element) Descendants(visit func(el Element) bool) {
	if e.node == nil {
		return
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return
		}
	}
}

// FindAll returns every descendant element matching the predicate.
func (e Element) FindAll(match func(el Element) bool) []Element {
	var out []Element
	e.Descendants(func(el Element) bool {
		if match(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// First returns the first descendant element matching the predicate.
func (e Element) First(match func(el Element) bool) (Element, bool) {
	var found Element
	ok := false
	e.Descendants(func(el Element) bool {
		if match(el) {
			found = el
			ok = true
			return false
		}
		return true
	})
	return found, ok
}
