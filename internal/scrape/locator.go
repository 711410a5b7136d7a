// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape locates values in HTML pages through prioritized lists of
// locators. Each field of a scraped page has several candidate locators; the
// first one that yields non-empty text wins, and exhausting the list is a
// normal outcome that leaves the field at its default.
package scrape

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/pdiddy/litreview/internal/extract"
)

// Locator finds one node in a parsed document, or nil.
type Locator interface {
	Locate(doc *html.Node) *html.Node
	fmt.Stringer
}

// First tries locs in order and returns the first located node whose text
// is non-empty, along with its index. It returns (nil, -1) when every
// locator fails.
func First(doc *html.Node, locs []Locator) (*html.Node, int) {
	for i, l := range locs {
		n := l.Locate(doc)
		if n != nil && extract.NodeText(n) != "" {
			return n, i
		}
	}
	return nil, -1
}

// FirstText is First followed by text extraction. ok is false when the list
// is exhausted.
func FirstText(doc *html.Node, locs []Locator) (text string, ok bool) {
	n, _ := First(doc, locs)
	if n == nil {
		return "", false
	}
	return extract.NodeText(n), true
}

// CSS locates the first element matching a CSS selector.
type CSS struct {
	sel  cascadia.Matcher
	expr string
}

// MustCSS compiles expr and panics on a malformed selector. Selectors are
// package-level constants, so a panic is a programming error.
func MustCSS(expr string) CSS {
	return CSS{sel: cascadia.MustCompile(expr), expr: expr}
}

func (c CSS) Locate(doc *html.Node) *html.Node {
	return cascadia.Query(doc, c.sel)
}

// All returns every element matching the selector in document order.
func (c CSS) All(doc *html.Node) []*html.Node {
	return cascadia.QueryAll(doc, c.sel)
}

func (c CSS) String() string { return c.expr }

// Containing locates the first element with the given tag whose text
// contains Text.
type Containing struct {
	Tag  string
	Text string
}

func (c Containing) Locate(doc *html.Node) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == c.Tag && strings.Contains(extract.NodeText(n), c.Text) {
			found = n
			return false
		}
		return true
	})
	return found
}

func (c Containing) String() string { return fmt.Sprintf("%s:contains(%q)", c.Tag, c.Text) }

// LabelValue locates the value element that follows a label text node whose
// trimmed content equals Label. When the label's parent is a table header
// cell, the value is the next <td>; otherwise it is the next <div> carrying
// ValueClass, falling back to the parent's next sibling <div>.
type LabelValue struct {
	Label      string
	ValueClass string
}

func (lv LabelValue) Locate(doc *html.Node) *html.Node {
	var label *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == lv.Label {
			label = n
			return false
		}
		return true
	})
	if label == nil || label.Parent == nil {
		return nil
	}
	parent := label.Parent
	if parent.Type == html.ElementNode && parent.Data == "th" {
		return nextElement(parent, func(n *html.Node) bool { return n.Data == "td" })
	}
	if v := nextElement(parent, func(n *html.Node) bool {
		return n.Data == "div" && hasClass(n, lv.ValueClass)
	}); v != nil {
		return v
	}
	for s := parent.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.Data == "div" {
			return s
		}
	}
	return nil
}

func (lv LabelValue) String() string { return fmt.Sprintf("label(%q)", lv.Label) }

// HeaderCell locates the <td> following a <th> whose text equals Label.
type HeaderCell struct {
	Label string
}

func (h HeaderCell) Locate(doc *html.Node) *html.Node {
	var th *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "th" && extract.NodeText(n) == h.Label {
			th = n
			return false
		}
		return true
	})
	if th == nil {
		return nil
	}
	return nextElement(th, func(n *html.Node) bool { return n.Data == "td" })
}

func (h HeaderCell) String() string { return fmt.Sprintf("th(%q)+td", h.Label) }

// Attr returns the value of the named attribute of n.
func Attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// walk visits nodes in document order until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// nextElement returns the first element after n's subtree, in document
// order, that satisfies match.
func nextElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		for s := cur.NextSibling; s != nil; s = s.NextSibling {
			var found *html.Node
			walk(s, func(x *html.Node) bool {
				if x.Type == html.ElementNode && match(x) {
					found = x
					return false
				}
				return true
			})
			if found != nil {
				return found
			}
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	if class == "" {
		return false
	}
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
