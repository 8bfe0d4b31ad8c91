// Package dom wraps golang.org/x/net/html with the tree helpers the
// accessibility rules need: id lookup, attribute access, subtree text
// extraction, selector paths, and best-effort source line tracking.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed HTML document plus the lookup indexes built during
// parsing.
type Document struct {
	Root *html.Node

	ids   map[string]*html.Node
	lines map[*html.Node]int
}

// Parse reads and parses an HTML document. x/net/html error-recovers on
// malformed markup, so this only fails on reader errors.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc := &Document{
		Root:  root,
		ids:   make(map[string]*html.Node),
		lines: make(map[*html.Node]int),
	}
	doc.index()
	doc.assignLines(data)
	return doc, nil
}

// ParseString parses an HTML document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// index records the first node carrying each id, matching how browsers
// resolve duplicated ids.
func (d *Document) index() {
	Walk(d.Root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if id, ok := Attr(n, "id"); ok && id != "" {
				if _, seen := d.ids[id]; !seen {
					d.ids[id] = n
				}
			}
		}
		return true
	})
}

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *html.Node {
	return d.ids[id]
}

// Line returns the 1-based source line of an element's start tag, or 0 for
// elements the parser synthesized (html, head, body, tbody, ...).
func (d *Document) Line(n *html.Node) int {
	return d.lines[n]
}

// assignLines maps element nodes to source lines. The tree walker and the
// tokenizer see start tags for the same tag name in the same order, so
// per-tag queues line the two sequences up. Synthesized elements consume no
// queue entry and stay at line 0.
func (d *Document) assignLines(data []byte) {
	positions := tagLines(data)
	cursor := make(map[string]int)

	Walk(d.Root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		queue := positions[n.Data]
		i := cursor[n.Data]
		if i < len(queue) {
			d.lines[n] = queue[i]
			cursor[n.Data] = i + 1
		}
		return true
	})
}

// tagLines tokenizes the raw source and records the line of every start or
// self-closing tag, keyed by tag name.
func tagLines(data []byte) map[string][]int {
	positions := make(map[string][]int)
	z := html.NewTokenizer(bytes.NewReader(data))
	line := 1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return positions
		}
		raw := z.Raw()
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			positions[string(name)] = append(positions[string(name)], line)
		}
		line += bytes.Count(raw, []byte{'\n'})
	}
}

// Walk calls fn for n and every descendant in document order. Returning
// false skips the node's subtree.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Attr returns the value of the named attribute. Attribute names in the
// parsed tree are already lowercased.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or a default when absent.
func AttrOr(n *html.Node, name, def string) string {
	if v, ok := Attr(n, name); ok {
		return v
	}
	return def
}

// HasAttr reports whether the attribute is present, empty or not.
func HasAttr(n *html.Node, name string) bool {
	_, ok := Attr(n, name)
	return ok
}

// IsElement reports whether n is an element with the given tag name.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// FirstChildElement returns the first direct child element with the given
// tag name, or nil.
func FirstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, tag) {
			return c
		}
	}
	return nil
}

// Ancestor returns the nearest ancestor element with the given tag name,
// or nil.
func Ancestor(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if IsElement(p, tag) {
			return p
		}
	}
	return nil
}

// TextContent returns the whitespace-collapsed text of a subtree. Script
// and style contents are excluded.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(node *html.Node) bool {
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return false
		}
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		return true
	})
	return CollapseWhitespace(sb.String())
}

// CollapseWhitespace trims and folds runs of whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Path builds a CSS-like selector path for an element, rooted at the
// nearest id-carrying ancestor or at the document body.
func Path(n *html.Node) string {
	var parts []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if cur.Data == "html" {
			break
		}
		if id, ok := Attr(cur, "id"); ok && id != "" {
			parts = append(parts, fmt.Sprintf("%s#%s", cur.Data, id))
			break
		}
		idx := nthOfType(cur)
		if idx > 1 || hasLaterSibling(cur) {
			parts = append(parts, fmt.Sprintf("%s:nth-of-type(%d)", cur.Data, idx))
		} else {
			parts = append(parts, cur.Data)
		}
	}
	// Reverse into document order.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func nthOfType(n *html.Node) int {
	idx := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && s.Data == n.Data {
			idx++
		}
	}
	return idx
}

func hasLaterSibling(n *html.Node) bool {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.Data == n.Data {
			return true
		}
	}
	return false
}

// Render renders an element back to HTML source, used for violation
// snippets. Long subtrees are truncated by the caller.
func Render(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// StartTag renders just the opening tag of an element.
func StartTag(n *html.Node) string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(n.Data)
	for _, a := range n.Attr {
		sb.WriteString(" ")
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(a.Val)
		sb.WriteString(`"`)
	}
	sb.WriteString(">")
	return sb.String()
}
