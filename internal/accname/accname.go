// Package accname computes the accessible name of an element: the text
// label assistive technology announces for it. It implements the subset of
// the WAI-ARIA accessible name computation that holds without a CSS
// cascade: aria-labelledby, aria-label, host-language labeling features,
// name-from-content, and the title/placeholder fallbacks.
package accname

import (
	"strings"

	"golang.org/x/net/html"

	"a11ylint/internal/aria"
	"a11ylint/internal/dom"
)

// Compute returns the accessible name of an element, whitespace-collapsed.
// An empty string means the element exposes no name.
func Compute(doc *dom.Document, n *html.Node) string {
	c := computer{doc: doc, visited: make(map[*html.Node]bool)}
	return c.name(n, false)
}

type computer struct {
	doc     *dom.Document
	visited map[*html.Node]bool
}

// name runs the computation for one element. viaLabelledBy is true when the
// element was reached through an aria-labelledby reference, which both
// bypasses the hidden check and disables further labelledby traversal.
func (c *computer) name(n *html.Node, viaLabelledBy bool) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	if c.visited[n] {
		return ""
	}
	c.visited[n] = true
	defer delete(c.visited, n)

	// Step A: hidden elements have no name unless referenced.
	if !viaLabelledBy && dom.IsHidden(n) {
		return ""
	}

	// Step B: aria-labelledby, highest precedence, no nesting.
	if !viaLabelledBy {
		if refs, ok := dom.Attr(n, "aria-labelledby"); ok {
			if name := c.fromLabelledBy(refs); name != "" {
				return name
			}
		}
	}

	// Step C: aria-label. Whitespace-only values are ignored.
	if label, ok := dom.Attr(n, "aria-label"); ok {
		if name := dom.CollapseWhitespace(label); name != "" {
			return name
		}
	}

	// Step D: host-language labeling.
	if name := c.fromHostLanguage(n); name != "" {
		return name
	}

	// Step E: name from content, when the role allows it or when the
	// element was reached via labelledby (referenced elements always
	// contribute their content).
	role := aria.ResolveRole(n)
	if viaLabelledBy || aria.NamesFromContent(role) {
		if name := c.contentName(n); name != "" {
			return name
		}
	}

	// Step F: title attribute fallback.
	if title, ok := dom.Attr(n, "title"); ok {
		if name := dom.CollapseWhitespace(title); name != "" {
			return name
		}
	}

	// Step G: placeholder fallback for textual fields.
	if isTextualField(n) {
		if ph, ok := dom.Attr(n, "placeholder"); ok {
			return dom.CollapseWhitespace(ph)
		}
	}

	return ""
}

// fromLabelledBy resolves the space-separated id references in attribute
// value order and joins the resulting names with single spaces. Ids that
// resolve to nothing contribute nothing.
func (c *computer) fromLabelledBy(refs string) string {
	var parts []string
	for _, id := range strings.Fields(refs) {
		target := c.doc.ByID(id)
		if target == nil {
			continue
		}
		if name := c.name(target, true); name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " ")
}

// fromHostLanguage applies the HTML-AAM native labeling features.
func (c *computer) fromHostLanguage(n *html.Node) string {
	switch n.Data {
	case "img", "area":
		return dom.CollapseWhitespace(dom.AttrOr(n, "alt", ""))
	case "input":
		return c.inputName(n)
	case "select", "textarea":
		return c.labelFor(n)
	case "button":
		return c.contentName(n)
	case "fieldset":
		if legend := dom.FirstChildElement(n, "legend"); legend != nil {
			return c.contentName(legend)
		}
	case "table":
		if caption := dom.FirstChildElement(n, "caption"); caption != nil {
			return c.contentName(caption)
		}
	case "figure":
		if figcaption := findDescendant(n, "figcaption"); figcaption != nil {
			return c.contentName(figcaption)
		}
	case "svg":
		if title := dom.FirstChildElement(n, "title"); title != nil {
			return dom.TextContent(title)
		}
	case "iframe", "frame":
		return dom.CollapseWhitespace(dom.AttrOr(n, "title", ""))
	}
	return ""
}

// inputName applies the per-type input naming rules.
func (c *computer) inputName(n *html.Node) string {
	typ := strings.ToLower(dom.AttrOr(n, "type", "text"))
	switch typ {
	case "button", "submit", "reset":
		if v := dom.CollapseWhitespace(dom.AttrOr(n, "value", "")); v != "" {
			return v
		}
		// User agents supply default labels for these two types.
		if typ == "submit" {
			return "Submit"
		}
		if typ == "reset" {
			return "Reset"
		}
		return ""
	case "image":
		if alt := dom.CollapseWhitespace(dom.AttrOr(n, "alt", "")); alt != "" {
			return alt
		}
		return dom.CollapseWhitespace(dom.AttrOr(n, "title", ""))
	default:
		return c.labelFor(n)
	}
}

// labelFor gathers <label for=id> elements in document order, then falls
// back to a wrapping <label>.
func (c *computer) labelFor(n *html.Node) string {
	id, _ := dom.Attr(n, "id")
	var parts []string
	if id != "" {
		dom.Walk(c.doc.Root, func(node *html.Node) bool {
			if dom.IsElement(node, "label") && dom.AttrOr(node, "for", "") == id {
				if name := c.contentName(node); name != "" {
					parts = append(parts, name)
				}
			}
			return true
		})
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if wrapping := dom.Ancestor(n, "label"); wrapping != nil {
		return c.contentName(wrapping)
	}
	return ""
}

// contentName flattens a subtree to text: text nodes plus the names of
// embedded images, skipping hidden branches.
func (c *computer) contentName(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			sb.WriteString(node.Data)
			sb.WriteString(" ")
			return
		case html.ElementNode:
			if node != n && dom.IsHiddenSelf(node) {
				return
			}
			switch node.Data {
			case "script", "style":
				return
			case "img", "area":
				sb.WriteString(dom.AttrOr(node, "alt", ""))
				sb.WriteString(" ")
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return dom.CollapseWhitespace(sb.String())
}

// isTextualField reports whether placeholder can name the element.
func isTextualField(n *html.Node) bool {
	if dom.IsElement(n, "textarea") {
		return true
	}
	if !dom.IsElement(n, "input") {
		return false
	}
	switch strings.ToLower(dom.AttrOr(n, "type", "text")) {
	case "text", "search", "url", "tel", "email", "password", "number":
		return true
	}
	return false
}

// findDescendant returns the first descendant element with the tag name.
func findDescendant(n *html.Node, tag string) *html.Node {
	var found *html.Node
	dom.Walk(n, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if node != n && dom.IsElement(node, tag) {
			found = node
			return false
		}
		return true
	})
	return found
}
