package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// IsHiddenSelf reports whether the element itself is removed from the
// accessibility tree: the hidden attribute, aria-hidden="true",
// input type=hidden, or an inline style of display:none /
// visibility:hidden. The CSS cascade is out of scope; only inline styles
// are considered.
func IsHiddenSelf(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if HasAttr(n, "hidden") {
		return true
	}
	if strings.EqualFold(AttrOr(n, "aria-hidden", ""), "true") {
		return true
	}
	if n.Data == "input" && strings.EqualFold(AttrOr(n, "type", ""), "hidden") {
		return true
	}
	if style, ok := Attr(n, "style"); ok && inlineStyleHidden(style) {
		return true
	}
	return false
}

// IsHidden reports whether the element or any ancestor is hidden.
func IsHidden(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if IsHiddenSelf(cur) {
			return true
		}
	}
	return false
}

// inlineStyleHidden does a minimal declaration scan for display:none and
// visibility:hidden.
func inlineStyleHidden(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(strings.ToLower(k))
		v = strings.TrimSpace(strings.ToLower(v))
		if k == "display" && v == "none" {
			return true
		}
		if k == "visibility" && v == "hidden" {
			return true
		}
	}
	return false
}
