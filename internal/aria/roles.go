// Package aria models the slice of the WAI-ARIA role taxonomy the linter
// needs: widget roles, name-from-content roles, naming-prohibited roles,
// and implicit role resolution for native HTML elements.
package aria

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"a11ylint/internal/dom"
)

// Role is an ARIA role name, e.g. "button" or "combobox".
type Role string

// RoleNone marks elements with no role of interest to the linter.
const RoleNone Role = ""

// Widget roles: interactive UI controls that assistive technology users
// operate, and which therefore must expose an accessible name.
var widgetRoles = map[Role]bool{
	"button":           true,
	"checkbox":         true,
	"combobox":         true,
	"gridcell":         true,
	"link":             true,
	"listbox":          true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"option":           true,
	"progressbar":      true,
	"radio":            true,
	"scrollbar":        true,
	"searchbox":        true,
	"slider":           true,
	"spinbutton":       true,
	"switch":           true,
	"tab":              true,
	"textbox":          true,
	"treeitem":         true,
}

// Roles whose accessible name may come from their subtree content.
var nameFromContentRoles = map[Role]bool{
	"button":           true,
	"cell":             true,
	"checkbox":         true,
	"columnheader":     true,
	"gridcell":         true,
	"heading":          true,
	"link":             true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"option":           true,
	"radio":            true,
	"row":              true,
	"rowheader":        true,
	"switch":           true,
	"tab":              true,
	"tooltip":          true,
	"treeitem":         true,
}

// Roles on which authors must not set a name.
var namingProhibited = map[Role]bool{
	"presentation": true,
	"none":         true,
	"generic":      true,
}

// knownRoles is the set of role tokens the linter recognizes. Unknown
// tokens in a role attribute are skipped per the ARIA fallback rules.
var knownRoles = func() map[Role]bool {
	m := map[Role]bool{
		"alert": true, "alertdialog": true, "application": true,
		"article": true, "banner": true, "complementary": true,
		"contentinfo": true, "dialog": true, "document": true,
		"feed": true, "figure": true, "form": true, "grid": true,
		"group": true, "img": true, "list": true, "listitem": true,
		"log": true, "main": true, "marquee": true, "menu": true,
		"menubar": true, "navigation": true, "radiogroup": true,
		"region": true, "search": true, "separator": true,
		"status": true, "table": true, "tablist": true,
		"tabpanel": true, "term": true, "timer": true,
		"toolbar": true, "tree": true, "treegrid": true,
	}
	for r := range widgetRoles {
		m[r] = true
	}
	for r := range nameFromContentRoles {
		m[r] = true
	}
	for r := range namingProhibited {
		m[r] = true
	}
	return m
}()

// IsWidget reports whether the role designates an interactive widget.
func IsWidget(r Role) bool { return widgetRoles[r] }

// NamesFromContent reports whether the role takes its name from content.
func NamesFromContent(r Role) bool { return nameFromContentRoles[r] }

// IsNamingProhibited reports whether authors must not name the role.
func IsNamingProhibited(r Role) bool { return namingProhibited[r] }

// ExplicitRole returns the first known token of the role attribute, or
// RoleNone when the attribute is absent or carries only unknown tokens.
func ExplicitRole(n *html.Node) Role {
	raw, ok := dom.Attr(n, "role")
	if !ok {
		return RoleNone
	}
	for _, tok := range strings.Fields(strings.ToLower(raw)) {
		if knownRoles[Role(tok)] {
			return Role(tok)
		}
	}
	return RoleNone
}

// ImplicitRole maps a native HTML element to its implicit ARIA role.
// Only the mappings the rules consult are covered.
func ImplicitRole(n *html.Node) Role {
	if n == nil || n.Type != html.ElementNode {
		return RoleNone
	}
	switch n.Data {
	case "a", "area":
		if dom.HasAttr(n, "href") {
			return "link"
		}
		return RoleNone
	case "button", "summary":
		return "button"
	case "input":
		return implicitInputRole(n)
	case "select":
		if dom.HasAttr(n, "multiple") {
			return "listbox"
		}
		if size, err := strconv.Atoi(dom.AttrOr(n, "size", "1")); err == nil && size > 1 {
			return "listbox"
		}
		return "combobox"
	case "textarea":
		return "textbox"
	case "img":
		// alt="" opts the image out of the accessibility tree.
		if alt, ok := dom.Attr(n, "alt"); ok && strings.TrimSpace(alt) == "" {
			return "presentation"
		}
		return "img"
	case "option":
		return "option"
	case "progress":
		return "progressbar"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "nav":
		return "navigation"
	case "main":
		return "main"
	case "table":
		return "table"
	case "li":
		return "listitem"
	case "ul", "ol":
		return "list"
	case "iframe":
		// HTML-AAM has no single mapping; linted like a named widget.
		return "document"
	}
	return RoleNone
}

func implicitInputRole(n *html.Node) Role {
	switch strings.ToLower(dom.AttrOr(n, "type", "text")) {
	case "checkbox":
		return "checkbox"
	case "radio":
		return "radio"
	case "range":
		return "slider"
	case "number":
		return "spinbutton"
	case "search":
		if dom.HasAttr(n, "list") {
			return "combobox"
		}
		return "searchbox"
	case "button", "submit", "reset", "image":
		return "button"
	case "email", "tel", "text", "url":
		if dom.HasAttr(n, "list") {
			return "combobox"
		}
		return "textbox"
	case "password":
		return "textbox"
	case "hidden":
		return RoleNone
	default:
		return "textbox"
	}
}

// ResolveRole computes the effective role: the explicit role when present,
// except that presentation/none on a focusable element is a conflict and
// the implicit role wins.
func ResolveRole(n *html.Node) Role {
	explicit := ExplicitRole(n)
	if explicit == RoleNone {
		return ImplicitRole(n)
	}
	if (explicit == "presentation" || explicit == "none") && IsFocusable(n) {
		return ImplicitRole(n)
	}
	return explicit
}

// IsFocusable reports whether the element participates in keyboard focus:
// natively interactive, or carrying a non-negative tabindex.
func IsFocusable(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if ti, ok := dom.Attr(n, "tabindex"); ok {
		if v, err := strconv.Atoi(strings.TrimSpace(ti)); err == nil {
			return v >= 0
		}
	}
	if dom.HasAttr(n, "disabled") {
		return false
	}
	switch n.Data {
	case "button", "select", "textarea", "summary":
		return true
	case "a", "area":
		return dom.HasAttr(n, "href")
	case "input":
		return !strings.EqualFold(dom.AttrOr(n, "type", ""), "hidden")
	case "iframe":
		return true
	}
	return false
}
