package rules

import (
	"fmt"

	"golang.org/x/net/html"

	"a11ylint/internal/accname"
	"a11ylint/internal/aria"
	"a11ylint/internal/dom"
)

func init() {
	Register(&missingAccessibleName{})
}

// missingAccessibleName flags interactive elements and images that expose
// no accessible name to assistive technology.
//
// Candidates are elements whose resolved role is an ARIA widget role, the
// img role, or an iframe. Elements removed from the accessibility tree are
// exempt: hidden subtrees, input type=hidden, and elements whose resolved
// role is presentation/none (an img with alt="" resolves to presentation
// and is the deliberate opt-out).
type missingAccessibleName struct{}

func (r *missingAccessibleName) ID() string { return "missing-accessible-name" }

func (r *missingAccessibleName) Describe() string {
	return "Interactive elements and images must have an accessible name"
}

func (r *missingAccessibleName) Check(doc *dom.Document) []Violation {
	var violations []Violation

	dom.Walk(doc.Root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && dom.IsHiddenSelf(n) {
			// Nothing inside a hidden subtree reaches assistive technology.
			return false
		}
		if n.Type != html.ElementNode {
			return true
		}

		role := aria.ResolveRole(n)
		if !r.candidate(n, role) {
			return true
		}

		if accname.Compute(doc, n) == "" {
			violations = append(violations, NewViolation(
				r.ID(),
				ErrMissingAccessibleName,
				r.impact(role),
				dom.Path(n),
				doc.Line(n),
				snippet(dom.StartTag(n)),
				r.message(n, role),
			))
		}
		return true
	})

	return violations
}

func (r *missingAccessibleName) candidate(n *html.Node, role aria.Role) bool {
	if aria.IsWidget(role) {
		return true
	}
	if role == "img" {
		return true
	}
	// Frames are announced by title; an untitled frame reads as its URL.
	return dom.IsElement(n, "iframe") || dom.IsElement(n, "frame")
}

func (r *missingAccessibleName) impact(role aria.Role) Impact {
	// Unnamed controls are unusable; unnamed images are "merely" opaque.
	if role == "img" {
		return ImpactSerious
	}
	return ImpactCritical
}

func (r *missingAccessibleName) message(n *html.Node, role aria.Role) string {
	switch {
	case role == "img":
		return "image has no alt text or other accessible name"
	case dom.IsElement(n, "iframe") || dom.IsElement(n, "frame"):
		return "frame has no title"
	default:
		return fmt.Sprintf("element with role %q has no accessible name", role)
	}
}
