package rules

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"a11ylint/internal/dom"
)

func init() {
	Register(&redundantAlt{})
}

// redundantAlt flags alt text that restates the element is an image.
// Screen readers already announce the role, so "image of a cat" is read as
// "image, image of a cat".
type redundantAlt struct{}

var redundantAltPrefixes = []string{
	"image of",
	"picture of",
	"photo of",
	"photograph of",
	"graphic of",
	"icon of",
}

func (r *redundantAlt) ID() string { return "redundant-alt" }

func (r *redundantAlt) Describe() string {
	return "Image alt text should not repeat that the element is an image"
}

func (r *redundantAlt) Check(doc *dom.Document) []Violation {
	var violations []Violation

	dom.Walk(doc.Root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && dom.IsHiddenSelf(n) {
			return false
		}
		if !dom.IsElement(n, "img") {
			return true
		}
		alt := strings.ToLower(dom.CollapseWhitespace(dom.AttrOr(n, "alt", "")))
		for _, prefix := range redundantAltPrefixes {
			if strings.HasPrefix(alt, prefix) {
				violations = append(violations, NewViolation(
					r.ID(),
					ErrRedundantAltText,
					ImpactMinor,
					dom.Path(n),
					doc.Line(n),
					snippet(dom.StartTag(n)),
					fmt.Sprintf("alt text starts with %q; drop the prefix", prefix),
				))
				break
			}
		}
		return true
	})

	return violations
}
