package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseString(src)
	require.NoError(t, err)
	return doc
}

// findFirst returns the first element with the tag name, or nil.
func findFirst(doc *Document, tag string) *html.Node {
	var found *html.Node
	Walk(doc.Root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if IsElement(n, tag) {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestParseIndexesIDs(t *testing.T) {
	doc := mustParse(t, `<div id="a">first</div><div id="a">second</div><span id="b"></span>`)

	t.Run("first occurrence wins for duplicates", func(t *testing.T) {
		n := doc.ByID("a")
		require.NotNil(t, n)
		assert.Equal(t, "first", TextContent(n))
	})

	t.Run("unknown id is nil", func(t *testing.T) {
		assert.Nil(t, doc.ByID("nope"))
	})

	t.Run("other ids resolve", func(t *testing.T) {
		assert.NotNil(t, doc.ByID("b"))
	})
}

func TestAttrHelpers(t *testing.T) {
	doc := mustParse(t, `<input type="text" disabled placeholder="">`)
	n := findFirst(doc, "input")
	require.NotNil(t, n)

	v, ok := Attr(n, "type")
	assert.True(t, ok)
	assert.Equal(t, "text", v)

	assert.True(t, HasAttr(n, "disabled"))
	assert.True(t, HasAttr(n, "placeholder"), "empty attributes are still present")
	assert.False(t, HasAttr(n, "value"))
	assert.Equal(t, "fallback", AttrOr(n, "value", "fallback"))
}

func TestTextContent(t *testing.T) {
	doc := mustParse(t, "<div>  Hello\n\t <b>big</b>   world <script>var x=1;</script></div>")
	n := findFirst(doc, "div")
	require.NotNil(t, n)
	assert.Equal(t, "Hello big world", TextContent(n))
}

func TestHiddenDetection(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		tag    string
		hidden bool
	}{
		{"hidden attribute", `<button hidden>x</button>`, "button", true},
		{"aria-hidden true", `<button aria-hidden="true">x</button>`, "button", true},
		{"aria-hidden false", `<button aria-hidden="false">x</button>`, "button", false},
		{"input type hidden", `<input type="hidden">`, "input", true},
		{"display none", `<button style="display: none">x</button>`, "button", true},
		{"visibility hidden", `<button style="color:red; visibility:hidden">x</button>`, "button", true},
		{"visible", `<button style="color: red">x</button>`, "button", false},
		{"hidden ancestor", `<div hidden><button>x</button></div>`, "button", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := mustParse(t, tc.src)
			n := findFirst(doc, tc.tag)
			require.NotNil(t, n)
			assert.Equal(t, tc.hidden, IsHidden(n))
		})
	}
}

func TestPath(t *testing.T) {
	doc := mustParse(t, `<div id="wrap"><p>one</p><p>two</p></div>`)
	div := findFirst(doc, "div")
	require.NotNil(t, div)

	second := div.FirstChild.NextSibling
	require.NotNil(t, second)
	assert.Equal(t, "div#wrap > p:nth-of-type(2)", Path(second))

	first := div.FirstChild
	assert.Equal(t, "div#wrap > p:nth-of-type(1)", Path(first))
}

func TestLineTracking(t *testing.T) {
	src := "<!DOCTYPE html>\n<html>\n<body>\n<button id=\"b\">Hi</button>\n</body>\n</html>\n"
	doc := mustParse(t, src)

	n := doc.ByID("b")
	require.NotNil(t, n)
	assert.Equal(t, 4, doc.Line(n))

	// Synthesized elements carry no line.
	head := findFirst(doc, "head")
	require.NotNil(t, head)
	assert.Equal(t, 0, doc.Line(head))
}

func TestStartTag(t *testing.T) {
	doc := mustParse(t, `<input type="text" name="q">`)
	n := findFirst(doc, "input")
	require.NotNil(t, n)
	assert.Equal(t, `<input type="text" name="q">`, StartTag(n))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\n\tb   c  "))
	assert.Equal(t, "", CollapseWhitespace("   \n\t "))
}
