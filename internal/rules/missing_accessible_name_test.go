package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"a11ylint/internal/dom"
)

func checkRule(t *testing.T, id, src string) []Violation {
	t.Helper()
	rule, ok := Get(id)
	require.True(t, ok, "rule %s not registered", id)
	doc, err := dom.ParseString(src)
	require.NoError(t, err)
	return rule.Check(doc)
}

func TestMissingAccessibleName(t *testing.T) {
	const id = "missing-accessible-name"

	t.Run("flags unnamed widgets", func(t *testing.T) {
		vs := checkRule(t, id, `
			<button></button>
			<a href="/x"></a>
			<input type="text">
			<div role="combobox"></div>`)
		assert.Len(t, vs, 4)
		for _, v := range vs {
			assert.Equal(t, id, v.RuleID)
			assert.True(t, errors.Is(v, ErrMissingAccessibleName))
			assert.NotEmpty(t, v.Selector)
			assert.NotEmpty(t, v.Snippet)
			assert.Equal(t, ImpactCritical, v.Impact)
		}
	})

	t.Run("flags unnamed images as serious", func(t *testing.T) {
		vs := checkRule(t, id, `<img src="cat.jpg">`)
		require.Len(t, vs, 1)
		assert.Equal(t, ImpactSerious, vs[0].Impact)
	})

	t.Run("named elements pass", func(t *testing.T) {
		vs := checkRule(t, id, `
			<button aria-label="Close"></button>
			<a href="/x">Home</a>
			<label>Email <input type="email"></label>
			<img src="cat.jpg" alt="A cat">`)
		assert.Empty(t, vs)
	})

	t.Run("hidden subtrees are exempt", func(t *testing.T) {
		vs := checkRule(t, id, `
			<div hidden><button></button></div>
			<div aria-hidden="true"><input type="text"></div>
			<input type="hidden" name="csrf">`)
		assert.Empty(t, vs)
	})

	t.Run("decorative image opt-out", func(t *testing.T) {
		vs := checkRule(t, id, `<img src="divider.png" alt="">`)
		assert.Empty(t, vs)
	})

	t.Run("presentation role on focusable is still checked", func(t *testing.T) {
		vs := checkRule(t, id, `<button role="presentation"></button>`)
		assert.Len(t, vs, 1)
	})

	t.Run("frames need titles", func(t *testing.T) {
		vs := checkRule(t, id, `<iframe src="/embed"></iframe>`)
		require.Len(t, vs, 1)
		assert.Contains(t, vs[0].Message, "title")

		vs = checkRule(t, id, `<iframe src="/embed" title="Chat"></iframe>`)
		assert.Empty(t, vs)
	})

	t.Run("non-interactive elements are ignored", func(t *testing.T) {
		vs := checkRule(t, id, `<div></div><p></p><span role="navigation"></span>`)
		assert.Empty(t, vs)
	})
}

func TestRedundantAlt(t *testing.T) {
	const id = "redundant-alt"

	t.Run("flags redundant prefixes", func(t *testing.T) {
		vs := checkRule(t, id, `
			<img src="a.jpg" alt="Image of a cat">
			<img src="b.jpg" alt="photo of a dog">`)
		require.Len(t, vs, 2)
		for _, v := range vs {
			assert.True(t, errors.Is(v, ErrRedundantAltText))
			assert.Equal(t, ImpactMinor, v.Impact)
		}
	})

	t.Run("plain descriptions pass", func(t *testing.T) {
		vs := checkRule(t, id, `<img src="a.jpg" alt="A cat in its natural image">`)
		assert.Empty(t, vs)
	})

	t.Run("hidden images are exempt", func(t *testing.T) {
		vs := checkRule(t, id, `<img hidden src="a.jpg" alt="Image of a cat">`)
		assert.Empty(t, vs)
	})
}

func TestRegistry(t *testing.T) {
	t.Run("built-in rules are registered", func(t *testing.T) {
		all := All()
		require.GreaterOrEqual(t, len(all), 2)
		// Sorted by id.
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].ID(), all[i].ID())
		}
	})

	t.Run("Get finds by id", func(t *testing.T) {
		r, ok := Get("missing-accessible-name")
		require.True(t, ok)
		assert.Equal(t, "missing-accessible-name", r.ID())

		_, ok = Get("no-such-rule")
		assert.False(t, ok)
	})

	t.Run("Enabled honors disabled list", func(t *testing.T) {
		for _, r := range Enabled([]string{"redundant-alt"}) {
			assert.NotEqual(t, "redundant-alt", r.ID())
		}
		assert.Len(t, Enabled(nil), len(All()))
	})
}

func TestViolationError(t *testing.T) {
	v := NewViolation("missing-accessible-name", ErrMissingAccessibleName,
		ImpactCritical, "body > button", 3, "<button>", "element has no accessible name")
	assert.Contains(t, v.Error(), "missing-accessible-name")
	assert.Contains(t, v.Error(), "body > button")
	assert.ErrorIs(t, v, ErrMissingAccessibleName)
}
