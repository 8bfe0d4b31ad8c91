package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"a11ylint/internal/audit"
	"a11ylint/internal/rules"
)

func sampleResults() []audit.Result {
	return []audit.Result{
		{
			Source: "pages/login.html",
			Bytes:  512,
			Violations: []rules.Violation{
				rules.NewViolation("missing-accessible-name", rules.ErrMissingAccessibleName,
					rules.ImpactCritical, "body > button", 12, "<button>", "element with role \"button\" has no accessible name"),
				rules.NewViolation("redundant-alt", rules.ErrRedundantAltText,
					rules.ImpactMinor, "body > img", 20, `<img alt="image of a cat">`, `alt text starts with "image of"; drop the prefix`),
			},
		},
		{Source: "pages/about.html", Bytes: 256},
	}
}

func TestNewTotals(t *testing.T) {
	r := New(time.Now(), sampleResults())
	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, 2, r.Totals.Sources)
	assert.Equal(t, 2, r.Totals.Violations)
	assert.Equal(t, 1, r.Totals.ByRule["missing-accessible-name"])
	assert.Equal(t, 1, r.Totals.ByRule["redundant-alt"])
	assert.True(t, r.HasViolations())

	clean := New(time.Now(), nil)
	assert.False(t, clean.HasViolations())
}

func TestWriteJSON(t *testing.T) {
	r := New(time.Now(), sampleResults())

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.RunID, decoded["run_id"])

	totals, ok := decoded["totals"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), totals["violations"])
}

func TestWriteText(t *testing.T) {
	r := New(time.Now(), sampleResults())

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	out := buf.String()

	assert.Contains(t, out, "pages/login.html:")
	assert.Contains(t, out, "missing-accessible-name")
	assert.Contains(t, out, "12: body > button")
	// Clean sources are omitted from text output.
	assert.NotContains(t, out, "pages/about.html")
	assert.Contains(t, out, "2 source(s), 2 violation(s)")
}

func TestWritePretty(t *testing.T) {
	r := New(time.Now(), sampleResults())

	var buf bytes.Buffer
	require.NoError(t, r.WritePretty(&buf))
	out := buf.String()

	assert.Contains(t, out, "pages/login.html")
	assert.Contains(t, out, "pages/about.html")
	assert.Contains(t, out, "clean")
	assert.Contains(t, out, "line 12, body > button")

	// Both sources plus their violations and the summary line.
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 5)
}
