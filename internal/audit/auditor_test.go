package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"a11ylint/internal/rules"
)

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestAuditReader(t *testing.T) {
	a := New(rules.All())

	t.Run("reports violations", func(t *testing.T) {
		res, err := a.AuditReader("inline", strings.NewReader(`<button></button>`))
		require.NoError(t, err)
		assert.Equal(t, "inline", res.Source)
		require.Len(t, res.Violations, 1)
		assert.Equal(t, "missing-accessible-name", res.Violations[0].RuleID)
		assert.Greater(t, res.Bytes, 0)
	})

	t.Run("clean document", func(t *testing.T) {
		res, err := a.AuditReader("inline", strings.NewReader(`<button>Save</button>`))
		require.NoError(t, err)
		assert.Empty(t, res.Violations)
	})

	t.Run("no rules means no violations", func(t *testing.T) {
		quiet := New(nil)
		res, err := quiet.AuditReader("inline", strings.NewReader(`<button></button>`))
		require.NoError(t, err)
		assert.Empty(t, res.Violations)
	})
}

func TestAuditFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "page.html", `<img src="x.png">`)

	a := New(rules.All())
	res, err := a.AuditFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Source)
	assert.Len(t, res.Violations, 1)

	_, err = a.AuditFile(filepath.Join(dir, "missing.html"))
	assert.Error(t, err)
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	a := New(rules.All(), WithConcurrency(2))

	t.Run("results keep input order", func(t *testing.T) {
		paths := []string{
			writeFixture(t, dir, "a.html", `<button></button>`),
			writeFixture(t, dir, "b.html", `<button>OK</button>`),
			writeFixture(t, dir, "c.html", `<img src="x"><a href="/x"></a>`),
		}
		results, err := a.RunFiles(context.Background(), paths)
		require.NoError(t, err)
		require.Len(t, results, 3)
		for i, res := range results {
			assert.Equal(t, paths[i], res.Source)
		}
		assert.Len(t, results[0].Violations, 1)
		assert.Empty(t, results[1].Violations)
		assert.Len(t, results[2].Violations, 2)
	})

	t.Run("missing file fails the run", func(t *testing.T) {
		paths := []string{
			writeFixture(t, dir, "ok.html", `<p>fine</p>`),
			filepath.Join(dir, "nope.html"),
		}
		_, err := a.RunFiles(context.Background(), paths)
		assert.Error(t, err)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := a.RunFiles(ctx, []string{writeFixture(t, dir, "d.html", `<p></p>`)})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWithConcurrency(t *testing.T) {
	a := New(nil, WithConcurrency(0))
	assert.GreaterOrEqual(t, a.concurrency, 1)

	a = New(nil, WithConcurrency(4))
	assert.Equal(t, 4, a.concurrency)
}
