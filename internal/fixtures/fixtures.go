// Package fixtures loads the HTML fixture corpus and verifies the rule
// engine against it. Every fixture is one scenario and declares its
// expected outcome in a leading HTML comment:
//
//	<!-- expect: missing-accessible-name=2 -->
//	<!-- expect: clean -->
//
// Verify audits each fixture and reports any drift between the declared
// and observed violation counts per rule.
package fixtures

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"a11ylint/internal/audit"
	"a11ylint/internal/logging"
)

// Expectation maps rule ids to the number of violations a fixture must
// produce. An empty map means the fixture must be clean.
type Expectation map[string]int

// Fixture is one scenario file plus its declared expectation.
type Fixture struct {
	Name   string
	Path   string
	Expect Expectation
}

// Drift is a mismatch between a fixture's expectation and the audit.
type Drift struct {
	Fixture string `json:"fixture"`
	RuleID  string `json:"rule_id"`
	Want    int    `json:"want"`
	Got     int    `json:"got"`
}

func (d Drift) String() string {
	return fmt.Sprintf("%s: rule %s: want %d violation(s), got %d", d.Fixture, d.RuleID, d.Want, d.Got)
}

var directiveRe = regexp.MustCompile(`<!--\s*expect:\s*([^>]*?)\s*-->`)

// Load reads every .html file in dir and parses its expect directive.
// A fixture without a directive is an error; the corpus is only useful if
// every scenario states its intent.
func Load(dir string) ([]Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture dir: %w", err)
	}

	var out []Fixture
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture %s: %w", e.Name(), err)
		}
		expect, err := parseDirective(data)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", e.Name(), err)
		}
		out = append(out, Fixture{Name: e.Name(), Path: path, Expect: expect})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	logging.Fixtures("loaded %d fixture(s) from %s", len(out), dir)
	return out, nil
}

// parseDirective extracts the expectation from the first expect comment.
func parseDirective(data []byte) (Expectation, error) {
	m := directiveRe.FindSubmatch(data)
	if m == nil {
		return nil, fmt.Errorf("missing expect directive (<!-- expect: ... -->)")
	}

	body := strings.TrimSpace(string(m[1]))
	expect := make(Expectation)
	if body == "clean" {
		return expect, nil
	}

	for _, field := range strings.Fields(body) {
		rule, count, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("malformed expectation %q (want rule=count)", field)
		}
		n, err := strconv.Atoi(count)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("malformed expectation count in %q", field)
		}
		expect[rule] = n
	}
	if len(expect) == 0 {
		return nil, fmt.Errorf("empty expect directive")
	}
	return expect, nil
}

// Verify audits every fixture in dir and returns the drift list. An empty
// list means the corpus and the rule engine agree.
func Verify(ctx context.Context, dir string, auditor *audit.Auditor) ([]Drift, error) {
	fixtures, err := Load(dir)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, f := range fixtures {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := auditor.AuditFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", f.Name, err)
		}

		got := make(map[string]int)
		for _, v := range res.Violations {
			got[v.RuleID]++
		}

		// Check declared counts, then anything observed but undeclared.
		for rule, want := range f.Expect {
			if got[rule] != want {
				drifts = append(drifts, Drift{Fixture: f.Name, RuleID: rule, Want: want, Got: got[rule]})
			}
		}
		for rule, n := range got {
			if _, declared := f.Expect[rule]; !declared {
				drifts = append(drifts, Drift{Fixture: f.Name, RuleID: rule, Want: 0, Got: n})
			}
		}
	}

	sort.Slice(drifts, func(i, j int) bool {
		if drifts[i].Fixture != drifts[j].Fixture {
			return drifts[i].Fixture < drifts[j].Fixture
		}
		return drifts[i].RuleID < drifts[j].RuleID
	})
	logging.Fixtures("verified %d fixture(s), %d drift(s)", len(fixtures), len(drifts))
	return drifts, nil
}
