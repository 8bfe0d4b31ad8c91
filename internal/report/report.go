// Package report aggregates audit results into a run report and renders
// it as JSON, plain text, or severity-colored terminal output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"a11ylint/internal/audit"
	"a11ylint/internal/rules"
)

// Totals summarizes a run.
type Totals struct {
	Sources    int            `json:"sources"`
	Violations int            `json:"violations"`
	ByRule     map[string]int `json:"by_rule,omitempty"`
}

// Report is one audit run over a set of sources.
type Report struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Results   []audit.Result `json:"results"`
	Totals    Totals         `json:"totals"`
}

// New builds a report over the results, computing totals.
func New(startedAt time.Time, results []audit.Result) *Report {
	r := &Report{
		RunID:     uuid.NewString(),
		StartedAt: startedAt,
		Results:   results,
		Totals:    Totals{Sources: len(results), ByRule: make(map[string]int)},
	}
	for _, res := range results {
		r.Totals.Violations += len(res.Violations)
		for _, v := range res.Violations {
			r.Totals.ByRule[v.RuleID]++
		}
	}
	return r
}

// HasViolations reports whether any rule fired.
func (r *Report) HasViolations() bool {
	return r.Totals.Violations > 0
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders the report as plain text, one violation per line.
func (r *Report) WriteText(w io.Writer) error {
	for _, res := range r.Results {
		if len(res.Violations) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n", res.Source); err != nil {
			return err
		}
		for _, v := range res.Violations {
			loc := v.Selector
			if v.Line > 0 {
				loc = fmt.Sprintf("%d: %s", v.Line, v.Selector)
			}
			if _, err := fmt.Fprintf(w, "  %s [%s/%s] %s\n      %s\n", loc, v.RuleID, v.Impact, v.Message, v.Snippet); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d source(s), %d violation(s)\n", r.Totals.Sources, r.Totals.Violations)
	return err
}

// Terminal styles for the pretty writer.
var (
	styleSource = lipgloss.NewStyle().Bold(true)
	styleClean  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleDim    = lipgloss.NewStyle().Faint(true)

	styleImpact = map[rules.Impact]lipgloss.Style{
		rules.ImpactCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		rules.ImpactSerious:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		rules.ImpactModerate: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		rules.ImpactMinor:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
)

// WritePretty renders the report with lipgloss styling for terminals.
func (r *Report) WritePretty(w io.Writer) error {
	for _, res := range r.Results {
		header := styleSource.Render(res.Source)
		if len(res.Violations) == 0 {
			if _, err := fmt.Fprintf(w, "%s %s\n", header, styleClean.Render("clean")); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		for _, v := range res.Violations {
			impact := styleImpact[v.Impact].Render(string(v.Impact))
			loc := v.Selector
			if v.Line > 0 {
				loc = fmt.Sprintf("line %d, %s", v.Line, v.Selector)
			}
			if _, err := fmt.Fprintf(w, "  %s %s %s\n      %s\n      %s\n",
				impact, v.RuleID, v.Message, loc, styleDim.Render(v.Snippet)); err != nil {
				return err
			}
		}
	}

	summary := fmt.Sprintf("%d source(s), %d violation(s)", r.Totals.Sources, r.Totals.Violations)
	if r.HasViolations() {
		summary = styleImpact[rules.ImpactSerious].Render(summary)
	} else {
		summary = styleClean.Render(summary)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}
