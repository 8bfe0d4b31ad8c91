// Package rules defines the accessibility rule engine: the Rule contract,
// the violation model, and the process-wide rule registry.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"a11ylint/internal/dom"
)

// Sentinel errors for the built-in rules. Every violation a rule emits
// wraps its sentinel, so callers can branch with errors.Is.
var (
	// ErrMissingAccessibleName is wrapped by violations of the
	// missing-accessible-name rule.
	ErrMissingAccessibleName = errors.New("element is missing an accessible name")

	// ErrRedundantAltText is wrapped by violations of the redundant-alt rule.
	ErrRedundantAltText = errors.New("image alt text repeats that it is an image")
)

// Impact grades how severely a violation affects assistive technology
// users, following the common axe-core scale.
type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactSerious  Impact = "serious"
	ImpactModerate Impact = "moderate"
	ImpactMinor    Impact = "minor"
)

// Violation is a single rule failure tied to an element in a document.
type Violation struct {
	RuleID   string `json:"rule_id"`
	Selector string `json:"selector"`
	Line     int    `json:"line,omitempty"`
	Snippet  string `json:"snippet"`
	Message  string `json:"message"`
	Impact   Impact `json:"impact"`

	err error
}

// NewViolation builds a violation wrapping the rule's sentinel error.
func NewViolation(ruleID string, sentinel error, impact Impact, selector string, line int, snippet, message string) Violation {
	return Violation{
		RuleID:   ruleID,
		Selector: selector,
		Line:     line,
		Snippet:  snippet,
		Message:  message,
		Impact:   impact,
		err:      sentinel,
	}
}

// Error implements error. The selector locates the offending element.
func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s (%s)", v.RuleID, v.Message, v.Selector)
}

// Unwrap exposes the rule's sentinel error to errors.Is.
func (v Violation) Unwrap() error {
	return v.err
}

// Rule checks one accessibility requirement against a parsed document.
type Rule interface {
	// ID is the stable rule identifier, e.g. "missing-accessible-name".
	ID() string
	// Describe returns a one-line summary of what the rule enforces.
	Describe() string
	// Check returns all violations found in the document.
	Check(doc *dom.Document) []Violation
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Rule)
)

// Register adds a rule to the registry. Registering a duplicate id panics;
// rule ids are package-level constants and a collision is a programming
// error.
func Register(r Rule) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[r.ID()]; dup {
		panic(fmt.Sprintf("rules: duplicate registration of %q", r.ID()))
	}
	registry[r.ID()] = r
}

// Get looks a rule up by id.
func Get(id string) (Rule, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[id]
	return r, ok
}

// All returns every registered rule, sorted by id.
func All() []Rule {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Rule, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Enabled returns the registered rules minus the disabled ids.
func Enabled(disabled []string) []Rule {
	skip := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		skip[id] = true
	}
	var out []Rule
	for _, r := range All() {
		if !skip[r.ID()] {
			out = append(out, r)
		}
	}
	return out
}

// snippetLimit keeps violation snippets readable in terminal output.
const snippetLimit = 120

func snippet(s string) string {
	if len(s) <= snippetLimit {
		return s
	}
	return s[:snippetLimit] + "..."
}
