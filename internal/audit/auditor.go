// Package audit orchestrates rule execution over parsed documents and
// fans file audits out across a bounded worker pool.
package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"a11ylint/internal/dom"
	"a11ylint/internal/logging"
	"a11ylint/internal/rules"
)

// Result is the outcome of auditing one source document.
type Result struct {
	Source     string            `json:"source"`
	Bytes      int               `json:"bytes"`
	Duration   time.Duration     `json:"duration"`
	Violations []rules.Violation `json:"violations"`
}

// Auditor runs a fixed rule set over documents.
type Auditor struct {
	rules       []rules.Rule
	concurrency int
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithConcurrency bounds the file worker pool. Values below 1 fall back to
// the default.
func WithConcurrency(n int) Option {
	return func(a *Auditor) {
		if n >= 1 {
			a.concurrency = n
		}
	}
}

// New builds an Auditor over the given rules. With no rules it audits
// nothing and every result is clean.
func New(rs []rules.Rule, opts ...Option) *Auditor {
	a := &Auditor{
		rules:       rs,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Rules returns the rule set the auditor runs.
func (a *Auditor) Rules() []rules.Rule {
	return a.rules
}

// AuditReader parses and audits a single document. The name is only used
// to label the result.
func (a *Auditor) AuditReader(name string, r io.Reader) (Result, error) {
	timer := logging.StartTimer(logging.CategoryAudit, "audit "+name)
	defer timer.Stop()

	start := time.Now()
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", name, err)
	}

	doc, err := dom.ParseString(string(data))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	res := Result{Source: name, Bytes: len(data)}
	for _, rule := range a.rules {
		vs := rule.Check(doc)
		if len(vs) > 0 {
			logging.AuditDebug("%s: rule %s found %d violation(s)", name, rule.ID(), len(vs))
		}
		res.Violations = append(res.Violations, vs...)
	}
	res.Duration = time.Since(start)
	return res, nil
}

// AuditFile audits one file on disk.
func (a *Auditor) AuditFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return a.AuditReader(path, f)
}

// RunFiles audits many files concurrently. Results come back in input
// order regardless of completion order. The first error cancels the
// remaining work.
func (a *Auditor) RunFiles(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.AuditFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logging.Audit("audited %d file(s)", len(paths))
	return results, nil
}
