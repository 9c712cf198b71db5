// Package engine evaluates the enabled rules over every test class of
// a project.
package engine

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/unbound-force/testnames/internal/assertion"
	"github.com/unbound-force/testnames/internal/logging"
	"github.com/unbound-force/testnames/internal/model"
	"github.com/unbound-force/testnames/internal/rules"
)

// Options configures a run.
type Options struct {
	// Jobs bounds the number of classes evaluated concurrently.
	// Values below 1 mean runtime.NumCPU().
	Jobs int

	// Enabled lists the rule IDs to evaluate. Nil means the
	// registry's default-enabled rules.
	Enabled []string

	// Registry resolves rule IDs. Nil means rules.DefaultRegistry().
	Registry *rules.Registry

	// Table is the assertion table. Nil means the embedded table.
	Table *assertion.Table

	// MaxComplexity is passed to the simple-test-case rule.
	MaxComplexity int

	// Logger receives per-class debug lines. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns options with the default rule set.
func DefaultOptions() Options {
	return Options{
		Jobs:          runtime.NumCPU(),
		MaxComplexity: 10,
	}
}

// ClassResult holds the complaints reported for one test class.
type ClassResult struct {
	Class      *model.TestClass
	Complaints []rules.Complaint
}

// Result is the outcome of a run. Classes follow the project's class
// order regardless of Jobs.
type Result struct {
	// Rules are the evaluated rule IDs in evaluation order.
	Rules   []string
	Classes []ClassResult
}

// Complaints returns the top-level complaints of every class in order.
func (r *Result) Complaints() []rules.Complaint {
	var out []rules.Complaint
	for _, c := range r.Classes {
		out = append(out, c.Complaints...)
	}
	return out
}

// Count returns the number of top-level complaints.
func (r *Result) Count() int {
	n := 0
	for _, c := range r.Classes {
		n += len(c.Complaints)
	}
	return n
}

// Findings returns the number of complaints including those wrapped
// by compound complaints.
func (r *Result) Findings() int {
	n := 0
	for _, c := range r.Complaints() {
		n += len(rules.Flatten(c))
	}
	return n
}

// Cases returns the number of test cases inspected.
func (r *Result) Cases() int {
	n := 0
	for _, c := range r.Classes {
		n += len(c.Class.Cases)
	}
	return n
}

// Run evaluates the enabled rules over every test class of p. Rules run
// in sorted ID order within a class. Run stops scheduling classes once
// ctx is done and returns its error.
func Run(ctx context.Context, p model.Project, opts Options) (*Result, error) {
	reg := opts.Registry
	if reg == nil {
		reg = rules.DefaultRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ids, err := enabledRules(reg, opts.Enabled)
	if err != nil {
		return nil, err
	}

	table := opts.Table
	if table == nil {
		table, err = assertion.DefaultTable()
		if err != nil {
			return nil, err
		}
	}
	env := rules.Env{
		Allowed: map[model.Language]*assertion.Allowed{
			model.LanguageGo:   assertion.NewAllowed(table, model.LanguageGo),
			model.LanguageJava: assertion.NewAllowed(table, model.LanguageJava),
		},
		Production:    p.ProductionClasses(),
		MaxComplexity: opts.MaxComplexity,
	}

	classes := p.TestClasses()
	results := make([]ClassResult, len(classes))

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i := range classes {
		class := &classes[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			complaints, err := evaluate(reg, env, ids, class)
			if err != nil {
				return fmt.Errorf("evaluating %s: %w", class.Path, err)
			}
			results[i] = ClassResult{Class: class, Complaints: complaints}
			logger.Debug("evaluated class",
				logging.FieldPath, class.Path,
				logging.FieldCases, len(class.Cases),
				logging.FieldComplaints, len(complaints))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{Rules: ids, Classes: results}, nil
}

// evaluate runs every rule in ids over class.
func evaluate(reg *rules.Registry, env rules.Env, ids []string, class *model.TestClass) ([]rules.Complaint, error) {
	var out []rules.Complaint
	for _, id := range ids {
		built, err := reg.Build(id, env, class)
		if err != nil {
			return nil, err
		}
		for _, r := range built {
			out = append(out, r.Complaints()...)
		}
	}
	return out, nil
}

// enabledRules validates the requested IDs against reg and returns them
// sorted and deduplicated.
func enabledRules(reg *rules.Registry, enabled []string) ([]string, error) {
	if enabled == nil {
		return reg.DefaultEnabled(), nil
	}
	ids := slices.Clone(enabled)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, id := range ids {
		if _, ok := reg.Definition(id); !ok {
			return nil, fmt.Errorf("unknown rule %q", id)
		}
	}
	return ids, nil
}
