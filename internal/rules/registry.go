package rules

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/unbound-force/testnames/internal/assertion"
	"github.com/unbound-force/testnames/internal/model"
)

// Scope tells whether a rule is built per test case or per test class.
type Scope string

// Rule scopes.
const (
	ScopeCase  Scope = "case"
	ScopeClass Scope = "class"
)

// Definition describes a registered rule.
type Definition struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	Scope          Scope  `json:"scope"`
	DefaultEnabled bool   `json:"default_enabled"`
}

// Env holds the shared, read-only inputs rule constructors need.
type Env struct {
	// Allowed maps a language to its allowed assertion names.
	Allowed map[model.Language]*assertion.Allowed

	// Production lists every production class of the project.
	Production []model.ProductionClass

	// MaxComplexity is the simple-test-case limit; 0 disables it.
	MaxComplexity int
}

// AllowedFor returns the allowed assertion names for lang, or nil.
func (e Env) AllowedFor(lang model.Language) *assertion.Allowed {
	return e.Allowed[lang]
}

// CaseFactory builds a case-scoped rule.
type CaseFactory func(env Env, class *model.TestClass, tc *model.TestCase) Rule

// ClassFactory builds a class-scoped rule.
type ClassFactory func(env Env, class *model.TestClass) Rule

type registration struct {
	def      Definition
	newCase  CaseFactory
	newClass ClassFactory
}

// Registry holds rule definitions and their constructors.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]registration)}
}

// RegisterCase adds a case-scoped rule. An existing rule with the same
// ID is replaced.
func (r *Registry) RegisterCase(def Definition, factory CaseFactory) {
	def.Scope = ScopeCase
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[def.ID] = registration{def: def, newCase: factory}
}

// RegisterClass adds a class-scoped rule. An existing rule with the
// same ID is replaced.
func (r *Registry) RegisterClass(def Definition, factory ClassFactory) {
	def.Scope = ScopeClass
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[def.ID] = registration{def: def, newClass: factory}
}

// Definition returns the definition registered under id.
func (r *Registry) Definition(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byID[id]
	return reg.def, ok
}

// Definitions returns every definition sorted by ID.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.byID))
	for _, reg := range r.byID {
		out = append(out, reg.def)
	}
	slices.SortFunc(out, func(a, b Definition) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// DefaultEnabled returns the IDs of rules enabled by default, sorted.
func (r *Registry) DefaultEnabled() []string {
	var ids []string
	for _, def := range r.Definitions() {
		if def.DefaultEnabled {
			ids = append(ids, def.ID)
		}
	}
	return ids
}

// Build constructs the rules registered under id for class: one rule
// for a class-scoped definition, one per case for a case-scoped one.
func (r *Registry) Build(id string, env Env, class *model.TestClass) ([]Rule, error) {
	r.mu.RLock()
	reg, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", id)
	}

	if reg.def.Scope == ScopeClass {
		return []Rule{reg.newClass(env, class)}, nil
	}
	out := make([]Rule, 0, len(class.Cases))
	for i := range class.Cases {
		out = append(out, reg.newCase(env, class, &class.Cases[i]))
	}
	return out, nil
}

// DefaultRegistry returns a registry holding every built-in rule.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.RegisterCase(Definition{
		ID:          IDPresentTense,
		Description: "test names start with a present tense verb (fail-fast)",
	}, func(_ Env, class *model.TestClass, tc *model.TestCase) Rule {
		return NewPresentTense(class, tc)
	})

	r.RegisterCase(Definition{
		ID:          IDPresentSimple,
		Description: "test names are written in present simple",
	}, func(_ Env, class *model.TestClass, tc *model.TestCase) Rule {
		return NewPresentSimple(class, tc)
	})

	r.RegisterClass(Definition{
		ID:             IDAllTestsInPresentSimple,
		Description:    "every test name of a class is written in present simple",
		DefaultEnabled: true,
	}, func(_ Env, class *model.TestClass) Rule {
		return NewAllTestsInPresentSimple(class)
	})

	r.RegisterCase(Definition{
		ID:             IDNoTestWord,
		Description:    "test names don't contain the word 'test'",
		DefaultEnabled: true,
	}, func(_ Env, class *model.TestClass, tc *model.TestCase) Rule {
		return NewNoTestWord(class, tc)
	})

	r.RegisterCase(Definition{
		ID:          IDAssertionExplanation,
		Description: "assertions carry a human-readable explanation",
	}, func(env Env, class *model.TestClass, tc *model.TestCase) Rule {
		return NewAssertionExplanation(class, tc, env.AllowedFor(class.Language))
	})

	r.RegisterClass(Definition{
		ID:             IDAllAssertionsExplained,
		Description:    "every assertion of a class carries an explanation",
		DefaultEnabled: true,
	}, func(env Env, class *model.TestClass) Rule {
		return NewAllAssertionsExplained(class, env.AllowedFor(class.Language))
	})

	r.RegisterClass(Definition{
		ID:             IDProductionClass,
		Description:    "every test class has a matching production class",
		DefaultEnabled: true,
	}, func(env Env, class *model.TestClass) Rule {
		return NewProductionClass(class, env.Production)
	})

	r.RegisterCase(Definition{
		ID:             IDSimpleTestCase,
		Description:    "test cases stay below the cyclomatic complexity limit",
		DefaultEnabled: true,
	}, func(env Env, class *model.TestClass, tc *model.TestCase) Rule {
		return NewSimpleTestCase(class, tc, env.MaxComplexity)
	})

	return r
}
