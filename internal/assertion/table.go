// Package assertion recognizes assertion calls in test bodies and
// extracts the human-readable explanation passed to them.
package assertion

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/testnames/internal/model"
)

// TableVersion is the only table format version understood.
const TableVersion = 1

// DefaultThreshold is the number of positional arguments an assertion
// takes before an explanation. Methods that cannot take more arguments
// than this never carry an explanation.
const DefaultThreshold = 2

//go:embed assertions.yaml
var defaultTableYAML []byte

// Library is one assertion library in the table.
type Library struct {
	Name     string         `yaml:"name"`
	Language model.Language `yaml:"language"`

	// Qualifiers restricts matching calls to these receivers. An empty
	// string entry matches unqualified calls; an empty list matches
	// any qualifier.
	Qualifiers []string `yaml:"qualifiers"`

	// Methods maps a method name to the argument count of a call that
	// passes an explanation.
	Methods map[string]int `yaml:"methods"`
}

// Table is the versioned list of recognized assertion libraries.
type Table struct {
	Version   int       `yaml:"version"`
	Libraries []Library `yaml:"libraries"`
}

// DefaultTable returns the table shipped with the binary.
func DefaultTable() (*Table, error) {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded assertion table: %w", err)
	}
	return t, nil
}

// LoadTable reads and validates a table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assertion table %q: %w", path, err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("assertion table %q: %w", path, err)
	}
	return t, nil
}

// ParseTable decodes and validates a YAML table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing table: %w", err)
	}
	if t.Version != TableVersion {
		return nil, fmt.Errorf("unsupported table version %d (want %d)", t.Version, TableVersion)
	}
	for _, lib := range t.Libraries {
		if lib.Name == "" {
			return nil, fmt.Errorf("library without a name")
		}
		if lib.Language == "" {
			return nil, fmt.Errorf("library %q has no language", lib.Name)
		}
		for method, arity := range lib.Methods {
			if arity <= 0 {
				return nil, fmt.Errorf("library %q: method %q has invalid arity %d",
					lib.Name, method, arity)
			}
		}
	}
	return &t, nil
}

// entry is one recognized method of one library.
type entry struct {
	library    string
	qualifiers map[string]bool // nil matches any qualifier
	arity      int
}

// Allowed is the read-only set of explanation-bearing assertion
// methods for one language. Build it once per run with NewAllowed and
// share it; it is never mutated after construction.
type Allowed struct {
	language model.Language
	methods  map[string][]entry
}

// NewAllowed keeps, from the libraries of the given language, every
// method whose explanation arity exceeds DefaultThreshold.
func NewAllowed(t *Table, lang model.Language) *Allowed {
	a := &Allowed{
		language: lang,
		methods:  make(map[string][]entry),
	}
	if t == nil {
		return a
	}
	for _, lib := range t.Libraries {
		if lib.Language != lang {
			continue
		}
		var quals map[string]bool
		if len(lib.Qualifiers) > 0 {
			quals = make(map[string]bool, len(lib.Qualifiers))
			for _, q := range lib.Qualifiers {
				quals[q] = true
			}
		}
		for method, arity := range lib.Methods {
			if arity <= DefaultThreshold {
				continue
			}
			a.methods[method] = append(a.methods[method], entry{
				library:    lib.Name,
				qualifiers: quals,
				arity:      arity,
			})
		}
	}
	return a
}

// Language returns the language the set was built for.
func (a *Allowed) Language() model.Language { return a.language }

// Names returns the allowed method names in sorted order.
func (a *Allowed) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.methods))
	for name := range a.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is an allowed method, ignoring qualifiers.
func (a *Allowed) Has(name string) bool {
	if a == nil {
		return false
	}
	_, ok := a.methods[name]
	return ok
}

// Recognizes reports whether the call's name and qualifier match an
// allowed method.
func (a *Allowed) Recognizes(call model.Call) bool {
	_, ok := a.lookup(call)
	return ok
}

// lookup returns the explanation arity of the matching entry.
func (a *Allowed) lookup(call model.Call) (int, bool) {
	if a == nil {
		return 0, false
	}
	for _, e := range a.methods[call.Name] {
		if e.qualifiers == nil || e.qualifiers[call.Qualifier] {
			return e.arity, true
		}
	}
	return 0, false
}
