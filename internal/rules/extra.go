package rules

import (
	"fmt"
	"strings"

	"github.com/unbound-force/testnames/internal/assertion"
	"github.com/unbound-force/testnames/internal/model"
	"github.com/unbound-force/testnames/internal/naming"
)

// Rule identifiers for the remaining rules.
const (
	IDNoTestWord             = "no-test-word"
	IDAssertionExplanation   = "assertion-explanation"
	IDAllAssertionsExplained = "all-assertions-explained"
	IDProductionClass        = "production-class"
	IDSimpleTestCase         = "simple-test-case"
)

// NoTestWord reports test names containing the word "test".
type NoTestWord struct {
	class *model.TestClass
	test  *model.TestCase
}

// NewNoTestWord builds the rule for one test case of class.
func NewNoTestWord(class *model.TestClass, test *model.TestCase) *NoTestWord {
	return &NoTestWord{class: class, test: test}
}

// ID implements Rule.
func (r *NoTestWord) ID() string { return IDNoTestWord }

// Complaints implements Rule.
func (r *NoTestWord) Complaints() []Complaint {
	if suppressed(r.ID(), r.class, r.test) {
		return nil
	}
	found, err := naming.ContainsWord(r.test.Name, "test")
	if err != nil {
		return []Complaint{NewCaseComplaint(r.ID(), r.class, r.test, err.Error())}
	}
	if !found {
		return nil
	}
	return []Complaint{NewCaseComplaint(r.ID(), r.class, r.test,
		fmt.Sprintf("the test name shouldn't contain the word 'test': %q", r.test.Name))}
}

// AssertionExplanation reports every recognized assertion of a test
// case that carries no explanation, one complaint per assertion.
type AssertionExplanation struct {
	class   *model.TestClass
	test    *model.TestCase
	allowed *assertion.Allowed
}

// NewAssertionExplanation builds the rule for one test case of class.
func NewAssertionExplanation(class *model.TestClass, test *model.TestCase, allowed *assertion.Allowed) *AssertionExplanation {
	return &AssertionExplanation{class: class, test: test, allowed: allowed}
}

// ID implements Rule.
func (r *AssertionExplanation) ID() string { return IDAssertionExplanation }

// Complaints implements Rule.
func (r *AssertionExplanation) Complaints() []Complaint {
	if suppressed(r.ID(), r.class, r.test) {
		return nil
	}
	var out []Complaint
	for i, a := range assertion.Assertions(*r.test, r.allowed) {
		msg, ok := a.Explanation()
		if ok && strings.TrimSpace(msg) != "" {
			continue
		}
		call := a.Call()
		text := fmt.Sprintf("assertion %s at line %d has no explanation", call, call.Line)
		if ok {
			text = fmt.Sprintf("assertion %s at line %d has a blank explanation", call, call.Line)
		}
		out = append(out, NewCaseComplaint(r.ID(), r.class, r.test, text,
			fmt.Sprintf("%d:%d", call.Line, i)))
	}
	return out
}

// AllAssertionsExplained wraps the AssertionExplanation complaints of
// every case of a class into one compound complaint.
type AllAssertionsExplained struct {
	class   *model.TestClass
	allowed *assertion.Allowed
}

// NewAllAssertionsExplained builds the rule for class.
func NewAllAssertionsExplained(class *model.TestClass, allowed *assertion.Allowed) *AllAssertionsExplained {
	return &AllAssertionsExplained{class: class, allowed: allowed}
}

// ID implements Rule.
func (r *AllAssertionsExplained) ID() string { return IDAllAssertionsExplained }

// Complaints implements Rule.
func (r *AllAssertionsExplained) Complaints() []Complaint {
	if suppressed(r.ID(), r.class, nil) {
		return nil
	}
	children := eachCase(r.ID(), r.class, func(tc *model.TestCase) Rule {
		return NewAssertionExplanation(r.class, tc, r.allowed)
	})
	return Compound(r.ID(), r.class,
		fmt.Sprintf("test class %s has assertions without explanation", r.class.Name),
		children)
}

// Affixes removed from a test class name to find its production class.
var (
	testSuffixes = []string{"_test", "Tests", "Test", "IT"}
	testPrefixes = []string{"Test"}
)

// ProductionClass reports a test class with no production class of
// the matching name.
type ProductionClass struct {
	class      *model.TestClass
	production []model.ProductionClass
}

// NewProductionClass builds the rule for class.
func NewProductionClass(class *model.TestClass, production []model.ProductionClass) *ProductionClass {
	return &ProductionClass{class: class, production: production}
}

// ID implements Rule.
func (r *ProductionClass) ID() string { return IDProductionClass }

// Complaints implements Rule.
func (r *ProductionClass) Complaints() []Complaint {
	if suppressed(r.ID(), r.class, nil) {
		return nil
	}
	candidates := productionNames(r.class.Name)
	for _, p := range r.production {
		for _, name := range candidates {
			if p.Name == name {
				return nil
			}
		}
	}
	return []Complaint{NewClassComplaint(r.ID(), r.class,
		fmt.Sprintf("test class %s doesn't have a corresponding production class", r.class.Name))}
}

// productionNames returns the production class names a test class
// name may refer to.
func productionNames(name string) []string {
	var out []string
	for _, suffix := range testSuffixes {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok && trimmed != "" {
			out = append(out, trimmed)
		}
	}
	for _, prefix := range testPrefixes {
		if trimmed, ok := strings.CutPrefix(name, prefix); ok && trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SimpleTestCase reports a test case whose cyclomatic complexity
// exceeds a maximum. Cases with unknown complexity pass.
type SimpleTestCase struct {
	class *model.TestClass
	test  *model.TestCase
	max   int
}

// NewSimpleTestCase builds the rule for one test case of class. A
// non-positive max disables the check.
func NewSimpleTestCase(class *model.TestClass, test *model.TestCase, max int) *SimpleTestCase {
	return &SimpleTestCase{class: class, test: test, max: max}
}

// ID implements Rule.
func (r *SimpleTestCase) ID() string { return IDSimpleTestCase }

// Complaints implements Rule.
func (r *SimpleTestCase) Complaints() []Complaint {
	if suppressed(r.ID(), r.class, r.test) || r.max <= 0 || r.test.Complexity <= r.max {
		return nil
	}
	return []Complaint{NewCaseComplaint(r.ID(), r.class, r.test,
		fmt.Sprintf("test case complexity %d exceeds %d", r.test.Complexity, r.max))}
}
