// Package rules implements the naming and assertion rules and the
// complaint model they report through.
//
// A rule is built for exactly one entity (a test case within its class,
// or a whole test class) and is discarded after evaluation. Rules are
// pure: the same input always yields the same complaints in the same
// order.
package rules

import (
	"errors"
	"fmt"

	"github.com/unbound-force/testnames/internal/model"
)

// Rule produces zero or more complaints for the entity it was built for.
type Rule interface {
	// ID returns the identifier used for configuration and suppression.
	ID() string

	// Complaints reports every violation found, in a deterministic order.
	Complaints() []Complaint
}

// Validator is a fail-fast rule that checks a single hard constraint.
type Validator interface {
	Rule

	// Validate returns nil when the entity passes, a
	// *WrongTestNameError when it violates the rule, and any other error
	// when the entity cannot be checked at all.
	Validate() error
}

// ErrWrongTestName is matched by every *WrongTestNameError.
var ErrWrongTestName = errors.New("wrong test name")

// WrongTestNameError is the named violation signaled by fail-fast
// naming rules.
type WrongTestNameError struct {
	Case   *model.TestCase
	Reason string
}

func (e *WrongTestNameError) Error() string {
	return fmt.Sprintf("wrong test name %q: %s", e.Case.Func, e.Reason)
}

// Unwrap lets errors.Is match ErrWrongTestName.
func (e *WrongTestNameError) Unwrap() error { return ErrWrongTestName }

// VerdictKind tags a Verdict.
type VerdictKind int

// Verdict kinds.
const (
	VerdictPass VerdictKind = iota
	VerdictViolation
	VerdictViolations
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictPass:
		return "pass"
	case VerdictViolation:
		return "violation"
	case VerdictViolations:
		return "violations"
	}
	return fmt.Sprintf("VerdictKind(%d)", int(k))
}

// Verdict unifies the fail-fast and the collecting conventions.
type Verdict struct {
	Kind VerdictKind

	// Reason is set for VerdictViolation.
	Reason string

	// Err is the error returned by Validate for VerdictViolation.
	Err error

	// Complaints holds the reported complaints for both violation kinds.
	Complaints []Complaint
}

// Failed reports whether the verdict carries any violation.
func (v Verdict) Failed() bool { return v.Kind != VerdictPass }

// Judge evaluates a rule. Validators are judged through Validate and
// yield VerdictViolation; other rules yield VerdictViolations when they
// report at least one complaint.
func Judge(r Rule) Verdict {
	if v, ok := r.(Validator); ok {
		err := v.Validate()
		if err == nil {
			return Verdict{Kind: VerdictPass}
		}
		return Verdict{
			Kind:       VerdictViolation,
			Reason:     reasonOf(err),
			Err:        err,
			Complaints: r.Complaints(),
		}
	}
	complaints := r.Complaints()
	if len(complaints) == 0 {
		return Verdict{Kind: VerdictPass}
	}
	return Verdict{Kind: VerdictViolations, Complaints: complaints}
}

// reasonOf extracts the human-readable reason from a Validate error.
func reasonOf(err error) string {
	var wrong *WrongTestNameError
	if errors.As(err, &wrong) {
		return wrong.Reason
	}
	return err.Error()
}

// suppressed reports whether id is suppressed on the class or on the
// case (when tc is non-nil).
func suppressed(id string, class *model.TestClass, tc *model.TestCase) bool {
	if class != nil && class.Suppressed.Has(id) {
		return true
	}
	return tc != nil && tc.Suppressed.Has(id)
}

// failFast adapts a Validate result into the complaint form.
func failFast(id string, class *model.TestClass, tc *model.TestCase, err error) []Complaint {
	if err == nil {
		return nil
	}
	return []Complaint{NewCaseComplaint(id, class, tc, reasonOf(err))}
}
