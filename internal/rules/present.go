package rules

import (
	"fmt"

	"github.com/unbound-force/testnames/internal/model"
	"github.com/unbound-force/testnames/internal/naming"
)

// Rule identifiers for the tense rules.
const (
	IDPresentTense            = "present-tense"
	IDPresentSimple           = "present-simple"
	IDAllTestsInPresentSimple = "all-tests-in-present-simple"
)

// Reasons reported by the tense rules.
const (
	ReasonPresentTense  = "the test name has to be written using present tense"
	ReasonPresentSimple = "the test name has to be written using present simple"
)

// PresentTense fails when the leading word of a test name is not a
// third-person-singular present tense verb.
type PresentTense struct {
	class *model.TestClass
	test  *model.TestCase
}

// NewPresentTense builds the rule for one test case of class.
func NewPresentTense(class *model.TestClass, test *model.TestCase) *PresentTense {
	return &PresentTense{class: class, test: test}
}

// ID implements Rule.
func (r *PresentTense) ID() string { return IDPresentTense }

// Validate implements Validator. An unusable name is returned as a
// wrapped naming.ErrInvalidIdentifier.
func (r *PresentTense) Validate() error {
	if suppressed(r.ID(), r.class, r.test) {
		return nil
	}
	ok, err := naming.IsPresentTenseVerb(r.test.Name)
	if err != nil {
		return fmt.Errorf("test %q: %w", r.test.Func, err)
	}
	if !ok {
		return &WrongTestNameError{Case: r.test, Reason: ReasonPresentTense}
	}
	return nil
}

// Complaints implements Rule.
func (r *PresentTense) Complaints() []Complaint {
	return failFast(r.ID(), r.class, r.test, r.Validate())
}

// PresentSimple reports a test name whose leading words do not form a
// present simple phrase.
type PresentSimple struct {
	class *model.TestClass
	test  *model.TestCase
}

// NewPresentSimple builds the rule for one test case of class.
func NewPresentSimple(class *model.TestClass, test *model.TestCase) *PresentSimple {
	return &PresentSimple{class: class, test: test}
}

// ID implements Rule.
func (r *PresentSimple) ID() string { return IDPresentSimple }

// Complaints implements Rule.
func (r *PresentSimple) Complaints() []Complaint {
	if suppressed(r.ID(), r.class, r.test) {
		return nil
	}
	ok, err := naming.IsPresentSimple(r.test.Name)
	if err != nil {
		return []Complaint{NewCaseComplaint(r.ID(), r.class, r.test, err.Error())}
	}
	if ok {
		return nil
	}
	return []Complaint{NewCaseComplaint(r.ID(), r.class, r.test,
		fmt.Sprintf("%s: %q", ReasonPresentSimple, r.test.Name))}
}

// AllTestsInPresentSimple applies PresentSimple to every case of a
// class and wraps the failures in one compound complaint.
type AllTestsInPresentSimple struct {
	class *model.TestClass
}

// NewAllTestsInPresentSimple builds the rule for class.
func NewAllTestsInPresentSimple(class *model.TestClass) *AllTestsInPresentSimple {
	return &AllTestsInPresentSimple{class: class}
}

// ID implements Rule.
func (r *AllTestsInPresentSimple) ID() string { return IDAllTestsInPresentSimple }

// Complaints implements Rule. Children follow the declared case order.
func (r *AllTestsInPresentSimple) Complaints() []Complaint {
	if suppressed(r.ID(), r.class, nil) {
		return nil
	}
	children := eachCase(r.ID(), r.class, func(tc *model.TestCase) Rule {
		return NewPresentSimple(r.class, tc)
	})
	return Compound(r.ID(), r.class,
		fmt.Sprintf("test class %s has test names not written in present simple", r.class.Name),
		children)
}

// eachCase runs a case-level rule over every case of class in
// declaration order and concatenates the complaints. Cases that
// suppress the wrapping rule id are skipped.
func eachCase(id string, class *model.TestClass, build func(*model.TestCase) Rule) []Complaint {
	var out []Complaint
	for i := range class.Cases {
		if class.Cases[i].Suppressed.Has(id) {
			continue
		}
		out = append(out, build(&class.Cases[i]).Complaints()...)
	}
	return out
}
