package rules

import (
	"fmt"

	"github.com/unbound-force/testnames/internal/model"
)

// Subject is the entity a complaint refers to: a whole test class, or
// one test case inside it.
type Subject struct {
	Class *model.TestClass

	// Case is nil when the complaint targets the whole class.
	Case *model.TestCase
}

// Name returns "Class" or "Class.case".
func (s Subject) Name() string {
	if s.Class == nil {
		return ""
	}
	if s.Case == nil {
		return s.Class.Name
	}
	return s.Class.Name + "." + s.Case.Func
}

// Location returns "path" or "path:line".
func (s Subject) Location() string {
	if s.Class == nil {
		return ""
	}
	if s.Case == nil || s.Case.Line == 0 {
		return s.Class.Path
	}
	return fmt.Sprintf("%s:%d", s.Class.Path, s.Case.Line)
}

// Complaint is an immutable rule violation. A compound complaint wraps
// the complaints of the sub-entities that caused it.
type Complaint interface {
	// ID is stable across runs for the same rule and subject.
	ID() string

	// Rule is the identifier of the rule that produced the complaint.
	Rule() string

	// Message is the human-readable explanation.
	Message() string

	Subject() Subject

	// Children are the wrapped complaints, empty for leaves.
	Children() []Complaint
}

type complaint struct {
	id       string
	rule     string
	message  string
	subject  Subject
	children []Complaint
}

func (c *complaint) ID() string      { return c.id }
func (c *complaint) Rule() string    { return c.rule }
func (c *complaint) Message() string { return c.message }
func (c *complaint) Subject() Subject {
	return c.subject
}

func (c *complaint) Children() []Complaint {
	out := make([]Complaint, len(c.children))
	copy(out, c.children)
	return out
}

// NewCaseComplaint builds a leaf complaint about one test case. The
// discriminator keeps IDs distinct when a rule reports the same case
// more than once (e.g. one complaint per assertion line).
func NewCaseComplaint(rule string, class *model.TestClass, tc *model.TestCase, message string, discriminator ...string) Complaint {
	parts := append([]string{rule, class.Path, class.Name, tc.Func}, discriminator...)
	return &complaint{
		id:      model.GenerateID(parts...),
		rule:    rule,
		message: message,
		subject: Subject{Class: class, Case: tc},
	}
}

// NewClassComplaint builds a leaf complaint about a whole test class.
func NewClassComplaint(rule string, class *model.TestClass, message string) Complaint {
	return &complaint{
		id:      model.GenerateID(rule, class.Path, class.Name),
		rule:    rule,
		message: message,
		subject: Subject{Class: class},
	}
}

// Compound wraps children into a single class-level complaint. It
// returns nil when children is empty, so a compound complaint is never
// emitted without children.
func Compound(rule string, class *model.TestClass, message string, children []Complaint) []Complaint {
	if len(children) == 0 {
		return nil
	}
	kept := make([]Complaint, len(children))
	copy(kept, children)
	return []Complaint{&complaint{
		id:       model.GenerateID(rule, class.Path, class.Name),
		rule:     rule,
		message:  message,
		subject:  Subject{Class: class},
		children: kept,
	}}
}

// Flatten returns the complaint followed by all of its descendants,
// depth first.
func Flatten(c Complaint) []Complaint {
	out := []Complaint{c}
	for _, child := range c.Children() {
		out = append(out, Flatten(child)...)
	}
	return out
}
