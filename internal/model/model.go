// Package model defines the read-only entity model the rules consume:
// production classes, test classes, test cases and the call
// expressions found in test bodies.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Language identifies the source language a test class was built from.
type Language string

// Supported languages.
const (
	LanguageGo   Language = "go"
	LanguageJava Language = "java"
)

// DefaultExtensionNamespaces lists the package namespaces whose types
// mark a test class as test-framework glue rather than a real test.
var DefaultExtensionNamespaces = []string{
	"org.junit.jupiter.api.extension",
}

// ProductionClass is a non-test class (or Go source file) discovered
// in the project. Its identity is Name.
type ProductionClass struct {
	// Name is the simple name without extension (e.g. "Calculator").
	Name string `json:"name"`

	// Path is the source file the class was found in.
	Path string `json:"path"`
}

// ArgKind classifies the shape of a call argument.
type ArgKind string

// Argument kinds.
const (
	// ArgStringLiteral is a string literal; Arg.Text holds its content.
	ArgStringLiteral ArgKind = "string_literal"

	// ArgName is a bare identifier reference.
	ArgName ArgKind = "name"

	// ArgOther is any other expression (call, concatenation, selector).
	ArgOther ArgKind = "other"
)

// Arg is one argument of a call expression.
type Arg struct {
	Kind ArgKind `json:"kind"`
	Text string  `json:"text"`
}

// Call is a call expression found in a test case body.
type Call struct {
	// Qualifier is the receiver or package expression ("assert",
	// "Assertions"), empty for unqualified calls.
	Qualifier string `json:"qualifier,omitempty"`

	// Name is the called method or function name.
	Name string `json:"name"`

	// Args are the call arguments in declaration order.
	Args []Arg `json:"args"`

	// Line is the 1-based source line of the call.
	Line int `json:"line"`
}

// Last returns the last argument of the call.
func (c Call) Last() (Arg, bool) {
	if len(c.Args) == 0 {
		return Arg{}, false
	}
	return c.Args[len(c.Args)-1], true
}

// String renders the call head, e.g. "assert.Equal".
func (c Call) String() string {
	if c.Qualifier == "" {
		return c.Name
	}
	return c.Qualifier + "." + c.Name
}

// TestCase is one test method or function.
type TestCase struct {
	// Name is the normalized name naming rules operate on.
	Name string `json:"name"`

	// Func is the name as declared in source (e.g. "TestReturnsSum").
	Func string `json:"func"`

	// Line is the 1-based declaration line.
	Line int `json:"line"`

	// Calls are the call expressions in the body, in source order.
	Calls []Call `json:"calls"`

	// Suppressed holds rule identifiers suppressed on the case itself.
	Suppressed RuleSet `json:"suppressed"`

	// Complexity is the cyclomatic complexity of the body, 0 when
	// unknown.
	Complexity int `json:"complexity"`
}

// TestClass is a test class (Java) or a test file (Go).
type TestClass struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Language Language `json:"language"`

	// Cases are the test cases in declaration order. Never nil when
	// built with NewTestClass.
	Cases []TestCase `json:"cases"`

	// Suppressed holds rule identifiers suppressed for the whole class.
	Suppressed RuleSet `json:"suppressed"`

	// Parents are the fully qualified parent types (superclass,
	// interfaces, embedded types).
	Parents []string `json:"parents"`

	// FrameworkExtension is derived once from Parents.
	FrameworkExtension bool `json:"framework_extension"`
}

// NewTestClass builds a TestClass, normalizing Cases to a non-nil
// slice and deriving FrameworkExtension from parents and namespaces.
func NewTestClass(
	name, path string,
	lang Language,
	cases []TestCase,
	suppressed RuleSet,
	parents []string,
	namespaces []string,
) TestClass {
	if cases == nil {
		cases = []TestCase{}
	}
	return TestClass{
		Name:               name,
		Path:               path,
		Language:           lang,
		Cases:              cases,
		Suppressed:         suppressed,
		Parents:            parents,
		FrameworkExtension: IsFrameworkExtension(parents, namespaces),
	}
}

// IsFrameworkExtension reports whether any parent type belongs to one
// of the given namespaces. A type belongs to a namespace when its
// qualified name starts with the namespace followed by "." or "/".
func IsFrameworkExtension(parents, namespaces []string) bool {
	for _, parent := range parents {
		for _, ns := range namespaces {
			if ns == "" {
				continue
			}
			if strings.HasPrefix(parent, ns+".") || strings.HasPrefix(parent, ns+"/") {
				return true
			}
		}
	}
	return false
}

// Project is the collection of classes a run inspects.
type Project interface {
	ProductionClasses() []ProductionClass
	TestClasses() []TestClass
}

// StaticProject is an in-memory Project.
type StaticProject struct {
	Production []ProductionClass
	Tests      []TestClass
}

// ProductionClasses returns the production classes.
func (p StaticProject) ProductionClasses() []ProductionClass { return p.Production }

// TestClasses returns the test classes.
func (p StaticProject) TestClasses() []TestClass { return p.Tests }

// GenerateID produces a stable identifier from the given parts: a
// sha256 hash truncated to 8 hex characters, prefixed with "tn-".
func GenerateID(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("tn-%x", hash[:4])
}
