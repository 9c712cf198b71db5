package javasrc

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/unbound-force/testnames/internal/model"
)

// testAnnotations mark a method as a test case.
var testAnnotations = map[string]bool{
	"Test":              true,
	"ParameterizedTest": true,
	"RepeatedTest":      true,
	"TestFactory":       true,
	"TestTemplate":      true,
}

// SuppressPrefix may precede a rule ID inside @SuppressWarnings.
const SuppressPrefix = "testnames."

// File is the model extracted from one Java source file.
type File struct {
	Tests      []model.TestClass
	Production []model.ProductionClass
}

// IsTestFile reports whether a file name follows a test class naming
// convention: *Test.java, *Tests.java, *IT.java or Test*.java.
func IsTestFile(name string) bool {
	base, ok := strings.CutSuffix(path.Base(name), ".java")
	if !ok || base == "" {
		return false
	}
	return strings.HasSuffix(base, "Test") ||
		strings.HasSuffix(base, "Tests") ||
		strings.HasSuffix(base, "IT") ||
		strings.HasPrefix(base, "Test")
}

// NewParser returns a tree-sitter parser for Java. Parsers are not safe
// for concurrent use.
func NewParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return parser
}

// Parse maps the top-level type declarations of src. Classes of a test
// file become test classes, every other type a production class.
func Parse(ctx context.Context, parser *sitter.Parser, filePath string, src []byte, namespaces []string) (*File, error) {
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	f := &fileParser{
		src:     src,
		path:    filePath,
		imports: make(map[string]string),
	}
	f.scanHeader(root)

	out := &File{}
	isTest := IsTestFile(filePath)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		decl := root.NamedChild(i)
		switch decl.Type() {
		case "class_declaration":
			if isTest {
				out.Tests = append(out.Tests, f.testClass(decl, namespaces))
				continue
			}
			out.Production = append(out.Production, f.production(decl))
		case "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
			if !isTest {
				out.Production = append(out.Production, f.production(decl))
			}
		}
	}
	return out, nil
}

type fileParser struct {
	src      []byte
	path     string
	pkg      string
	imports  map[string]string // simple name -> qualified name
	wildcard []string
}

func (f *fileParser) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.src)
}

// scanHeader records the package and the imports of the file.
func (f *fileParser) scanHeader(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case "package_declaration":
			if id := firstNamed(n, "scoped_identifier", "identifier"); id != nil {
				f.pkg = f.text(id)
			}
		case "import_declaration":
			id := firstNamed(n, "scoped_identifier", "identifier")
			if id == nil || isStatic(n) {
				continue
			}
			name := f.text(id)
			if firstNamed(n, "asterisk") != nil {
				f.wildcard = append(f.wildcard, name)
				continue
			}
			f.imports[name[strings.LastIndex(name, ".")+1:]] = name
		}
	}
}

func (f *fileParser) production(decl *sitter.Node) model.ProductionClass {
	return model.ProductionClass{
		Name: f.text(decl.ChildByFieldName("name")),
		Path: f.path,
	}
}

func (f *fileParser) testClass(decl *sitter.Node, namespaces []string) model.TestClass {
	var cases []model.TestCase
	if body := decl.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			m := body.NamedChild(i)
			if m.Type() != "method_declaration" {
				continue
			}
			annotations := f.annotations(m)
			if !f.isTestMethod(annotations) {
				continue
			}
			nameNode := m.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := f.text(nameNode)
			cases = append(cases, model.TestCase{
				Name:       name,
				Func:       name,
				Line:       int(nameNode.StartPoint().Row) + 1,
				Calls:      f.calls(m.ChildByFieldName("body")),
				Suppressed: f.suppressions(annotations),
			})
		}
	}

	return model.NewTestClass(
		f.text(decl.ChildByFieldName("name")),
		f.path,
		model.LanguageJava,
		cases,
		f.suppressions(f.annotations(decl)),
		f.parents(decl),
		namespaces,
	)
}

// annotations returns the annotation nodes in the modifiers of decl.
func (f *fileParser) annotations(decl *sitter.Node) []*sitter.Node {
	mods := firstNamed(decl, "modifiers")
	if mods == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(mods.NamedChildCount()); i++ {
		n := mods.NamedChild(i)
		if n.Type() == "marker_annotation" || n.Type() == "annotation" {
			out = append(out, n)
		}
	}
	return out
}

// annotationName returns the simple name of an annotation.
func (f *fileParser) annotationName(n *sitter.Node) string {
	name := f.text(n.ChildByFieldName("name"))
	return name[strings.LastIndex(name, ".")+1:]
}

func (f *fileParser) isTestMethod(annotations []*sitter.Node) bool {
	for _, a := range annotations {
		if testAnnotations[f.annotationName(a)] {
			return true
		}
	}
	return false
}

// suppressions collects rule IDs from @SuppressWarnings annotations.
func (f *fileParser) suppressions(annotations []*sitter.Node) model.RuleSet {
	var ids []string
	for _, a := range annotations {
		if a.Type() != "annotation" || f.annotationName(a) != "SuppressWarnings" {
			continue
		}
		args := a.ChildByFieldName("arguments")
		if args == nil {
			continue
		}
		walk(args, func(n *sitter.Node) bool {
			if n.Type() == "string_literal" {
				id := strings.TrimPrefix(unquote(f.text(n)), SuppressPrefix)
				ids = append(ids, id)
				return false
			}
			return true
		})
	}
	return model.NewRuleSet(ids...)
}

// parents resolves the superclass and interfaces of decl to qualified
// names.
func (f *fileParser) parents(decl *sitter.Node) []string {
	var out []string
	collect := func(n *sitter.Node) {
		if n == nil {
			return
		}
		walk(n, func(t *sitter.Node) bool {
			switch t.Type() {
			case "type_identifier":
				out = append(out, f.resolve(f.text(t)))
				return false
			case "scoped_type_identifier":
				out = append(out, f.text(t))
				return false
			case "type_arguments":
				return false
			}
			return true
		})
	}
	collect(decl.ChildByFieldName("superclass"))
	collect(decl.ChildByFieldName("interfaces"))
	return out
}

// resolve qualifies a simple type name through the imports. Names
// covered only by a wildcard import resolve to the first wildcard
// package; everything else to the file's own package.
func (f *fileParser) resolve(name string) string {
	if q, ok := f.imports[name]; ok {
		return q
	}
	if len(f.wildcard) > 0 {
		return f.wildcard[0] + "." + name
	}
	if f.pkg == "" {
		return name
	}
	return f.pkg + "." + name
}

// calls returns the method invocations below body in source order.
func (f *fileParser) calls(body *sitter.Node) []model.Call {
	if body == nil {
		return nil
	}
	var out []model.Call
	walk(body, func(n *sitter.Node) bool {
		if n.Type() != "method_invocation" {
			return true
		}
		call := model.Call{
			Qualifier: f.text(n.ChildByFieldName("object")),
			Name:      f.text(n.ChildByFieldName("name")),
			Line:      int(n.StartPoint().Row) + 1,
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				call.Args = append(call.Args, f.arg(args.NamedChild(i)))
			}
		}
		out = append(out, call)
		return true
	})
	return out
}

func (f *fileParser) arg(n *sitter.Node) model.Arg {
	switch n.Type() {
	case "string_literal":
		return model.Arg{Kind: model.ArgStringLiteral, Text: unquote(f.text(n))}
	case "identifier":
		return model.Arg{Kind: model.ArgName, Text: f.text(n)}
	}
	return model.Arg{Kind: model.ArgOther, Text: f.text(n)}
}

// unquote returns the content of a Java string literal or text block.
func unquote(lit string) string {
	if body, ok := strings.CutPrefix(lit, `"""`); ok {
		body = strings.TrimSuffix(body, `"""`)
		return strings.TrimPrefix(body, "\n")
	}
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	return strings.TrimSuffix(strings.TrimPrefix(lit, `"`), `"`)
}

// isStatic reports whether an import declaration is a static import.
func isStatic(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "static" {
			return true
		}
	}
	return false
}

// firstNamed returns the first named child of n with one of the given
// types.
func firstNamed(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

// walk visits n and its named descendants depth first, in source
// order. Children are skipped when visit returns false.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if !visit(n) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}
