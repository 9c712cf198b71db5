// Package loader wraps go/packages to build the test model of Go
// packages: every _test.go file becomes a test class and every other
// file a production class.
package loader

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fzipp/gocyclo"
	"golang.org/x/tools/go/packages"

	"github.com/unbound-force/testnames/internal/model"
)

// LoadMode is the minimum set of flags needed to map syntax and
// resolve embedded types.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo

// SuppressDirective marks a comment suppressing rules, e.g.
// "//testnames:suppress no-test-word,present-simple". In the doc
// comment of a test function it applies to that case; anywhere else
// it applies to the whole file.
const SuppressDirective = "//testnames:suppress"

// Options configures LoadProject.
type Options struct {
	// Dir is the directory patterns are resolved in. Empty means the
	// working directory. Class paths are reported relative to it.
	Dir string

	// Namespaces mark framework extension classes. Nil means
	// model.DefaultExtensionNamespaces.
	Namespaces []string
}

// LoadProject loads the packages matching patterns together with their
// tests and maps them to a project. It fails when any package has
// errors.
func LoadProject(patterns []string, opts Options) (*model.StaticProject, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	namespaces := opts.Namespaces
	if namespaces == nil {
		namespaces = model.DefaultExtensionNamespaces
	}

	cfg := &packages.Config{
		Mode:  LoadMode,
		Dir:   opts.Dir,
		Tests: true,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages %v: %w", patterns, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for patterns %v", patterns)
	}

	var errs []string
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e.Error())
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("packages %v have errors:\n  %s",
			patterns, strings.Join(errs, "\n  "))
	}

	base := opts.Dir
	if base == "" {
		base, _ = os.Getwd()
	}

	b := builder{
		base:       base,
		namespaces: namespaces,
		seen:       make(map[string]bool),
	}
	for _, pkg := range pkgs {
		b.add(pkg)
	}

	slices.SortFunc(b.project.Tests, func(x, y model.TestClass) int {
		return strings.Compare(x.Path, y.Path)
	})
	slices.SortFunc(b.project.Production, func(x, y model.ProductionClass) int {
		return strings.Compare(x.Path, y.Path)
	})
	return &b.project, nil
}

type builder struct {
	base       string
	namespaces []string
	seen       map[string]bool
	project    model.StaticProject
}

// add maps the files of one package. A package is loaded up to three
// times with Tests set; files already seen are skipped.
func (b *builder) add(pkg *packages.Package) {
	if strings.HasSuffix(pkg.ID, ".test") {
		return
	}
	variant := strings.Contains(pkg.ID, " [")

	for _, file := range pkg.Syntax {
		filename := pkg.Fset.Position(file.Package).Filename
		if filename == "" || b.seen[filename] {
			continue
		}
		isTest := strings.HasSuffix(filename, "_test.go")
		if !isTest && variant {
			continue
		}
		b.seen[filename] = true

		path := b.rel(filename)
		name := strings.TrimSuffix(filepath.Base(filename), ".go")
		if !isTest {
			b.project.Production = append(b.project.Production, model.ProductionClass{
				Name: name,
				Path: path,
			})
			continue
		}
		b.project.Tests = append(b.project.Tests, b.testClass(pkg, file, name, path))
	}
}

func (b *builder) rel(filename string) string {
	if b.base == "" {
		return filename
	}
	rel, err := filepath.Rel(b.base, filename)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filename
	}
	return filepath.ToSlash(rel)
}

// testClass maps one _test.go file.
func (b *builder) testClass(pkg *packages.Package, file *ast.File, name, path string) model.TestClass {
	docs := make(map[*ast.CommentGroup]bool)
	var cases []model.TestCase
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !isTestFunction(fn) {
			continue
		}
		if fn.Doc != nil {
			docs[fn.Doc] = true
		}
		cases = append(cases, model.TestCase{
			Name:       CaseName(fn.Name.Name),
			Func:       fn.Name.Name,
			Line:       pkg.Fset.Position(fn.Pos()).Line,
			Calls:      collectCalls(pkg.Fset, fn.Body),
			Suppressed: suppressions(fn.Doc),
			Complexity: gocyclo.Complexity(fn),
		})
	}

	var classSuppressed []string
	for _, group := range file.Comments {
		if docs[group] {
			continue
		}
		classSuppressed = append(classSuppressed, suppressions(group).Items()...)
	}

	return model.NewTestClass(name, path, model.LanguageGo, cases,
		model.NewRuleSet(classSuppressed...), embeddedTypes(pkg.TypesInfo, file), b.namespaces)
}

// CaseName derives the name naming rules check from a test function
// name: the "Test" prefix and leading underscores are dropped and the
// first rune is lower-cased. "TestReturnsSum" becomes "returnsSum".
func CaseName(funcName string) string {
	name := strings.TrimPrefix(funcName, "Test")
	name = strings.TrimLeft(name, "_")
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

// isTestFunction checks whether the function declaration has the
// Test* name prefix and accepts a single *testing.T parameter.
func isTestFunction(fn *ast.FuncDecl) bool {
	if fn.Recv != nil || fn.Body == nil {
		return false
	}
	if !strings.HasPrefix(fn.Name.Name, "Test") || fn.Name.Name == "TestMain" {
		return false
	}
	if fn.Type.Params == nil || len(fn.Type.Params.List) != 1 {
		return false
	}
	return isTestingTParam(fn.Type.Params.List[0])
}

// isTestingTParam checks whether a field is of type *testing.T.
func isTestingTParam(field *ast.Field) bool {
	star, ok := field.Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	sel, ok := star.X.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}
	return ident.Name == "testing" && sel.Sel.Name == "T"
}

// suppressions parses the suppress directives of a comment group.
func suppressions(group *ast.CommentGroup) model.RuleSet {
	if group == nil {
		return model.RuleSet{}
	}
	var ids []string
	for _, c := range group.List {
		rest, ok := strings.CutPrefix(c.Text, SuppressDirective)
		if !ok {
			continue
		}
		for _, id := range strings.FieldsFunc(rest, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		}) {
			ids = append(ids, id)
		}
	}
	return model.NewRuleSet(ids...)
}

// collectCalls returns the call expressions below body in source
// order.
func collectCalls(fset *token.FileSet, body *ast.BlockStmt) []model.Call {
	var calls []model.Call
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		c := model.Call{Line: fset.Position(call.Pos()).Line}
		switch fun := unwrapIndex(call.Fun).(type) {
		case *ast.Ident:
			c.Name = fun.Name
		case *ast.SelectorExpr:
			c.Qualifier = types.ExprString(fun.X)
			c.Name = fun.Sel.Name
		default:
			return true
		}
		for _, arg := range call.Args {
			c.Args = append(c.Args, toArg(arg))
		}
		calls = append(calls, c)
		return true
	})
	return calls
}

// unwrapIndex strips explicit type arguments from a generic call.
func unwrapIndex(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.IndexExpr:
		return e.X
	case *ast.IndexListExpr:
		return e.X
	}
	return expr
}

func toArg(expr ast.Expr) model.Arg {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.STRING {
			if s, err := strconv.Unquote(e.Value); err == nil {
				return model.Arg{Kind: model.ArgStringLiteral, Text: s}
			}
		}
	case *ast.Ident:
		return model.Arg{Kind: model.ArgName, Text: e.Name}
	}
	return model.Arg{Kind: model.ArgOther, Text: types.ExprString(expr)}
}

// embeddedTypes returns the qualified names of the types embedded in
// the struct types declared in file, e.g.
// "github.com/stretchr/testify/suite.Suite".
func embeddedTypes(info *types.Info, file *ast.File) []string {
	var parents []string
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		st, ok := spec.Type.(*ast.StructType)
		if !ok || st.Fields == nil {
			return true
		}
		for _, field := range st.Fields.List {
			if len(field.Names) > 0 {
				continue
			}
			if name := qualifiedName(info, field.Type); name != "" && !slices.Contains(parents, name) {
				parents = append(parents, name)
			}
		}
		return true
	})
	return parents
}

func qualifiedName(info *types.Info, expr ast.Expr) string {
	if info != nil {
		t := types.Unalias(info.TypeOf(expr))
		if ptr, ok := t.(*types.Pointer); ok {
			t = types.Unalias(ptr.Elem())
		}
		if named, ok := t.(*types.Named); ok {
			obj := named.Obj()
			if obj.Pkg() == nil {
				return obj.Name()
			}
			return obj.Pkg().Path() + "." + obj.Name()
		}
	}
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	return types.ExprString(expr)
}
