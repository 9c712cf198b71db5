package rules_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unbound-force/testnames/internal/assertion"
	"github.com/unbound-force/testnames/internal/model"
	"github.com/unbound-force/testnames/internal/naming"
	"github.com/unbound-force/testnames/internal/rules"
)

func testCase(name string, calls ...model.Call) model.TestCase {
	return model.TestCase{Name: name, Func: name, Line: 10, Calls: calls}
}

func javaClass(name string, cases ...model.TestCase) *model.TestClass {
	class := model.NewTestClass(name, "src/test/java/"+name+".java",
		model.LanguageJava, cases, model.RuleSet{}, nil, nil)
	return &class
}

func javaAllowed(t *testing.T) *assertion.Allowed {
	t.Helper()
	table, err := assertion.DefaultTable()
	require.NoError(t, err)
	return assertion.NewAllowed(table, model.LanguageJava)
}

func lit(s string) model.Arg  { return model.Arg{Kind: model.ArgStringLiteral, Text: s} }
func name(s string) model.Arg { return model.Arg{Kind: model.ArgName, Text: s} }

// summary is a comparable view of a complaint tree.
type summary struct {
	ID       string
	Rule     string
	Message  string
	Subject  string
	Children []summary
}

func summarize(cs []rules.Complaint) []summary {
	var out []summary
	for _, c := range cs {
		out = append(out, summary{
			ID:       c.ID(),
			Rule:     c.Rule(),
			Message:  c.Message(),
			Subject:  c.Subject().Name(),
			Children: summarize(c.Children()),
		})
	}
	return out
}

func TestPresentTense_AcceptsThirdPersonVerb(t *testing.T) {
	class := javaClass("CalculatorTest", testCase("returnsSumOfTwoNumbers"))
	r := rules.NewPresentTense(class, &class.Cases[0])

	assert.NoError(t, r.Validate())
	assert.Empty(t, r.Complaints())
}

func TestPresentTense_RejectsBareVerb(t *testing.T) {
	class := javaClass("CalculatorTest", testCase("returnSum"))
	r := rules.NewPresentTense(class, &class.Cases[0])

	err := r.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, rules.ErrWrongTestName)

	var wrong *rules.WrongTestNameError
	require.True(t, errors.As(err, &wrong))
	assert.Equal(t, rules.ReasonPresentTense, wrong.Reason)
	assert.Equal(t, "returnSum", wrong.Case.Func)

	complaints := r.Complaints()
	require.Len(t, complaints, 1)
	assert.Equal(t, rules.ReasonPresentTense, complaints[0].Message())
	assert.Equal(t, "CalculatorTest.returnSum", complaints[0].Subject().Name())
}

func TestPresentTense_EmptyNameIsInvalid(t *testing.T) {
	class := javaClass("CalculatorTest", testCase(""))
	r := rules.NewPresentTense(class, &class.Cases[0])

	err := r.Validate()
	assert.ErrorIs(t, err, naming.ErrInvalidIdentifier)
	assert.NotErrorIs(t, err, rules.ErrWrongTestName)
	assert.Len(t, r.Complaints(), 1)
}

func TestSuppression_SilencesRuleOnClassOrCase(t *testing.T) {
	t.Run("class", func(t *testing.T) {
		class := javaClass("CalculatorTest", testCase("returnSum"))
		class.Suppressed = model.NewRuleSet(rules.IDPresentTense)
		r := rules.NewPresentTense(class, &class.Cases[0])
		assert.NoError(t, r.Validate())
		assert.Empty(t, r.Complaints())
	})

	t.Run("case", func(t *testing.T) {
		class := javaClass("CalculatorTest", testCase("checksTestData"))
		class.Cases[0].Suppressed = model.NewRuleSet(rules.IDNoTestWord)
		assert.Empty(t, rules.NewNoTestWord(class, &class.Cases[0]).Complaints())
	})

	t.Run("other rule", func(t *testing.T) {
		class := javaClass("CalculatorTest", testCase("returnSum"))
		class.Suppressed = model.NewRuleSet(rules.IDNoTestWord)
		assert.Error(t, rules.NewPresentTense(class, &class.Cases[0]).Validate())
	})
}

// violatingClass builds a class whose single case breaks every
// built-in rule.
func violatingClass() *model.TestClass {
	tc := testCase("shouldTestParse",
		model.Call{Name: "assertEquals", Args: []model.Arg{name("a"), name("b")}, Line: 11})
	tc.Complexity = 20
	return javaClass("ParserTest", tc)
}

func buildComplaints(t *testing.T, id string, env rules.Env, class *model.TestClass) []rules.Complaint {
	t.Helper()
	built, err := rules.DefaultRegistry().Build(id, env, class)
	require.NoError(t, err)
	var out []rules.Complaint
	for _, r := range built {
		out = append(out, r.Complaints()...)
	}
	return out
}

func TestSuppression_SilencesEveryRegisteredRule(t *testing.T) {
	env := rules.Env{
		Allowed:       map[model.Language]*assertion.Allowed{model.LanguageJava: javaAllowed(t)},
		MaxComplexity: 10,
	}

	for _, def := range rules.DefaultRegistry().Definitions() {
		t.Run(def.ID, func(t *testing.T) {
			require.NotEmpty(t, buildComplaints(t, def.ID, env, violatingClass()),
				"fixture must violate %s", def.ID)

			class := violatingClass()
			class.Suppressed = model.NewRuleSet(def.ID)
			assert.Empty(t, buildComplaints(t, def.ID, env, class), "class suppression")

			if def.ID == rules.IDProductionClass {
				return
			}
			class = violatingClass()
			class.Cases[0].Suppressed = model.NewRuleSet(def.ID)
			assert.Empty(t, buildComplaints(t, def.ID, env, class), "case suppression")
		})
	}
}

func TestSuppression_CaseSkipsOnlyItsOwnCompoundChild(t *testing.T) {
	class := javaClass("ParserTest", testCase("shouldParse"), testCase("parseTree"))
	class.Cases[0].Suppressed = model.NewRuleSet(rules.IDAllTestsInPresentSimple)

	complaints := rules.NewAllTestsInPresentSimple(class).Complaints()
	require.Len(t, complaints, 1)
	children := complaints[0].Children()
	require.Len(t, children, 1)
	assert.Equal(t, "ParserTest.parseTree", children[0].Subject().Name())
}

func TestPresentSimple_ReportsNonPresentSimpleNames(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"returnsSum", 0},
		{"doesNotThrow", 0},
		{"shouldReturnSum", 1},
		{"doParse", 1},
		{"processInput", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class := javaClass("ParserTest", testCase(tt.name))
			got := rules.NewPresentSimple(class, &class.Cases[0]).Complaints()
			assert.Len(t, got, tt.want)
		})
	}
}

func TestAllTestsInPresentSimple_WrapsFailuresInDeclarationOrder(t *testing.T) {
	class := javaClass("ParserTest",
		testCase("shouldParse"),
		testCase("returnsTree"),
		testCase("doValidate"),
	)

	complaints := rules.NewAllTestsInPresentSimple(class).Complaints()
	require.Len(t, complaints, 1)

	top := complaints[0]
	assert.Equal(t, rules.IDAllTestsInPresentSimple, top.Rule())
	assert.Equal(t, "ParserTest", top.Subject().Name())
	assert.Contains(t, top.Message(), "ParserTest")

	children := top.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "ParserTest.shouldParse", children[0].Subject().Name())
	assert.Equal(t, "ParserTest.doValidate", children[1].Subject().Name())
}

func TestAllTestsInPresentSimple_PassingClassHasNoCompound(t *testing.T) {
	class := javaClass("ParserTest", testCase("parsesTree"), testCase("returnsNode"))
	assert.Empty(t, rules.NewAllTestsInPresentSimple(class).Complaints())

	empty := javaClass("EmptyTest")
	assert.Empty(t, rules.NewAllTestsInPresentSimple(empty).Complaints())
}

func TestCompound_IsNeverEmpty(t *testing.T) {
	class := javaClass("ParserTest")
	assert.Nil(t, rules.Compound("x", class, "msg", nil))

	child := rules.NewClassComplaint("y", class, "child")
	got := rules.Compound("x", class, "msg", []rules.Complaint{child})
	require.Len(t, got, 1)
	assert.Len(t, rules.Flatten(got[0]), 2)
}

func TestNoTestWord_ReportsWholeWordOnly(t *testing.T) {
	class := javaClass("ParserTest",
		testCase("checksTestData"),
		testCase("returnsLatestValue"),
	)
	assert.Len(t, rules.NewNoTestWord(class, &class.Cases[0]).Complaints(), 1)
	assert.Empty(t, rules.NewNoTestWord(class, &class.Cases[1]).Complaints())
}

func TestAssertionExplanation_ReportsEachUnexplainedAssertion(t *testing.T) {
	allowed := javaAllowed(t)
	class := javaClass("CalculatorTest", testCase("addsNumbers",
		model.Call{Name: "assertEquals", Args: []model.Arg{name("a"), name("b"), lit("sum matches")}, Line: 11},
		model.Call{Name: "assertEquals", Args: []model.Arg{name("a"), name("b")}, Line: 12},
		model.Call{Name: "assertEquals", Args: []model.Arg{name("a"), name("b"), lit("  ")}, Line: 13},
		model.Call{Name: "assertEquals", Args: []model.Arg{name("a"), name("b"), name("MSG")}, Line: 14},
		model.Call{Name: "assertTrue", Args: []model.Arg{name("ok")}, Line: 15},
	))

	complaints := rules.NewAssertionExplanation(class, &class.Cases[0], allowed).Complaints()
	require.Len(t, complaints, 2)
	assert.Contains(t, complaints[0].Message(), "line 12")
	assert.Contains(t, complaints[0].Message(), "no explanation")
	assert.Contains(t, complaints[1].Message(), "line 13")
	assert.Contains(t, complaints[1].Message(), "blank explanation")
	assert.NotEqual(t, complaints[0].ID(), complaints[1].ID())
}

func TestAllAssertionsExplained_CompoundsAcrossCases(t *testing.T) {
	allowed := javaAllowed(t)
	unexplained := model.Call{Name: "assertEquals", Args: []model.Arg{name("a"), name("b")}, Line: 20}
	explained := model.Call{Name: "assertEquals", Args: []model.Arg{name("a"), name("b"), lit("why")}, Line: 21}
	class := javaClass("CalculatorTest",
		testCase("addsNumbers", unexplained),
		testCase("subtractsNumbers", explained),
		testCase("multipliesNumbers", unexplained, unexplained),
	)

	complaints := rules.NewAllAssertionsExplained(class, allowed).Complaints()
	require.Len(t, complaints, 1)
	assert.Len(t, complaints[0].Children(), 3)

	assert.Empty(t, rules.NewAllAssertionsExplained(class, nil).Complaints(),
		"nothing is recognized without an allowed set")
}

func TestProductionClass_MatchesStrippedName(t *testing.T) {
	production := []model.ProductionClass{
		{Name: "Calculator", Path: "src/main/java/Calculator.java"},
		{Name: "parser", Path: "parser.go"},
	}
	tests := []struct {
		class string
		want  int
	}{
		{"CalculatorTest", 0},
		{"CalculatorTests", 0},
		{"CalculatorIT", 0},
		{"TestCalculator", 0},
		{"parser_test", 0},
		{"LexerTest", 1},
		{"Test", 1},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			class := javaClass(tt.class)
			got := rules.NewProductionClass(class, production).Complaints()
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSimpleTestCase_ReportsComplexCases(t *testing.T) {
	tc := testCase("parsesTree")
	tc.Complexity = 12
	class := javaClass("ParserTest", tc)

	assert.Len(t, rules.NewSimpleTestCase(class, &class.Cases[0], 10).Complaints(), 1)
	assert.Empty(t, rules.NewSimpleTestCase(class, &class.Cases[0], 12).Complaints())
	assert.Empty(t, rules.NewSimpleTestCase(class, &class.Cases[0], 0).Complaints())
}

func TestJudge_ClassifiesVerdicts(t *testing.T) {
	class := javaClass("ParserTest", testCase("returnTree"), testCase("checksTestData"), testCase("parsesTree"))

	v := rules.Judge(rules.NewPresentTense(class, &class.Cases[0]))
	assert.Equal(t, rules.VerdictViolation, v.Kind)
	assert.Equal(t, rules.ReasonPresentTense, v.Reason)
	assert.True(t, v.Failed())

	v = rules.Judge(rules.NewNoTestWord(class, &class.Cases[1]))
	assert.Equal(t, rules.VerdictViolations, v.Kind)
	assert.Len(t, v.Complaints, 1)

	v = rules.Judge(rules.NewPresentTense(class, &class.Cases[2]))
	assert.Equal(t, rules.VerdictPass, v.Kind)
	assert.False(t, v.Failed())
	assert.Equal(t, "pass", v.Kind.String())
}

func TestComplaints_AreDeterministic(t *testing.T) {
	allowed := javaAllowed(t)
	build := func() []rules.Complaint {
		class := javaClass("ParserTest",
			testCase("shouldParse", model.Call{Name: "assertEquals", Args: []model.Arg{name("a"), name("b")}, Line: 3}),
			testCase("doValidate"),
		)
		var out []rules.Complaint
		out = append(out, rules.NewAllTestsInPresentSimple(class).Complaints()...)
		out = append(out, rules.NewAllAssertionsExplained(class, allowed).Complaints()...)
		return out
	}

	first := summarize(build())
	second := summarize(build())
	require.NotEmpty(t, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("complaints differ between runs (-first +second):\n%s", diff)
	}
}

func TestRegistry_DefaultRegistryListsBuiltins(t *testing.T) {
	reg := rules.DefaultRegistry()

	defs := reg.Definitions()
	require.Len(t, defs, 8)
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].ID, defs[i].ID, "definitions are sorted by ID")
	}

	assert.Equal(t, []string{
		rules.IDAllAssertionsExplained,
		rules.IDAllTestsInPresentSimple,
		rules.IDNoTestWord,
		rules.IDProductionClass,
		rules.IDSimpleTestCase,
	}, reg.DefaultEnabled())

	def, ok := reg.Definition(rules.IDPresentTense)
	require.True(t, ok)
	assert.Equal(t, rules.ScopeCase, def.Scope)
	assert.False(t, def.DefaultEnabled)
}

func TestRegistry_BuildFollowsScope(t *testing.T) {
	reg := rules.DefaultRegistry()
	class := javaClass("ParserTest", testCase("parsesTree"), testCase("returnsNode"))

	caseRules, err := reg.Build(rules.IDNoTestWord, rules.Env{}, class)
	require.NoError(t, err)
	assert.Len(t, caseRules, 2)

	classRules, err := reg.Build(rules.IDProductionClass, rules.Env{}, class)
	require.NoError(t, err)
	assert.Len(t, classRules, 1)

	_, err = reg.Build("no-such-rule", rules.Env{}, class)
	assert.Error(t, err)
}
