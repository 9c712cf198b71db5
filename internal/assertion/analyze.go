package assertion

import "github.com/unbound-force/testnames/internal/model"

// UnknownMessage is the explanation recorded when the last argument is
// a constant or variable whose value cannot be resolved statically.
const UnknownMessage = "Unknown message"

// Assertion is the result of analyzing one call expression.
type Assertion struct {
	call        model.Call
	assertion   bool
	explanation string
	explained   bool
}

// Call returns the analyzed call.
func (a Assertion) Call() model.Call { return a.call }

// IsAssertion reports whether the call is a recognized assertion that
// passes enough arguments to carry an explanation.
func (a Assertion) IsAssertion() bool { return a.assertion }

// Explanation returns the explanation and whether one was found.
func (a Assertion) Explanation() (string, bool) {
	return a.explanation, a.explained
}

// Analyze inspects a call. The call is an assertion when its name is
// allowed and it has more arguments than the threshold. Explanation
// extraction does not depend on the name: whenever the call carries an
// argument beyond the threshold, the last argument is inspected.
func Analyze(call model.Call, allowed *Allowed) Assertion {
	arity, recognized := allowed.lookup(call)
	if !recognized {
		arity = DefaultThreshold + 1
	}

	result := Assertion{call: call}
	if len(call.Args) < arity {
		return result
	}
	result.assertion = recognized

	last, _ := call.Last()
	result.explanation, result.explained = message(last)
	return result
}

// Assertions analyzes every call in a test case and keeps the ones
// whose name and qualifier are recognized, in source order.
func Assertions(tc model.TestCase, allowed *Allowed) []Assertion {
	var out []Assertion
	for _, call := range tc.Calls {
		if !allowed.Recognizes(call) {
			continue
		}
		out = append(out, Analyze(call, allowed))
	}
	return out
}

// message extracts an explanation from an argument expression.
func message(arg model.Arg) (string, bool) {
	switch arg.Kind {
	case model.ArgStringLiteral:
		return arg.Text, true
	case model.ArgName:
		return UnknownMessage, true
	default:
		return "", false
	}
}
