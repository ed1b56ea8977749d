package evaluator

import (
	"fmt"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/syschar"
	"github.com/ovalkit/ovalkit/internal/verdict"
	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

// TestResult is the verdict of a single test referenced while evaluating a
// definition, kept for full-content result export.
type TestResult struct {
	TestID  string
	Verdict verdict.Verdict
}

// Engine evaluates definitions from one definition model against one
// characteristics model. It holds no mutable state; every call is a pure
// function of the two models.
type Engine struct {
	defs    *defs.Model
	syschar *syschar.Model
}

// New binds an engine to its two models.
func New(definitions *defs.Model, characteristics *syschar.Model) (*Engine, error) {
	if definitions == nil {
		return nil, fmt.Errorf("definition model is nil")
	}
	if characteristics == nil {
		return nil, fmt.Errorf("characteristics model is nil")
	}
	return &Engine{defs: definitions, syschar: characteristics}, nil
}

// EvalDefinition evaluates one definition and returns its verdict.
func (e *Engine) EvalDefinition(id string) (verdict.Verdict, error) {
	v, _, err := e.Evaluate(id)
	return v, err
}

// Evaluate evaluates one definition and additionally returns the verdicts
// of every test its criteria tree touched, in evaluation order.
//
// A FALSE, UNKNOWN, or ERROR verdict is a valid outcome, not an error:
// the returned error is non-nil only when the engine itself fails, such as
// a criteria tree referencing a test or definition the model does not hold.
func (e *Engine) Evaluate(id string) (verdict.Verdict, []TestResult, error) {
	def, ok := e.defs.Definition(id)
	if !ok {
		return 0, nil, ovalerrors.NewEngineError(id, "definition not found in model", nil)
	}

	run := &evalRun{engine: e, visiting: map[string]bool{}}
	v, err := run.evalDefinition(def)
	if err != nil {
		return 0, nil, err
	}
	return v, run.tests, nil
}

type evalRun struct {
	engine   *Engine
	visiting map[string]bool
	tests    []TestResult
}

func (r *evalRun) evalDefinition(def *defs.Definition) (verdict.Verdict, error) {
	if r.visiting[def.ID] {
		return 0, ovalerrors.NewEngineError(def.ID, "extend_definition cycle detected", nil)
	}
	r.visiting[def.ID] = true
	defer delete(r.visiting, def.ID)

	if def.Criteria.Empty() {
		return verdict.Unknown, nil
	}
	return r.evalCriteria(def.ID, &def.Criteria)
}

func (r *evalRun) evalCriteria(defID string, node *defs.Criteria) (verdict.Verdict, error) {
	var operands []verdict.Verdict

	for i := range node.Criterions {
		criterion := &node.Criterions[i]
		tst, ok := r.engine.defs.Test(criterion.TestRef)
		if !ok {
			return 0, ovalerrors.NewEngineError(defID,
				fmt.Sprintf("criterion references unknown test %s", criterion.TestRef), nil)
		}
		v, err := r.evalTest(defID, tst)
		if err != nil {
			return 0, err
		}
		r.tests = append(r.tests, TestResult{TestID: tst.ID, Verdict: v})
		if criterion.Negate {
			v = negate(v)
		}
		operands = append(operands, v)
	}

	for i := range node.Extends {
		extend := &node.Extends[i]
		extended, ok := r.engine.defs.Definition(extend.DefinitionRef)
		if !ok {
			return 0, ovalerrors.NewEngineError(defID,
				fmt.Sprintf("extend_definition references unknown definition %s", extend.DefinitionRef), nil)
		}
		v, err := r.evalDefinition(extended)
		if err != nil {
			return 0, err
		}
		if extend.Negate {
			v = negate(v)
		}
		operands = append(operands, v)
	}

	for i := range node.Criteria {
		v, err := r.evalCriteria(defID, &node.Criteria[i])
		if err != nil {
			return 0, err
		}
		operands = append(operands, v)
	}

	v := combine(node.EffectiveOperator(), operands)
	if node.Negate {
		v = negate(v)
	}
	return v, nil
}

// negate flips TRUE and FALSE. All other verdicts are unaffected: not
// knowing an answer stays not knowing it under negation.
func negate(v verdict.Verdict) verdict.Verdict {
	switch v {
	case verdict.True:
		return verdict.False
	case verdict.False:
		return verdict.True
	default:
		return v
	}
}

// combine folds operand verdicts per the OVAL result combination rules.
// NOT_APPLICABLE operands are ignored unless every operand is one.
func combine(op defs.Operator, operands []verdict.Verdict) verdict.Verdict {
	if len(operands) == 0 {
		return verdict.Unknown
	}

	var counts verdict.Tally
	for _, v := range operands {
		counts.OnVerdict("", v)
	}
	if counts.NotApplicable == len(operands) {
		return verdict.NotApplicable
	}

	switch op {
	case defs.OperatorOr:
		switch {
		case counts.True > 0:
			return verdict.True
		case counts.Error > 0:
			return verdict.Error
		case counts.Unknown > 0:
			return verdict.Unknown
		case counts.NotEvaluated > 0:
			return verdict.NotEvaluated
		default:
			return verdict.False
		}
	default: // AND
		switch {
		case counts.False > 0:
			return verdict.False
		case counts.Error > 0:
			return verdict.Error
		case counts.Unknown > 0:
			return verdict.Unknown
		case counts.NotEvaluated > 0:
			return verdict.NotEvaluated
		default:
			return verdict.True
		}
	}
}
