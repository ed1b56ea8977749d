package evaluator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/syschar"
	"github.com/ovalkit/ovalkit/internal/verdict"
	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

// evalTest scores one test against the characteristics model. The collection
// flag of the referenced object decides most non-boolean verdicts; only
// complete or incomplete collections reach state comparison.
func (r *evalRun) evalTest(defID string, tst *defs.Test) (verdict.Verdict, error) {
	if _, ok := r.engine.defs.Object(tst.ObjectRef.ObjectRef); !ok {
		return 0, ovalerrors.NewEngineError(defID,
			"test "+tst.ID+" references unknown object "+tst.ObjectRef.ObjectRef, nil)
	}

	co, collected := r.engine.syschar.Collected(tst.ObjectRef.ObjectRef)
	if !collected {
		return verdict.Unknown, nil
	}

	switch co.Flag {
	case syschar.FlagError:
		return verdict.Error, nil
	case syschar.FlagNotCollected:
		return verdict.Unknown, nil
	case syschar.FlagNotApplicable:
		return verdict.NotApplicable, nil
	case syschar.FlagDoesNotExist:
		if tst.EffectiveExistence() == defs.NoneExist {
			return verdict.True, nil
		}
		return verdict.False, nil
	case syschar.FlagComplete, syschar.FlagIncomplete:
	default:
		return verdict.Error, nil
	}

	items := r.engine.syschar.ItemsFor(tst.ObjectRef.ObjectRef)

	if !existenceSatisfied(tst.EffectiveExistence(), len(items)) {
		return verdict.False, nil
	}
	if len(tst.StateRefs) == 0 {
		return verdict.True, nil
	}

	states := make([]*defs.State, 0, len(tst.StateRefs))
	for _, ref := range tst.StateRefs {
		ste, ok := r.engine.defs.State(ref.StateRef)
		if !ok {
			return 0, ovalerrors.NewEngineError(defID,
				"test "+tst.ID+" references unknown state "+ref.StateRef, nil)
		}
		states = append(states, ste)
	}

	matching := 0
	sawError := false
	for _, item := range items {
		matched, err := itemMatchesStates(item, states)
		if err != nil {
			sawError = true
			continue
		}
		if matched {
			matching++
		}
	}
	if sawError {
		return verdict.Error, nil
	}

	return checkSatisfied(tst.EffectiveCheck(), matching, len(items)), nil
}

func existenceSatisfied(existence defs.Existence, count int) bool {
	switch existence {
	case defs.NoneExist:
		return count == 0
	case defs.OnlyOneExists:
		return count == 1
	case defs.AllExist, defs.AtLeastOneExists:
		return count >= 1
	default:
		return count >= 1
	}
}

func checkSatisfied(check defs.Check, matching, total int) verdict.Verdict {
	var ok bool
	switch check {
	case defs.CheckAtLeastOne:
		ok = matching >= 1
	case defs.CheckNone:
		ok = matching == 0
	case defs.CheckOnlyOne:
		ok = matching == 1
	default: // all
		ok = matching == total
	}
	if ok {
		return verdict.True
	}
	return verdict.False
}

// itemMatchesStates reports whether the item satisfies every state. A state
// matches when all of its field comparisons hold.
func itemMatchesStates(item *syschar.Item, states []*defs.State) (bool, error) {
	for _, ste := range states {
		for i := range ste.Matches {
			ok, err := fieldMatches(item, &ste.Matches[i])
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
	}
	return true, nil
}

func fieldMatches(item *syschar.Item, m *defs.Match) (bool, error) {
	actual, present := item.FieldValue(m.Field)
	if !present {
		return false, nil
	}

	switch m.EffectiveOperation() {
	case "equals":
		return actual == m.Value, nil
	case "not_equal":
		return actual != m.Value, nil
	case "contains":
		return strings.Contains(actual, m.Value), nil
	case "pattern_match":
		re, err := regexp.Compile(m.Value)
		if err != nil {
			return false, err
		}
		return re.MatchString(actual), nil
	case "greater_than":
		a, b, err := numericPair(actual, m.Value)
		if err != nil {
			return false, err
		}
		return a > b, nil
	case "less_than":
		a, b, err := numericPair(actual, m.Value)
		if err != nil {
			return false, err
		}
		return a < b, nil
	default:
		return actual == m.Value, nil
	}
}

func numericPair(actual, expected string) (float64, float64, error) {
	a, err := strconv.ParseFloat(strings.TrimSpace(actual), 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
