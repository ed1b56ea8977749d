package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/syschar"
	"github.com/ovalkit/ovalkit/internal/verdict"
)

// fixture builds a definition model with one object/test/definition per
// entry, so each scenario controls the full path from criteria to items.
type fixture struct {
	doc defs.Document
}

func newFixture() *fixture {
	return &fixture{doc: defs.Document{SchemaVersion: "5.11"}}
}

func (f *fixture) addObject(id, family string, fields ...defs.Field) {
	f.doc.Objects = append(f.doc.Objects, defs.Object{ID: id, Family: family, Fields: fields})
}

func (f *fixture) addTest(tst defs.Test) {
	f.doc.Tests = append(f.doc.Tests, tst)
}

func (f *fixture) addState(ste defs.State) {
	f.doc.States = append(f.doc.States, ste)
}

func (f *fixture) addDefinition(id string, criteria defs.Criteria) {
	f.doc.Definitions = append(f.doc.Definitions, defs.Definition{ID: id, Version: 1, Criteria: criteria})
}

func (f *fixture) build(t *testing.T) *defs.Model {
	t.Helper()

	model, err := defs.NewModel(&f.doc)
	require.NoError(t, err)
	return model
}

func criterionOn(testRef string) defs.Criteria {
	return defs.Criteria{Criterions: []defs.Criterion{{TestRef: testRef}}}
}

func newEngine(t *testing.T, defModel *defs.Model, populate func(*syschar.Model)) *Engine {
	t.Helper()

	sysModel, err := syschar.NewModel(defModel)
	require.NoError(t, err)
	if populate != nil {
		populate(sysModel)
	}

	engine, err := New(defModel, sysModel)
	require.NoError(t, err)
	return engine
}

func TestEvalTestPerCollectionFlag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		flag      syschar.Flag
		existence defs.Existence
		want      verdict.Verdict
	}{
		{name: "error flag", flag: syschar.FlagError, want: verdict.Error},
		{name: "not collected flag", flag: syschar.FlagNotCollected, want: verdict.Unknown},
		{name: "not applicable flag", flag: syschar.FlagNotApplicable, want: verdict.NotApplicable},
		{name: "absent object fails existence", flag: syschar.FlagDoesNotExist, want: verdict.False},
		{name: "absent object satisfies none_exist", flag: syschar.FlagDoesNotExist, existence: defs.NoneExist, want: verdict.True},
		{name: "unrecognized flag is error verdict", flag: syschar.Flag("bogus"), want: verdict.Error},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			f.addObject("oval:x:obj:1", "file")
			f.addTest(defs.Test{
				ID:             "oval:x:tst:1",
				CheckExistence: tc.existence,
				ObjectRef:      defs.ObjectRef{ObjectRef: "oval:x:obj:1"},
			})
			f.addDefinition("oval:x:def:1", criterionOn("oval:x:tst:1"))

			engine := newEngine(t, f.build(t), func(m *syschar.Model) {
				require.NoError(t, m.AddCollected("oval:x:obj:1", tc.flag, nil))
			})

			v, err := engine.EvalDefinition("oval:x:def:1")
			require.NoError(t, err)
			require.Equal(t, tc.want, v)
		})
	}
}

func TestEvalTestUncollectedObjectIsUnknown(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addObject("oval:x:obj:1", "file")
	f.addTest(defs.Test{ID: "oval:x:tst:1", ObjectRef: defs.ObjectRef{ObjectRef: "oval:x:obj:1"}})
	f.addDefinition("oval:x:def:1", criterionOn("oval:x:tst:1"))

	engine := newEngine(t, f.build(t), nil)

	v, err := engine.EvalDefinition("oval:x:def:1")
	require.NoError(t, err)
	require.Equal(t, verdict.Unknown, v)
}

func TestEvalTestStateComparison(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		operation string
		expected  string
		actual    string
		want      verdict.Verdict
	}{
		{name: "equals match", operation: "equals", expected: "root", actual: "root", want: verdict.True},
		{name: "equals mismatch", operation: "equals", expected: "root", actual: "nobody", want: verdict.False},
		{name: "not_equal", operation: "not_equal", expected: "nobody", actual: "root", want: verdict.True},
		{name: "contains", operation: "contains", expected: "oo", actual: "root", want: verdict.True},
		{name: "pattern match", operation: "pattern_match", expected: "^ro+t$", actual: "root", want: verdict.True},
		{name: "invalid pattern is error verdict", operation: "pattern_match", expected: "([", actual: "root", want: verdict.Error},
		{name: "greater_than", operation: "greater_than", expected: "0600", actual: "0644", want: verdict.True},
		{name: "less_than mismatch", operation: "less_than", expected: "0600", actual: "0644", want: verdict.False},
		{name: "non numeric comparison is error verdict", operation: "greater_than", expected: "ten", actual: "0644", want: verdict.Error},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			f.addObject("oval:x:obj:1", "file")
			f.addState(defs.State{ID: "oval:x:ste:1", Matches: []defs.Match{
				{Field: "value", Operation: tc.operation, Value: tc.expected},
			}})
			f.addTest(defs.Test{
				ID:        "oval:x:tst:1",
				ObjectRef: defs.ObjectRef{ObjectRef: "oval:x:obj:1"},
				StateRefs: []defs.StateRef{{StateRef: "oval:x:ste:1"}},
			})
			f.addDefinition("oval:x:def:1", criterionOn("oval:x:tst:1"))

			engine := newEngine(t, f.build(t), func(m *syschar.Model) {
				require.NoError(t, m.AddCollected("oval:x:obj:1", syschar.FlagComplete, []syschar.Item{
					{Fields: []syschar.Field{{Name: "value", Value: tc.actual}}},
				}))
			})

			v, err := engine.EvalDefinition("oval:x:def:1")
			require.NoError(t, err)
			require.Equal(t, tc.want, v)
		})
	}
}

func TestEvalTestMissingFieldFailsMatch(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addObject("oval:x:obj:1", "file")
	f.addState(defs.State{ID: "oval:x:ste:1", Matches: []defs.Match{{Field: "owner", Value: "root"}}})
	f.addTest(defs.Test{
		ID:        "oval:x:tst:1",
		ObjectRef: defs.ObjectRef{ObjectRef: "oval:x:obj:1"},
		StateRefs: []defs.StateRef{{StateRef: "oval:x:ste:1"}},
	})
	f.addDefinition("oval:x:def:1", criterionOn("oval:x:tst:1"))

	engine := newEngine(t, f.build(t), func(m *syschar.Model) {
		require.NoError(t, m.AddCollected("oval:x:obj:1", syschar.FlagComplete, []syschar.Item{
			{Fields: []syschar.Field{{Name: "group", Value: "root"}}},
		}))
	})

	v, err := engine.EvalDefinition("oval:x:def:1")
	require.NoError(t, err)
	require.Equal(t, verdict.False, v)
}

func TestEvalTestCheckVariants(t *testing.T) {
	t.Parallel()

	// Two items: one matching, one not.
	cases := []struct {
		name  string
		check defs.Check
		want  verdict.Verdict
	}{
		{name: "all", check: defs.CheckAll, want: verdict.False},
		{name: "at least one", check: defs.CheckAtLeastOne, want: verdict.True},
		{name: "none satisfy", check: defs.CheckNone, want: verdict.False},
		{name: "only one", check: defs.CheckOnlyOne, want: verdict.True},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			f.addObject("oval:x:obj:1", "file")
			f.addState(defs.State{ID: "oval:x:ste:1", Matches: []defs.Match{{Field: "owner", Value: "root"}}})
			f.addTest(defs.Test{
				ID:        "oval:x:tst:1",
				Check:     tc.check,
				ObjectRef: defs.ObjectRef{ObjectRef: "oval:x:obj:1"},
				StateRefs: []defs.StateRef{{StateRef: "oval:x:ste:1"}},
			})
			f.addDefinition("oval:x:def:1", criterionOn("oval:x:tst:1"))

			engine := newEngine(t, f.build(t), func(m *syschar.Model) {
				require.NoError(t, m.AddCollected("oval:x:obj:1", syschar.FlagComplete, []syschar.Item{
					{Fields: []syschar.Field{{Name: "owner", Value: "root"}}},
					{Fields: []syschar.Field{{Name: "owner", Value: "nobody"}}},
				}))
			})

			v, err := engine.EvalDefinition("oval:x:def:1")
			require.NoError(t, err)
			require.Equal(t, tc.want, v)
		})
	}
}

func TestEvalTestOnlyOneExistsExistence(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addObject("oval:x:obj:1", "file")
	f.addTest(defs.Test{
		ID:             "oval:x:tst:1",
		CheckExistence: defs.OnlyOneExists,
		ObjectRef:      defs.ObjectRef{ObjectRef: "oval:x:obj:1"},
	})
	f.addDefinition("oval:x:def:1", criterionOn("oval:x:tst:1"))

	engine := newEngine(t, f.build(t), func(m *syschar.Model) {
		require.NoError(t, m.AddCollected("oval:x:obj:1", syschar.FlagComplete, []syschar.Item{
			{Fields: []syschar.Field{{Name: "a", Value: "1"}}},
			{Fields: []syschar.Field{{Name: "a", Value: "2"}}},
		}))
	})

	v, err := engine.EvalDefinition("oval:x:def:1")
	require.NoError(t, err)
	require.Equal(t, verdict.False, v)
}
