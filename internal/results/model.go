package results

import (
	"fmt"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/evaluator"
	"github.com/ovalkit/ovalkit/internal/syschar"
	"github.com/ovalkit/ovalkit/internal/verdict"
)

// Record is the verdict of one definition on one system.
type Record struct {
	DefinitionID string
	Title        string
	Version      int
	Verdict      verdict.Verdict
	Tests        []evaluator.TestResult
}

// SystemResult groups the records produced against one characteristics
// snapshot. Records stay in definition document order.
type SystemResult struct {
	characteristics *syschar.Model
	records         []Record
	index           map[string]int
}

// Characteristics returns the characteristics model the records were
// scored against.
func (s *SystemResult) Characteristics() *syschar.Model {
	return s.characteristics
}

// Records returns the accumulated records in document order.
func (s *SystemResult) Records() []Record {
	return s.records
}

// Record looks up the record for a definition.
func (s *SystemResult) Record(definitionID string) (Record, bool) {
	i, ok := s.index[definitionID]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// Append stores one record. Each definition gets exactly one verdict per
// system.
func (s *SystemResult) Append(rec Record) error {
	if !rec.Verdict.Valid() {
		return fmt.Errorf("record for %s has invalid verdict", rec.DefinitionID)
	}
	if _, exists := s.index[rec.DefinitionID]; exists {
		return fmt.Errorf("definition %s already recorded", rec.DefinitionID)
	}
	s.index[rec.DefinitionID] = len(s.records)
	s.records = append(s.records, rec)
	return nil
}

// Model is the Results Model: per-definition verdicts for one or more
// characteristics snapshots of the same definition model. It is owned by
// whichever evaluation path created it.
type Model struct {
	defs    *defs.Model
	systems []*SystemResult
}

// New builds an empty results model over the given characteristics
// snapshots. At least one snapshot is required.
func New(definitions *defs.Model, characteristics []*syschar.Model) (*Model, error) {
	if definitions == nil {
		return nil, fmt.Errorf("definition model is nil")
	}
	if len(characteristics) == 0 {
		return nil, fmt.Errorf("at least one characteristics model is required")
	}

	m := &Model{defs: definitions}
	for i, ch := range characteristics {
		if ch == nil {
			return nil, fmt.Errorf("characteristics model %d is nil", i)
		}
		m.systems = append(m.systems, &SystemResult{
			characteristics: ch,
			index:           make(map[string]int),
		})
	}
	return m, nil
}

// Definitions returns the definition model the records refer to.
func (m *Model) Definitions() *defs.Model {
	return m.defs
}

// Systems returns per-snapshot result groups.
func (m *Model) Systems() []*SystemResult {
	return m.systems
}

// EvalAll eagerly scores every definition against every snapshot, in
// definition document order. Verdicts of any kind are recorded; only an
// engine-level failure aborts.
func (m *Model) EvalAll() error {
	for _, sys := range m.systems {
		engine, err := evaluator.New(m.defs, sys.characteristics)
		if err != nil {
			return err
		}
		for _, def := range m.defs.Definitions() {
			if _, done := sys.index[def.ID]; done {
				continue
			}
			v, tests, err := engine.Evaluate(def.ID)
			if err != nil {
				return err
			}
			if err := sys.Append(Record{
				DefinitionID: def.ID,
				Title:        def.Title,
				Version:      def.Version,
				Verdict:      v,
				Tests:        tests,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
