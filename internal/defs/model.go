package defs

import (
	"encoding/xml"
	"fmt"
	"os"

	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

// DocumentKind names the definitions document for error reporting.
const DocumentKind = "definitions"

// Model is the imported Definition Model: the parsed document plus lookup
// indexes. It is immutable after Import.
type Model struct {
	doc         *Document
	definitions map[string]*Definition
	tests       map[string]*Test
	objects     map[string]*Object
	states      map[string]*State
}

// Import loads a definitions document from disk and builds the model.
// Malformed or unreadable input yields an ImportError; Import performs no
// schema validation (see Validate for the optional pre-check).
func Import(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ovalerrors.NewImportError(path, DocumentKind, err)
	}

	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, ovalerrors.NewImportError(path, DocumentKind, err)
	}
	if len(doc.Definitions) == 0 {
		return nil, ovalerrors.NewImportError(path, DocumentKind, fmt.Errorf("document contains no definitions"))
	}

	m, err := NewModel(&doc)
	if err != nil {
		return nil, ovalerrors.NewImportError(path, DocumentKind, err)
	}
	return m, nil
}

// NewModel indexes an already-parsed document.
func NewModel(doc *Document) (*Model, error) {
	if doc == nil {
		return nil, fmt.Errorf("definitions document is nil")
	}

	m := &Model{
		doc:         doc,
		definitions: make(map[string]*Definition, len(doc.Definitions)),
		tests:       make(map[string]*Test, len(doc.Tests)),
		objects:     make(map[string]*Object, len(doc.Objects)),
		states:      make(map[string]*State, len(doc.States)),
	}

	for i := range doc.Definitions {
		def := &doc.Definitions[i]
		if _, exists := m.definitions[def.ID]; exists {
			return nil, fmt.Errorf("duplicate definition id %q", def.ID)
		}
		m.definitions[def.ID] = def
	}
	for i := range doc.Tests {
		tst := &doc.Tests[i]
		if _, exists := m.tests[tst.ID]; exists {
			return nil, fmt.Errorf("duplicate test id %q", tst.ID)
		}
		m.tests[tst.ID] = tst
	}
	for i := range doc.Objects {
		obj := &doc.Objects[i]
		if _, exists := m.objects[obj.ID]; exists {
			return nil, fmt.Errorf("duplicate object id %q", obj.ID)
		}
		m.objects[obj.ID] = obj
	}
	for i := range doc.States {
		ste := &doc.States[i]
		if _, exists := m.states[ste.ID]; exists {
			return nil, fmt.Errorf("duplicate state id %q", ste.ID)
		}
		m.states[ste.ID] = ste
	}

	return m, nil
}

// Document returns the underlying parsed document.
func (m *Model) Document() *Document {
	return m.doc
}

// Definitions returns definitions in document order. The slice must be
// treated as read-only; sweep iteration order is defined by it.
func (m *Model) Definitions() []Definition {
	return m.doc.Definitions
}

// Definition looks up a definition by id.
func (m *Model) Definition(id string) (*Definition, bool) {
	def, ok := m.definitions[id]
	return def, ok
}

// Test looks up a test by id.
func (m *Model) Test(id string) (*Test, bool) {
	tst, ok := m.tests[id]
	return tst, ok
}

// Object looks up an object by id.
func (m *Model) Object(id string) (*Object, bool) {
	obj, ok := m.objects[id]
	return obj, ok
}

// Objects returns probeable objects in document order.
func (m *Model) Objects() []Object {
	return m.doc.Objects
}

// State looks up a state by id.
func (m *Model) State(id string) (*State, bool) {
	ste, ok := m.states[id]
	return ste, ok
}
