package defs

import (
	"encoding/xml"
)

// Operator combines child results inside a criteria node.
type Operator string

const (
	// OperatorAnd requires every child to hold.
	OperatorAnd Operator = "AND"
	// OperatorOr requires at least one child to hold.
	OperatorOr Operator = "OR"
)

// Existence checks collected-item presence for a test.
type Existence string

const (
	// AtLeastOneExists is the default existence check.
	AtLeastOneExists Existence = "at_least_one_exists"
	// AllExist requires every referenced item to have been collected.
	AllExist Existence = "all_exist"
	// NoneExist inverts the check: the object must not be present.
	NoneExist Existence = "none_exist"
	// OnlyOneExists requires exactly one collected item.
	OnlyOneExists Existence = "only_one_exists"
)

// Check combines per-item state comparisons for a test.
type Check string

const (
	// CheckAll requires every collected item to match the states.
	CheckAll Check = "all"
	// CheckAtLeastOne requires one matching item.
	CheckAtLeastOne Check = "at least one"
	// CheckNone requires no item to match.
	CheckNone Check = "none satisfy"
	// CheckOnlyOne requires exactly one matching item.
	CheckOnlyOne Check = "only one"
)

// Document is the parsed form of an OVAL definitions file.
type Document struct {
	XMLName       xml.Name     `xml:"oval_definitions"`
	SchemaVersion string       `xml:"schema_version,attr" validate:"required"`
	Generator     Generator    `xml:"generator"`
	Definitions   []Definition `xml:"definitions>definition" validate:"required,min=1,dive"`
	Tests         []Test       `xml:"tests>test" validate:"dive"`
	Objects       []Object     `xml:"objects>object" validate:"dive"`
	States        []State      `xml:"states>state" validate:"dive"`
}

// Generator records provenance of the document.
type Generator struct {
	Product   string `xml:"product,omitempty"`
	Version   string `xml:"version,omitempty"`
	Timestamp string `xml:"timestamp,omitempty"`
}

// Definition is a named logical assertion over tests. Immutable once loaded.
type Definition struct {
	ID       string   `xml:"id,attr" validate:"required,oval_def_id"`
	Version  int      `xml:"version,attr"`
	Class    string   `xml:"class,attr" validate:"omitempty,oneof=compliance vulnerability inventory patch miscellaneous"`
	Title    string   `xml:"metadata>title,omitempty"`
	Criteria Criteria `xml:"criteria"`
}

// Criteria is a node in the logical expression tree of a definition.
type Criteria struct {
	Operator   Operator           `xml:"operator,attr" validate:"omitempty,oneof=AND OR"`
	Negate     bool               `xml:"negate,attr"`
	Comment    string             `xml:"comment,attr,omitempty"`
	Criteria   []Criteria         `xml:"criteria" validate:"dive"`
	Criterions []Criterion        `xml:"criterion" validate:"dive"`
	Extends    []ExtendDefinition `xml:"extend_definition" validate:"dive"`
}

// EffectiveOperator returns the node operator, defaulting to AND when the
// attribute is absent.
func (c *Criteria) EffectiveOperator() Operator {
	if c.Operator == "" {
		return OperatorAnd
	}
	return c.Operator
}

// Empty reports whether the node has no children at all.
func (c *Criteria) Empty() bool {
	return len(c.Criteria) == 0 && len(c.Criterions) == 0 && len(c.Extends) == 0
}

// Criterion references a single test from a criteria tree.
type Criterion struct {
	TestRef string `xml:"test_ref,attr" validate:"required,oval_tst_id"`
	Negate  bool   `xml:"negate,attr"`
	Comment string `xml:"comment,attr,omitempty"`
}

// ExtendDefinition references another definition whose verdict becomes an
// operand of the enclosing criteria node.
type ExtendDefinition struct {
	DefinitionRef string `xml:"definition_ref,attr" validate:"required,oval_def_id"`
	Negate        bool   `xml:"negate,attr"`
}

// Test binds an object to zero or more expected states.
type Test struct {
	ID             string     `xml:"id,attr" validate:"required,oval_tst_id"`
	CheckExistence Existence  `xml:"check_existence,attr" validate:"omitempty,oneof=at_least_one_exists all_exist none_exist only_one_exists"`
	Check          Check      `xml:"check,attr" validate:"omitempty,oneof=all 'at least one' 'none satisfy' 'only one'"`
	Comment        string     `xml:"comment,attr,omitempty"`
	ObjectRef      ObjectRef  `xml:"object"`
	StateRefs      []StateRef `xml:"state" validate:"dive"`
}

// EffectiveExistence returns the existence check, defaulting to
// at_least_one_exists.
func (t *Test) EffectiveExistence() Existence {
	if t.CheckExistence == "" {
		return AtLeastOneExists
	}
	return t.CheckExistence
}

// EffectiveCheck returns the state check, defaulting to all.
func (t *Test) EffectiveCheck() Check {
	if t.Check == "" {
		return CheckAll
	}
	return t.Check
}

// ObjectRef points a test at the object it examines.
type ObjectRef struct {
	ObjectRef string `xml:"object_ref,attr" validate:"required,oval_obj_id"`
}

// StateRef points a test at an expected state.
type StateRef struct {
	StateRef string `xml:"state_ref,attr" validate:"required,oval_ste_id"`
}

// Object describes what a probe should collect. Fields are free-form
// parameters interpreted by the probe for the object's family.
type Object struct {
	ID      string  `xml:"id,attr" validate:"required,oval_obj_id"`
	Family  string  `xml:"family,attr" validate:"required"`
	Comment string  `xml:"comment,attr,omitempty"`
	Fields  []Field `xml:"field"`
}

// Field is one named object parameter.
type Field struct {
	Name  string `xml:"name,attr" validate:"required"`
	Value string `xml:",chardata"`
}

// FieldValue returns the value of the named parameter and whether it exists.
func (o *Object) FieldValue(name string) (string, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// State holds expected item properties a test compares collected facts
// against.
type State struct {
	ID      string  `xml:"id,attr" validate:"required,oval_ste_id"`
	Comment string  `xml:"comment,attr,omitempty"`
	Matches []Match `xml:"match" validate:"dive"`
}

// Match is one field comparison inside a state.
type Match struct {
	Field     string `xml:"field,attr" validate:"required"`
	Operation string `xml:"operation,attr" validate:"omitempty,oneof=equals not_equal pattern_match contains greater_than less_than"`
	Value     string `xml:",chardata"`
}

// EffectiveOperation returns the comparison operation, defaulting to equals.
func (m *Match) EffectiveOperation() string {
	if m.Operation == "" {
		return "equals"
	}
	return m.Operation
}
