package defs

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	defIDPattern = regexp.MustCompile(`^oval:[A-Za-z0-9_\-.]+:def:[0-9]+$`)
	tstIDPattern = regexp.MustCompile(`^oval:[A-Za-z0-9_\-.]+:tst:[0-9]+$`)
	objIDPattern = regexp.MustCompile(`^oval:[A-Za-z0-9_\-.]+:obj:[0-9]+$`)
	steIDPattern = regexp.MustCompile(`^oval:[A-Za-z0-9_\-.]+:ste:[0-9]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("oval_def_id", func(fl validator.FieldLevel) bool {
			return defIDPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("oval_tst_id", func(fl validator.FieldLevel) bool {
			return tstIDPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("oval_obj_id", func(fl validator.FieldLevel) bool {
			return objIDPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("oval_ste_id", func(fl validator.FieldLevel) bool {
			return steIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// LineReporter receives one human-readable line per validation finding.
// A nil LineReporter suppresses per-finding output.
type LineReporter func(line string)

// ValidateDocument runs schema and cross-reference validation over a parsed
// document. Every finding is forwarded to report; the returned error is a
// ValidationError describing the first finding, or nil.
func ValidateDocument(doc *Document, path string, report LineReporter) error {
	if doc == nil {
		return ovalerrors.NewValidationError(path, "", "document is nil", nil)
	}
	if report == nil {
		report = func(string) {}
	}

	var findings []*ovalerrors.ValidationError

	if err := validatorInstance().Struct(doc); err != nil {
		findings = append(findings, convertValidationError(path, err)...)
	}
	findings = append(findings, crossReferenceFindings(doc, path)...)

	if len(findings) == 0 {
		return nil
	}
	for _, f := range findings {
		report(f.Error())
	}
	return findings[0]
}

// Validate loads and validates a definitions document without importing it.
// An unparseable file is a validation failure here, not an ImportError: this
// is the optional pre-import schema check.
func Validate(path string, report LineReporter) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ovalerrors.NewValidationError(path, "", fmt.Sprintf("cannot read document: %v", err), err)
	}

	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return ovalerrors.NewValidationError(path, "", fmt.Sprintf("not a well-formed definitions document: %v", err), err)
	}

	return ValidateDocument(&doc, path, report)
}

func crossReferenceFindings(doc *Document, path string) []*ovalerrors.ValidationError {
	var findings []*ovalerrors.ValidationError
	finding := func(field, message string) {
		findings = append(findings, &ovalerrors.ValidationError{Path: path, Field: field, Message: message})
	}

	defIDs := make(map[string]struct{}, len(doc.Definitions))
	tstIDs := make(map[string]struct{}, len(doc.Tests))
	objIDs := make(map[string]struct{}, len(doc.Objects))
	steIDs := make(map[string]struct{}, len(doc.States))

	for i, def := range doc.Definitions {
		if _, dup := defIDs[def.ID]; dup {
			finding(fmt.Sprintf("definitions[%d].id", i), fmt.Sprintf("duplicate definition id %q", def.ID))
		}
		defIDs[def.ID] = struct{}{}
	}
	for i, tst := range doc.Tests {
		if _, dup := tstIDs[tst.ID]; dup {
			finding(fmt.Sprintf("tests[%d].id", i), fmt.Sprintf("duplicate test id %q", tst.ID))
		}
		tstIDs[tst.ID] = struct{}{}
	}
	for i, obj := range doc.Objects {
		if _, dup := objIDs[obj.ID]; dup {
			finding(fmt.Sprintf("objects[%d].id", i), fmt.Sprintf("duplicate object id %q", obj.ID))
		}
		objIDs[obj.ID] = struct{}{}
	}
	for i, ste := range doc.States {
		if _, dup := steIDs[ste.ID]; dup {
			finding(fmt.Sprintf("states[%d].id", i), fmt.Sprintf("duplicate state id %q", ste.ID))
		}
		steIDs[ste.ID] = struct{}{}
	}

	for i, def := range doc.Definitions {
		walkCriteria(&def.Criteria, func(c *Criterion) {
			if _, ok := tstIDs[c.TestRef]; !ok {
				finding(fmt.Sprintf("definitions[%d].criteria", i), fmt.Sprintf("criterion references unknown test %q", c.TestRef))
			}
		}, func(e *ExtendDefinition) {
			if _, ok := defIDs[e.DefinitionRef]; !ok {
				finding(fmt.Sprintf("definitions[%d].criteria", i), fmt.Sprintf("extend_definition references unknown definition %q", e.DefinitionRef))
			}
		})
	}

	for i, tst := range doc.Tests {
		if _, ok := objIDs[tst.ObjectRef.ObjectRef]; !ok {
			finding(fmt.Sprintf("tests[%d].object", i), fmt.Sprintf("test references unknown object %q", tst.ObjectRef.ObjectRef))
		}
		for j, ref := range tst.StateRefs {
			if _, ok := steIDs[ref.StateRef]; !ok {
				finding(fmt.Sprintf("tests[%d].state[%d]", i, j), fmt.Sprintf("test references unknown state %q", ref.StateRef))
			}
		}
	}

	return findings
}

func walkCriteria(node *Criteria, onCriterion func(*Criterion), onExtend func(*ExtendDefinition)) {
	for i := range node.Criterions {
		onCriterion(&node.Criterions[i])
	}
	for i := range node.Extends {
		onExtend(&node.Extends[i])
	}
	for i := range node.Criteria {
		walkCriteria(&node.Criteria[i], onCriterion, onExtend)
	}
}

func convertValidationError(path string, err error) []*ovalerrors.ValidationError {
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return []*ovalerrors.ValidationError{{Path: path, Message: invalid.Error(), Err: err}}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []*ovalerrors.ValidationError{{Path: path, Message: err.Error(), Err: err}}
	}

	findings := make([]*ovalerrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Document.")
		findings = append(findings, &ovalerrors.ValidationError{
			Path:    path,
			Field:   field,
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
			Err:     err,
		})
	}
	return findings
}
