package results

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/ovalkit/ovalkit/internal/verdict"
	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

// Validate checks an exported results document: well-formedness, known
// verdict and content attributes, and non-empty definition references.
// Findings go to report; the first one also comes back as a
// ValidationError.
func Validate(path string, report func(line string)) error {
	emit := func(line string) {
		if report != nil {
			report(line)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		emit(fmt.Sprintf("%s: %v", path, err))
		return ovalerrors.NewValidationError(path, "", "cannot read document", err)
	}

	var doc xmlResults
	if err := xml.Unmarshal(data, &doc); err != nil {
		emit(fmt.Sprintf("%s: %v", path, err))
		return ovalerrors.NewValidationError(path, "", "document is not well formed", err)
	}

	var findings []*ovalerrors.ValidationError
	add := func(field, msg string) {
		findings = append(findings, &ovalerrors.ValidationError{Path: path, Field: field, Message: msg})
	}

	if doc.SchemaVersion == "" {
		add("schema_version", "schema version attribute is missing")
	}

	for _, dir := range doc.Directives {
		if _, err := verdict.Parse(dir.Verdict); err != nil {
			add("directives", fmt.Sprintf("unknown verdict %q", dir.Verdict))
		}
		if level := ContentLevel(dir.Content); level != ContentThin && level != ContentFull {
			add("directives", fmt.Sprintf("unknown content level %q", dir.Content))
		}
	}

	for _, sys := range doc.Systems {
		for _, def := range sys.Definitions {
			if def.DefinitionID == "" {
				add("results", "definition entry with empty definition_id")
				continue
			}
			if _, err := verdict.Parse(def.Result); err != nil {
				add("results", fmt.Sprintf("definition %s has unknown result %q", def.DefinitionID, def.Result))
			}
			for _, tst := range def.Tests {
				if _, err := verdict.Parse(tst.Result); err != nil {
					add("results", fmt.Sprintf("test %s has unknown result %q", tst.TestID, tst.Result))
				}
			}
		}
	}

	for _, finding := range findings {
		emit(finding.Error())
	}
	if len(findings) > 0 {
		return findings[0]
	}
	return nil
}
