package syschar

import (
	"encoding/xml"
	"fmt"
	"os"

	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

var knownFlags = map[Flag]bool{
	FlagComplete:      true,
	FlagIncomplete:    true,
	FlagDoesNotExist:  true,
	FlagError:         true,
	FlagNotCollected:  true,
	FlagNotApplicable: true,
}

// Validate checks a characteristics document without building a model:
// well-formedness, known collection flags and resolvable item references.
// Each finding is passed to report; the first one also comes back as a
// ValidationError. An unreadable or unparseable file is a validation
// failure, not an import failure.
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

	var doc xmlDocument
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

	items := make(map[int]bool, len(doc.SystemData))
	for _, item := range doc.SystemData {
		if items[item.ID] {
			add("system_data", fmt.Sprintf("item id %d appears twice", item.ID))
		}
		items[item.ID] = true
	}

	seen := make(map[string]bool, len(doc.Collected))
	for _, obj := range doc.Collected {
		if obj.ID == "" {
			add("collected_objects", "object with empty id")
			continue
		}
		if seen[obj.ID] {
			add("collected_objects", fmt.Sprintf("object %s appears twice", obj.ID))
		}
		seen[obj.ID] = true

		if !knownFlags[Flag(obj.Flag)] {
			add("collected_objects", fmt.Sprintf("object %s has unknown flag %q", obj.ID, obj.Flag))
		}
		for _, ref := range obj.ItemRefs {
			if !items[ref.ItemRef] {
				add("collected_objects", fmt.Sprintf("object %s references unknown item %d", obj.ID, ref.ItemRef))
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
