package results

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/ovalkit/ovalkit/internal/verdict"
)

type xmlResults struct {
	XMLName       xml.Name       `xml:"oval_results"`
	SchemaVersion string         `xml:"schema_version,attr"`
	Directives    []xmlDirective `xml:"directives>directive"`
	Systems       []xmlSystem    `xml:"results>system"`
}

type xmlDirective struct {
	Verdict  string `xml:"verdict,attr"`
	Reported bool   `xml:"reported,attr"`
	Content  string `xml:"content,attr"`
}

type xmlSystem struct {
	Definitions []xmlDefinition `xml:"definitions>definition"`
}

type xmlDefinition struct {
	DefinitionID string        `xml:"definition_id,attr"`
	Result       string        `xml:"result,attr"`
	Version      int           `xml:"version,attr,omitempty"`
	Title        string        `xml:"title,omitempty"`
	Tests        []xmlTestItem `xml:"tests>test"`
}

type xmlTestItem struct {
	TestID string `xml:"test_id,attr"`
	Result string `xml:"result,attr"`
}

const schemaVersion = "5.11"

// Export serializes the model filtered by the directives. The output is a
// pure function of (model, directives): records appear in definition
// document order, so identical inputs produce byte-identical documents.
func (m *Model) Export(w io.Writer, directives *Directives) error {
	if directives == nil {
		return fmt.Errorf("directives are nil")
	}

	doc := xmlResults{SchemaVersion: schemaVersion}

	for _, v := range verdict.All {
		doc.Directives = append(doc.Directives, xmlDirective{
			Verdict:  v.Text(),
			Reported: directives.Reported(v),
			Content:  string(directives.Content(v)),
		})
	}

	for _, sys := range m.systems {
		entry := xmlSystem{}
		for _, rec := range sys.records {
			if !directives.Reported(rec.Verdict) {
				continue
			}

			def := xmlDefinition{
				DefinitionID: rec.DefinitionID,
				Result:       rec.Verdict.Text(),
			}
			if directives.Content(rec.Verdict) == ContentFull {
				def.Title = rec.Title
				def.Version = rec.Version
				for _, tr := range rec.Tests {
					def.Tests = append(def.Tests, xmlTestItem{TestID: tr.TestID, Result: tr.Verdict.Text()})
				}
			}
			entry.Definitions = append(entry.Definitions, def)
		}
		doc.Systems = append(doc.Systems, entry)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ExportFile serializes the model to a file through the directives.
func (m *Model) ExportFile(path string, directives *Directives) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Export(f, directives); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
