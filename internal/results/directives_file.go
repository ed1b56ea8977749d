package results

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ovalkit/ovalkit/internal/verdict"
	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

// DocumentKind names the directives document for error reporting.
const DocumentKind = "directives"

type directivesFile struct {
	Reported map[string]bool   `yaml:"reported"`
	Content  map[string]string `yaml:"content"`
}

// LoadDirectivesFile reads an export policy from a YAML document. Verdict
// categories are keyed by their canonical text ("true", "not evaluated");
// content levels are "thin" or "full". Categories not mentioned stay at
// the default: not reported, thin.
func LoadDirectivesFile(path string) (*Directives, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ovalerrors.NewImportError(path, DocumentKind, err)
	}

	var file directivesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, ovalerrors.NewImportError(path, DocumentKind, err)
	}

	d := NewDirectives()
	for name, reported := range file.Reported {
		v, err := verdict.Parse(name)
		if err != nil {
			return nil, ovalerrors.NewImportError(path, DocumentKind, err)
		}
		d.SetReported(verdict.None.With(v), reported)
	}
	for name, level := range file.Content {
		v, err := verdict.Parse(name)
		if err != nil {
			return nil, ovalerrors.NewImportError(path, DocumentKind, err)
		}
		switch ContentLevel(level) {
		case ContentThin, ContentFull:
			d.SetContent(verdict.None.With(v), ContentLevel(level))
		default:
			return nil, ovalerrors.NewImportError(path, DocumentKind,
				fmt.Errorf("unknown content level %q for %s", level, name))
		}
	}

	return d, nil
}
