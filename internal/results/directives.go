package results

import (
	"github.com/ovalkit/ovalkit/internal/verdict"
)

// ContentLevel controls how much detail an exported record carries.
type ContentLevel string

const (
	// ContentThin exports only the definition id and its verdict.
	ContentThin ContentLevel = "thin"
	// ContentFull additionally exports the definition title and per-test
	// verdicts.
	ContentFull ContentLevel = "full"
)

// Directives is the two-axis export policy: which verdict categories are
// reported at all, and how much detail each reported category carries.
// A fresh Directives reports nothing; callers opt categories in.
type Directives struct {
	reported verdict.Set
	full     verdict.Set
}

// NewDirectives returns the safety-default policy: no category reported,
// thin content everywhere.
func NewDirectives() *Directives {
	return &Directives{}
}

// FullDirectives returns the policy used by the evaluation export paths:
// every category reported with full content.
func FullDirectives() *Directives {
	d := NewDirectives()
	d.SetReported(verdict.AllSet(), true)
	d.SetContent(verdict.AllSet(), ContentFull)
	return d
}

// SetReported includes or excludes every category in set.
func (d *Directives) SetReported(set verdict.Set, reported bool) {
	if reported {
		d.reported |= set
	} else {
		d.reported &^= set
	}
}

// Reported tells whether records with this verdict appear in an export.
func (d *Directives) Reported(v verdict.Verdict) bool {
	return d.reported.Has(v)
}

// SetContent assigns a content level to every category in set.
func (d *Directives) SetContent(set verdict.Set, level ContentLevel) {
	if level == ContentFull {
		d.full |= set
	} else {
		d.full &^= set
	}
}

// Content returns the content level for records with this verdict.
func (d *Directives) Content(v verdict.Verdict) ContentLevel {
	if d.full.Has(v) {
		return ContentFull
	}
	return ContentThin
}
