package verdict

import (
	"fmt"
	"io"
)

// Reporter receives one callback per definition during a full sweep, in the
// definition model's document order. Implementations must not fail: the
// engine treats a reporter as infallible bookkeeping.
type Reporter interface {
	OnVerdict(definitionID string, v Verdict)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(definitionID string, v Verdict)

// OnVerdict invokes the wrapped function.
func (f ReporterFunc) OnVerdict(definitionID string, v Verdict) {
	f(definitionID, v)
}

// Tally accumulates a count per verdict category across a full sweep.
type Tally struct {
	True          int
	False         int
	Error         int
	Unknown       int
	NotEvaluated  int
	NotApplicable int
}

// OnVerdict increments the counter matching v. Invalid verdicts are a
// programming error upstream and are ignored here rather than panicking
// mid-sweep.
func (t *Tally) OnVerdict(_ string, v Verdict) {
	switch v {
	case True:
		t.True++
	case False:
		t.False++
	case Error:
		t.Error++
	case Unknown:
		t.Unknown++
	case NotEvaluated:
		t.NotEvaluated++
	case NotApplicable:
		t.NotApplicable++
	}
}

// Count returns the counter for a single verdict category.
func (t *Tally) Count(v Verdict) int {
	switch v {
	case True:
		return t.True
	case False:
		return t.False
	case Error:
		return t.Error
	case Unknown:
		return t.Unknown
	case NotEvaluated:
		return t.NotEvaluated
	case NotApplicable:
		return t.NotApplicable
	default:
		return 0
	}
}

// Total sums all six counters. After a clean full sweep this equals the
// number of definitions in the model.
func (t *Tally) Total() int {
	return t.True + t.False + t.Error + t.Unknown + t.NotEvaluated + t.NotApplicable
}

// Passed reports the sweep-level success policy: no definition may be
// FALSE or UNKNOWN. ERROR verdicts do not fail a sweep.
func (t *Tally) Passed() bool {
	return t.False == 0 && t.Unknown == 0
}

// WriteReport writes the fixed six-line counter report in report order with
// right-aligned counts.
func (t *Tally) WriteReport(w io.Writer) {
	fmt.Fprintln(w, "===== REPORT =====")
	labels := map[Verdict]string{
		True:          "TRUE",
		False:         "FALSE",
		Error:         "ERROR",
		Unknown:       "UNKNOWN",
		NotEvaluated:  "NOT EVALUATED",
		NotApplicable: "NOT APPLICABLE",
	}
	for _, v := range All {
		fmt.Fprintf(w, "%-15s %6d\n", labels[v]+":", t.Count(v))
	}
}
