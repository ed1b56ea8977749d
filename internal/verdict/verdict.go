package verdict

import "fmt"

// Verdict is the outcome of evaluating a single definition. Values are
// single-bit so verdict categories can be combined into a Set.
type Verdict int

const (
	// True means the system state satisfied the definition.
	True Verdict = 1 << iota
	// False means the system state violated the definition.
	False
	// Error means evaluation of the definition hit a recoverable fault
	// (missing test, probe failure on a referenced object).
	Error
	// Unknown means the collected characteristics were insufficient to
	// decide either way.
	Unknown
	// NotEvaluated means the definition was deliberately skipped.
	NotEvaluated
	// NotApplicable means the definition does not apply to this platform.
	NotApplicable
)

// All enumerates every verdict in report order. The order is part of the
// output contract: the sweep report prints counters in exactly this order.
var All = []Verdict{True, False, Error, Unknown, NotEvaluated, NotApplicable}

// Text returns the canonical human-readable form of the verdict.
func (v Verdict) Text() string {
	switch v {
	case True:
		return "true"
	case False:
		return "false"
	case Error:
		return "error"
	case Unknown:
		return "unknown"
	case NotEvaluated:
		return "not evaluated"
	case NotApplicable:
		return "not applicable"
	default:
		return fmt.Sprintf("invalid(%d)", int(v))
	}
}

// Valid reports whether v is exactly one of the six enumerated verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case True, False, Error, Unknown, NotEvaluated, NotApplicable:
		return true
	default:
		return false
	}
}

// Parse converts the canonical text form back into a Verdict.
func Parse(text string) (Verdict, error) {
	for _, v := range All {
		if v.Text() == text {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown verdict %q", text)
}

// Set is a bitmask over verdict categories, used by export directives.
type Set int

// None is the empty category set.
const None Set = 0

// AllSet returns the set containing every verdict category.
func AllSet() Set {
	s := None
	for _, v := range All {
		s |= Set(v)
	}
	return s
}

// Has reports whether the set contains the given verdict's category.
func (s Set) Has(v Verdict) bool {
	return s&Set(v) != 0
}

// With returns the set extended with the given verdict's category.
func (s Set) With(v Verdict) Set {
	return s | Set(v)
}

// Without returns the set with the given verdict's category removed.
func (s Set) Without(v Verdict) Set {
	return s &^ Set(v)
}
