package probe

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/logger"
	"github.com/ovalkit/ovalkit/internal/syschar"
)

// Probe inspects the live system for objects of a single family.
//
// Collect must be strictly read-only. A probe reports per-object trouble
// through the returned flag (error, does not exist); the error return is
// reserved for faults that should abort the whole collection stage.
type Probe interface {
	// Family returns the object family this probe serves.
	Family() string

	// Collect gathers the items matching one object.
	Collect(ctx context.Context, obj *defs.Object) ([]syschar.Item, syschar.Flag, error)
}

// Registry holds the probes available to a collection session, keyed by
// object family.
type Registry struct {
	mu     sync.RWMutex
	probes map[string]Probe
	logger *logger.Logger
}

// NewRegistry returns an empty probe registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		probes: make(map[string]Probe),
		logger: log,
	}
}

// DefaultRegistry returns a registry with every builtin probe registered.
func DefaultRegistry(log *logger.Logger) *Registry {
	r := NewRegistry(log)
	for _, p := range []Probe{
		NewFileProbe(),
		NewEnvironmentVariableProbe(),
		NewTextFileContentProbe(),
	} {
		// Builtin registration cannot collide.
		_ = r.Register(p)
	}
	return r
}

// Register adds a probe to the registry.
func (r *Registry) Register(p Probe) error {
	if p == nil {
		return fmt.Errorf("probe is nil")
	}
	family := p.Family()
	if family == "" {
		return fmt.Errorf("probe family is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.probes[family]; exists {
		return fmt.Errorf("probe for family %q already registered", family)
	}
	r.probes[family] = p

	if r.logger != nil {
		r.logger.WithFields(map[string]any{"family": family}).Debug("probe registered")
	}
	return nil
}

// Get returns the probe serving a family.
func (r *Registry) Get(family string) (Probe, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.probes[family]
	return p, ok
}

// Families lists registered families in sorted order.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.probes))
	for family := range r.probes {
		out = append(out, family)
	}
	sort.Strings(out)
	return out
}
