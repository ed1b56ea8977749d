package probe

import (
	"context"
	"fmt"
	"os"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/syschar"
)

// EnvironmentVariableProbe collects process environment variables for
// objects of family "environmentvariable". The object must carry a "name"
// field.
type EnvironmentVariableProbe struct{}

// NewEnvironmentVariableProbe returns the builtin environment probe.
func NewEnvironmentVariableProbe() *EnvironmentVariableProbe {
	return &EnvironmentVariableProbe{}
}

// Family implements Probe.
func (p *EnvironmentVariableProbe) Family() string {
	return "environmentvariable"
}

// Collect implements Probe.
func (p *EnvironmentVariableProbe) Collect(ctx context.Context, obj *defs.Object) ([]syschar.Item, syschar.Flag, error) {
	if err := ctx.Err(); err != nil {
		return nil, syschar.FlagError, err
	}

	name, ok := obj.FieldValue("name")
	if !ok || name == "" {
		return nil, syschar.FlagError, fmt.Errorf("object %s has no name field", obj.ID)
	}

	value, present := os.LookupEnv(name)
	if !present {
		return nil, syschar.FlagDoesNotExist, nil
	}

	item := syschar.Item{Fields: []syschar.Field{
		{Name: "name", Value: name},
		{Name: "value", Value: value},
	}}
	return []syschar.Item{item}, syschar.FlagComplete, nil
}
