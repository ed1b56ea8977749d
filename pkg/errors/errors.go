package errors

import (
	"fmt"
)

// ValidationError indicates a document failed schema or semantic validation
// before import was attempted.
type ValidationError struct {
	Path    string
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(path, field, message string, err error) error {
	return &ValidationError{Path: path, Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s: %s", e.Path, e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ImportError indicates a model file was unreadable or malformed.
type ImportError struct {
	Path    string
	Kind    string
	Message string
	Err     error
}

// NewImportError constructs an ImportError for the given document kind.
func NewImportError(path, kind string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ImportError{Path: path, Kind: kind, Message: message, Err: err}
}

func (e *ImportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind != "" {
		return fmt.Sprintf("import error: %s document %s: %s", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("import error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ImportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SessionError indicates an evaluation session could not be created or used.
type SessionError struct {
	Name    string
	Message string
	Err     error
}

// NewSessionError constructs a SessionError for the named session.
func NewSessionError(name, message string, err error) error {
	return &SessionError{Name: name, Message: message, Err: err}
}

func (e *SessionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Name != "" {
		return fmt.Sprintf("session error [%s]: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("session error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *SessionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ProbeError indicates a live-collection stage failed.
type ProbeError struct {
	Stage  string
	Object string
	Err    error
}

// NewProbeError constructs a ProbeError for the given collection stage.
func NewProbeError(stage, object string, err error) error {
	return &ProbeError{Stage: stage, Object: object, Err: err}
}

func (e *ProbeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Object != "" {
		return fmt.Sprintf("probe error during %s for object %s: %v", e.Stage, e.Object, e.Err)
	}
	return fmt.Sprintf("probe error during %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the root error.
func (e *ProbeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EngineError indicates the evaluation engine signalled an internal failure,
// as opposed to producing a valid verdict for a definition.
type EngineError struct {
	DefinitionID string
	Message      string
	Err          error
}

// NewEngineError constructs an EngineError for the given definition.
func NewEngineError(definitionID, message string, err error) error {
	return &EngineError{DefinitionID: definitionID, Message: message, Err: err}
}

func (e *EngineError) Error() string {
	if e == nil {
		return ""
	}
	if e.DefinitionID != "" {
		return fmt.Sprintf("engine error on definition %s: %s", e.DefinitionID, e.Message)
	}
	return fmt.Sprintf("engine error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *EngineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RenderError indicates the external report transform failed.
type RenderError struct {
	Template string
	Err      error
}

// NewRenderError constructs a RenderError for the given template.
func NewRenderError(template string, err error) error {
	return &RenderError{Template: template, Err: err}
}

func (e *RenderError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("render error [%s]: %v", e.Template, e.Err)
}

// Unwrap exposes the underlying error.
func (e *RenderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
