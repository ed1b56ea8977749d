// Package report turns an exported results document into a human readable
// HTML report by delegating to the system xsltproc with the stock results
// stylesheet.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ovalkit/ovalkit/internal/logger"
	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

// DefaultTemplate is the stylesheet applied when the caller does not name
// one of their own.
const DefaultTemplate = "oval-results-report.xsl"

// DefaultTemplateDirs are searched, in order, for a template given by bare
// name. An absolute or relative path bypasses the search.
var DefaultTemplateDirs = []string{
	"/usr/share/ovalkit/xsl",
	"/usr/local/share/ovalkit/xsl",
}

// Renderer shells out to xsltproc. The zero value is not usable; construct
// with NewRenderer.
type Renderer struct {
	template string
	xsltproc string
	logger   *logger.Logger
}

// Option adjusts a Renderer.
type Option func(*Renderer)

// WithTemplate overrides the stylesheet.
func WithTemplate(template string) Option {
	return func(r *Renderer) {
		if template != "" {
			r.template = template
		}
	}
}

// WithXSLTProc overrides the processor binary, mainly for tests.
func WithXSLTProc(path string) Option {
	return func(r *Renderer) {
		if path != "" {
			r.xsltproc = path
		}
	}
}

// NewRenderer builds a renderer with the default stylesheet and processor.
func NewRenderer(log *logger.Logger, opts ...Option) *Renderer {
	r := &Renderer{
		template: DefaultTemplate,
		xsltproc: "xsltproc",
		logger:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Template returns the stylesheet the renderer will apply.
func (r *Renderer) Template() string {
	return r.template
}

// resolveTemplate locates the stylesheet on disk. Bare names are looked up
// under the well known directories.
func (r *Renderer) resolveTemplate() (string, error) {
	if filepath.Base(r.template) != r.template {
		if _, err := os.Stat(r.template); err != nil {
			return "", err
		}
		return r.template, nil
	}

	for _, dir := range DefaultTemplateDirs {
		candidate := filepath.Join(dir, r.template)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("stylesheet %q not found under %v", r.template, DefaultTemplateDirs)
}

// Render applies the stylesheet to resultsFile, writing outputFile. Any
// failure, from a missing stylesheet to a nonzero xsltproc exit, comes back
// as a RenderError.
func (r *Renderer) Render(ctx context.Context, resultsFile, outputFile string) error {
	if resultsFile == "" || outputFile == "" {
		return ovalerrors.NewRenderError(r.template, fmt.Errorf("results and output paths are required"))
	}

	stylesheet, err := r.resolveTemplate()
	if err != nil {
		return ovalerrors.NewRenderError(r.template, err)
	}

	if r.logger != nil {
		r.logger.WithFields(map[string]any{
			"stylesheet": stylesheet,
			"results":    resultsFile,
			"output":     outputFile,
		}).Debug("rendering report")
	}

	cmd := exec.CommandContext(ctx, r.xsltproc, "--output", outputFile, stylesheet, resultsFile)
	return r.run(cmd)
}

// RenderTo applies the stylesheet to resultsFile, streaming the document to
// w instead of a file.
func (r *Renderer) RenderTo(ctx context.Context, resultsFile string, w io.Writer) error {
	if resultsFile == "" {
		return ovalerrors.NewRenderError(r.template, fmt.Errorf("results path is required"))
	}

	stylesheet, err := r.resolveTemplate()
	if err != nil {
		return ovalerrors.NewRenderError(r.template, err)
	}

	cmd := exec.CommandContext(ctx, r.xsltproc, stylesheet, resultsFile)
	cmd.Stdout = w
	return r.run(cmd)
}

func (r *Renderer) run(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return ovalerrors.NewRenderError(r.template, err)
	}
	return nil
}
