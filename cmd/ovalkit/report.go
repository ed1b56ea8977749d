package main

import (
	"github.com/spf13/cobra"

	"github.com/ovalkit/ovalkit/internal/logger"
	"github.com/ovalkit/ovalkit/internal/report"
)

// newRenderer is indirected so command tests can pin the stylesheet and
// processor instead of relying on the host's xsltproc.
var newRenderer = report.NewRenderer

type reportOptions struct {
	resultsPath string
	outputPath  string
	template    string
	verbose     bool
}

func newReportCmd(root *rootFlags) *cobra.Command {
	opts := reportOptions{}

	cmd := &cobra.Command{
		Use:   "report <results-file>",
		Short: "Render an HTML report from a results document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.resultsPath = args[0]
			opts.verbose = root.verbose
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.outputPath, "output", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&opts.template, "template", "", "Override the report stylesheet")

	return cmd
}

func runReport(cmd *cobra.Command, opts reportOptions) error {
	log := logger.ForVerbosity(opts.verbose, cmd.ErrOrStderr())
	renderer := newRenderer(log, report.WithTemplate(opts.template))

	if opts.outputPath != "" {
		if err := renderer.Render(cmd.Context(), opts.resultsPath, opts.outputPath); err != nil {
			return hardError(err)
		}
		return nil
	}
	if err := renderer.RenderTo(cmd.Context(), opts.resultsPath, cmd.OutOrStdout()); err != nil {
		return hardError(err)
	}
	return nil
}
