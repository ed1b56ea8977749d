package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/results"
	"github.com/ovalkit/ovalkit/internal/syschar"
)

type analyseOptions struct {
	definitionsPath string
	syscharPath     string
	resultFile      string
	directivesFile  string
	verbose         bool
}

func newAnalyseCmd(root *rootFlags) *cobra.Command {
	opts := analyseOptions{}

	cmd := &cobra.Command{
		Use:     "analyse <definitions-file> <syschar-file>",
		Aliases: []string{"analyze"},
		Short:   "Evaluate definitions against previously collected characteristics",
		Long: `Analyse evaluates an OVAL definitions document offline, against a system
characteristics document produced by an earlier collect run instead of live
probes. Verdicts never affect the exit code; only run failures do.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.definitionsPath = args[0]
			opts.syscharPath = args[1]
			opts.verbose = root.verbose
			return runAnalyse(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.resultFile, "result-file", "", "Export the results document to this file")
	cmd.Flags().StringVar(&opts.directivesFile, "directives", "", "Load export directives from a YAML file")

	return cmd
}

func runAnalyse(cmd *cobra.Command, opts analyseOptions) error {
	errOut := cmd.ErrOrStderr()

	defModel, err := defs.Import(opts.definitionsPath)
	if err != nil {
		fmt.Fprintf(errOut, "Failed to import the definition model (%s).\n", opts.definitionsPath)
		return hardError(err)
	}

	sysModel, err := syschar.NewModel(defModel)
	if err != nil {
		return hardError(err)
	}
	if err := sysModel.Import(opts.syscharPath); err != nil {
		fmt.Fprintf(errOut, "Failed to import the system characteristics model (%s).\n", opts.syscharPath)
		return hardError(err)
	}

	model, err := results.New(defModel, []*syschar.Model{sysModel})
	if err != nil {
		return hardError(err)
	}
	if err := model.EvalAll(); err != nil {
		return hardError(err)
	}

	if opts.resultFile != "" {
		directives, err := exportDirectives(opts.directivesFile)
		if err != nil {
			return hardError(err)
		}
		if err := model.ExportFile(opts.resultFile, directives); err != nil {
			return hardError(err)
		}
	}

	return nil
}
