package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/results"
	"github.com/ovalkit/ovalkit/internal/syschar"
)

type validateOptions struct {
	path        string
	definitions bool
	syschar     bool
	results     bool
}

func newValidateCmd(root *rootFlags) *cobra.Command {
	opts := validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an OVAL document",
		Long: `Validate checks a document for structural and semantic problems, printing
one line per finding. The document kind defaults to definitions; pass
--syschar or --results for the other kinds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.path = args[0]
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.definitions, "definitions", false, "Treat the file as a definitions document (default)")
	cmd.Flags().BoolVar(&opts.syschar, "syschar", false, "Treat the file as a system characteristics document")
	cmd.Flags().BoolVar(&opts.results, "results", false, "Treat the file as a results document")
	cmd.MarkFlagsMutuallyExclusive("definitions", "syschar", "results")

	return cmd
}

func runValidate(cmd *cobra.Command, opts validateOptions) error {
	out := cmd.OutOrStdout()
	report := func(line string) {
		fmt.Fprintln(out, line)
	}

	var err error
	switch {
	case opts.syschar:
		err = syschar.Validate(opts.path, report)
	case opts.results:
		err = results.Validate(opts.path, report)
	default:
		err = defs.Validate(opts.path, report)
	}

	if err != nil {
		fmt.Fprintln(out, invalidDocumentMsg)
		return hardError(err)
	}
	return nil
}
