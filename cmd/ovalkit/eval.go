package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/logger"
	"github.com/ovalkit/ovalkit/internal/results"
	"github.com/ovalkit/ovalkit/internal/session"
	"github.com/ovalkit/ovalkit/internal/verdict"
)

const invalidDocumentMsg = "OVAL Document is not valid"

type evalOptions struct {
	definitionsPath string
	id              string
	resultFile      string
	reportFile      string
	directivesFile  string
	skipValid       bool
	verbose         bool
}

func newEvalCmd(root *rootFlags) *cobra.Command {
	opts := evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <definitions-file>",
		Short: "Probe the system and evaluate OVAL definitions",
		Long: `Eval imports an OVAL definitions document, probes the local system and
evaluates either a single definition (--id) or every definition in document
order. Exit code 0 means the system passed, 2 means it failed the evaluated
definitions, 1 means the run itself broke.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.definitionsPath = args[0]
			opts.verbose = root.verbose
			return runEval(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "Evaluate only the definition with this ID")
	cmd.Flags().StringVar(&opts.resultFile, "result-file", "", "Export the results document to this file")
	cmd.Flags().StringVar(&opts.reportFile, "report-file", "", "Render an HTML report of the exported results (requires --result-file)")
	cmd.Flags().StringVar(&opts.directivesFile, "directives", "", "Load export directives from a YAML file")
	cmd.Flags().BoolVar(&opts.skipValid, "skip-valid", false, "Skip definitions document validation")

	return cmd
}

func runEval(cmd *cobra.Command, opts evalOptions) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	log := logger.ForVerbosity(opts.verbose, errOut)
	styled := isTerminal(out)

	if !opts.skipValid {
		if err := defs.Validate(opts.definitionsPath, func(line string) {
			fmt.Fprintln(out, line)
		}); err != nil {
			fmt.Fprintln(out, invalidDocumentMsg)
			return hardError(err)
		}
	}

	defModel, err := defs.Import(opts.definitionsPath)
	if err != nil {
		fmt.Fprintf(errOut, "Failed to import the definition model (%s).\n", opts.definitionsPath)
		return hardError(err)
	}

	sess, err := session.New(defModel, filepath.Base(opts.definitionsPath), newProbeRegistry(log), log)
	if err != nil {
		fmt.Fprintln(errOut, "Failed to create a new evaluation session.")
		return hardError(err)
	}
	defer sess.Close()

	if sysInfoSource != nil {
		sess.SetSysInfoSource(sysInfoSource)
	}

	ctx := cmd.Context()
	var (
		targeted verdict.Verdict
		tally    verdict.Tally
	)

	if opts.id != "" {
		targeted, err = sess.EvalDefinition(ctx, opts.id)
		if err == nil {
			printVerdictLine(out, opts.id, targeted, styled)
		}
	} else {
		err = sess.EvalAll(ctx, verdict.ReporterFunc(func(id string, v verdict.Verdict) {
			printVerdictLine(out, id, v, styled)
			tally.OnVerdict(id, v)
		}))
	}

	// The done line marks the end of the evaluation phase even when the
	// engine broke partway; only the report is withheld on error.
	fmt.Fprintln(out, "Evaluation done.")
	if err != nil {
		return hardError(err)
	}

	if opts.id == "" {
		tally.WriteReport(out)
	}

	if opts.resultFile != "" {
		if err := exportResults(cmd, sess, opts); err != nil {
			return err
		}
	}

	if opts.id != "" {
		return targetedExit(targeted)
	}
	if !tally.Passed() {
		return evalFailed()
	}
	return nil
}

// targetedExit maps a single-definition verdict to the process outcome.
// Only FALSE and UNKNOWN fail the run; ERROR and the non-answers still
// exit zero, matching the sweep policy in verdict.Tally.Passed.
func targetedExit(v verdict.Verdict) error {
	if v == verdict.False || v == verdict.Unknown {
		return evalFailed()
	}
	return nil
}

func exportResults(cmd *cobra.Command, sess *session.Session, opts evalOptions) error {
	model, err := sess.Results()
	if err != nil {
		return hardError(err)
	}

	directives, err := exportDirectives(opts.directivesFile)
	if err != nil {
		return hardError(err)
	}

	if err := model.ExportFile(opts.resultFile, directives); err != nil {
		return hardError(err)
	}

	if opts.reportFile != "" {
		log := logger.ForVerbosity(opts.verbose, cmd.ErrOrStderr())
		renderer := newRenderer(log)
		if err := renderer.Render(cmd.Context(), opts.resultFile, opts.reportFile); err != nil {
			return hardError(err)
		}
	}
	return nil
}

// exportDirectives returns the export policy: everything reported with full
// content unless a directives file narrows it.
func exportDirectives(path string) (*results.Directives, error) {
	if path == "" {
		return results.FullDirectives(), nil
	}
	return results.LoadDirectivesFile(path)
}
