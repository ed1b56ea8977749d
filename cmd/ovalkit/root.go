package main

import (
	"github.com/spf13/cobra"
)

// Exit codes follow the convention scanners are scripted against: 1 is a
// hard error, 2 means the system failed the evaluated policy.
const (
	exitOK   = 0
	exitErr  = 1
	exitFail = 2
)

// statusError carries a process exit code out of a command. RunE surfaces
// it to main, which maps it without re-printing already reported context.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.code == exitFail {
		return "evaluation failed"
	}
	return "command failed"
}

func (e *statusError) Unwrap() error {
	return e.err
}

func hardError(err error) error {
	return &statusError{code: exitErr, err: err}
}

func evalFailed() error {
	return &statusError{code: exitFail}
}

type rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "ovalkit",
		Short:         "ovalkit evaluates OVAL definitions against the local system",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output and debug logging")

	cmd.AddCommand(newCollectCmd(flags))
	cmd.AddCommand(newEvalCmd(flags))
	cmd.AddCommand(newAnalyseCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newReportCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
