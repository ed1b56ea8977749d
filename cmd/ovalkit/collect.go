package main

import (
	"github.com/spf13/cobra"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/logger"
	"github.com/ovalkit/ovalkit/internal/probe"
	"github.com/ovalkit/ovalkit/internal/syschar"
)

// Probe wiring is indirected so command tests can swap the live system for
// fakes, the same way the runner vars elsewhere in this package work.
var (
	newProbeRegistry = probe.DefaultRegistry
	sysInfoSource    probe.SysInfoSource
)

type collectOptions struct {
	definitionsPath string
	outputPath      string
	verbose         bool
}

func newCollectCmd(root *rootFlags) *cobra.Command {
	opts := collectOptions{}

	cmd := &cobra.Command{
		Use:   "collect <definitions-file>",
		Short: "Probe the system and export collected characteristics",
		Long: `Collect imports an OVAL definitions document, probes the local system for
every referenced object and writes the resulting system characteristics
document to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.definitionsPath = args[0]
			opts.verbose = root.verbose
			return runCollect(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.outputPath, "output", "", "Write the characteristics document to a file instead of stdout")

	return cmd
}

func runCollect(cmd *cobra.Command, opts collectOptions) error {
	log := logger.ForVerbosity(opts.verbose, cmd.ErrOrStderr())

	defModel, err := defs.Import(opts.definitionsPath)
	if err != nil {
		return hardError(err)
	}

	sysModel, err := syschar.NewModel(defModel)
	if err != nil {
		return hardError(err)
	}

	probeSess, err := probe.NewSession(sysModel, newProbeRegistry(log), log)
	if err != nil {
		return hardError(err)
	}
	defer probeSess.Close()

	if sysInfoSource != nil {
		probeSess.SetSysInfoSource(sysInfoSource)
	}

	// Nothing is written until both query stages succeed, so a failed
	// collection never leaves a partial document behind.
	ctx := cmd.Context()
	si, err := probeSess.QuerySysInfo(ctx)
	if err != nil {
		return hardError(err)
	}
	if err := sysModel.SetSysInfo(si); err != nil {
		return hardError(err)
	}

	if err := probeSess.QueryObjects(ctx); err != nil {
		return hardError(err)
	}

	if opts.outputPath != "" {
		if err := sysModel.ExportFile(opts.outputPath); err != nil {
			return hardError(err)
		}
		return nil
	}
	if err := sysModel.Export(cmd.OutOrStdout()); err != nil {
		return hardError(err)
	}
	return nil
}
