package cmd

import (
	"fmt"

	"github.com/cottand/palletgen/pipeline"
	"github.com/spf13/cobra"
)

var RefineCmd = &cobra.Command{
	Use:          "refine [snapshot.yaml]",
	Short:        "Refine a single metadata snapshot and plan its definitions",
	RunE:         runRefine,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
}

var refineFlags *runFlags

func init() {
	refineFlags = bindRunFlags(RefineCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	conf, opts, err := refineFlags.load(cmd)
	if err != nil {
		return err
	}
	paths, err := snapshotPaths(conf, args)
	if err != nil {
		return err
	}
	if len(paths) != 1 {
		return fmt.Errorf("refine takes exactly one snapshot, got %d: use unify to merge several", len(paths))
	}
	snapshots, err := loadSnapshots(paths)
	if err != nil {
		return err
	}

	res, err := pipeline.Single(snapshots[0], opts)
	if err != nil {
		return describe(fmt.Errorf("could not refine %s: %w", paths[0], err))
	}
	reportDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
	return writeManifest(cmd, *refineFlags.manifest, res.Plan)
}
