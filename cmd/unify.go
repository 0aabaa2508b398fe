package cmd

import (
	"fmt"

	"github.com/cottand/palletgen/pipeline"
	"github.com/spf13/cobra"
)

var UnifyCmd = &cobra.Command{
	Use:          "unify [snapshot.yaml...]",
	Short:        "Merge several versions of a runtime into versioned definitions",
	Long:         "Merge several versions of a runtime into per-version child types, shared mother types and one aggregate per module",
	RunE:         runUnify,
	SilenceUsage: true,
}

var unifyFlags *runFlags

func init() {
	unifyFlags = bindRunFlags(UnifyCmd)
}

func runUnify(cmd *cobra.Command, args []string) error {
	conf, opts, err := unifyFlags.load(cmd)
	if err != nil {
		return err
	}
	paths, err := snapshotPaths(conf, args)
	if err != nil {
		return err
	}
	snapshots, err := loadSnapshots(paths)
	if err != nil {
		return err
	}

	res, err := pipeline.Multi(snapshots, opts)
	if err != nil {
		return describe(fmt.Errorf("could not merge %d snapshots: %w", len(snapshots), err))
	}
	for _, dup := range res.Duplicates {
		if !dup.SameContent {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "spec version %d given twice with different content, kept the first\n", dup.SpecVersion)
		}
	}
	reportDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
	return writeManifest(cmd, *unifyFlags.manifest, res.Plan)
}
