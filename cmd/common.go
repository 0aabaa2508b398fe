package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cottand/palletgen/emit"
	"github.com/cottand/palletgen/internal/config"
	"github.com/cottand/palletgen/internal/log"
	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/pipeline"
	"github.com/cottand/palletgen/schemaerr"
	"github.com/spf13/cobra"
)

// runFlags are the flags shared by every subcommand. Values given on the
// command line override the project file.
type runFlags struct {
	configPath *string
	runtime    *string
	project    *string
	prune      *bool
	sort       *bool
	manifest   *string
	logLevel   *int
	sections   *[]string
}

func bindRunFlags(c *cobra.Command) *runFlags {
	return &runFlags{
		configPath: c.Flags().StringP("config", "c", config.DefaultFile, "project file, ignored when missing"),
		runtime:    c.Flags().StringP("runtime", "r", "", "runtime name, overrides the project file"),
		project:    c.Flags().StringP("project", "p", "", "project name prefixing every output path"),
		prune:      c.Flags().Bool("prune", true, "drop wrapper types left unreferenced by refinement"),
		sort:       c.Flags().Bool("sort", false, "order snapshots by spec version before merging"),
		manifest:   c.Flags().StringP("manifest", "o", "", "write the emission plan here instead of stdout"),
		logLevel:   c.Flags().IntP("log-level", "l", int(slog.LevelError), "log level"),
		sections:   c.Flags().StringSlice("log-sections", nil, "log sections emitted below warn level"),
	}
}

func (f *runFlags) load(c *cobra.Command) (*config.Config, pipeline.Options, error) {
	log.SetLevel(slog.Level(*f.logLevel))
	if len(*f.sections) > 0 {
		log.EnableSections(*f.sections...)
	}

	conf, err := config.LoadOrDefault(*f.configPath)
	if err != nil {
		return nil, pipeline.Options{}, fmt.Errorf("could not load project file: %w", err)
	}
	opts := pipeline.Options{
		Runtime:       conf.Runtime,
		Project:       conf.Project,
		Prune:         conf.Prune(),
		SortByVersion: conf.Metadata.SortByVersion,
	}
	flags := c.Flags()
	if flags.Changed("runtime") {
		opts.Runtime = *f.runtime
	}
	if flags.Changed("project") {
		opts.Project = *f.project
	}
	if flags.Changed("prune") {
		opts.Prune = *f.prune
	}
	if flags.Changed("sort") {
		opts.SortByVersion = *f.sort
	}
	return conf, opts, nil
}

// snapshotPaths prefers positional arguments over the project file
func snapshotPaths(conf *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if files := conf.Files(); len(files) > 0 {
		return files, nil
	}
	return nil, fmt.Errorf("no snapshot given: pass paths as arguments or list them under metadata.files")
}

func loadSnapshots(paths []string) ([]*metadata.Snapshot, error) {
	snapshots := make([]*metadata.Snapshot, 0, len(paths))
	for _, p := range paths {
		s, err := metadata.LoadFile(p)
		if err != nil {
			return nil, describe(fmt.Errorf("could not load snapshot: %w", err))
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// describe formats an error aborting the run, with its code when it has one
func describe(err error) error {
	if se, ok := schemaerr.As(err); ok {
		return fmt.Errorf("errors found during generation:\n%s", schemaerr.FormatWithCode(se))
	}
	return err
}

func reportDiagnostics(w io.Writer, diags *schemaerr.Errors) {
	if !diags.HasError() {
		return
	}
	sb := &strings.Builder{}
	for _, e := range diags.Errors() {
		sb.WriteString(schemaerr.FormatWithCode(e))
		sb.WriteString("\n")
	}
	_, _ = fmt.Fprintf(w, "skipped items:\n%s", sb.String())
}

func writeManifest(c *cobra.Command, at string, plan *emit.Plan) error {
	if at == "" {
		return emit.WriteManifest(c.OutOrStdout(), plan)
	}
	f, err := os.Create(at)
	if err != nil {
		return fmt.Errorf("could not create manifest: %w", err)
	}
	if err := emit.WriteManifest(f, plan); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not write manifest: %w", err)
	}
	return f.Close()
}
