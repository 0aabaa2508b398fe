package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cottand/palletgen/internal/config"
	"github.com/cottand/palletgen/schemaerr"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotPaths(t *testing.T) {
	conf, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	_, err = snapshotPaths(conf, nil)
	assert.Error(t, err)

	paths, err := snapshotPaths(conf, []string{"a.yaml"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.yaml"}, paths)
}

func TestFlagsOverrideProjectFile(t *testing.T) {
	dir := t.TempDir()
	at := filepath.Join(dir, config.DefaultFile)
	require.NoError(t, os.WriteFile(at, []byte("project: Kusama\nruntime: kusama\nmetadata:\n  prune: false\n  files: [v1.yaml]\n"), 0o644))

	c := &cobra.Command{Use: "test"}
	flags := bindRunFlags(c)
	require.NoError(t, c.Flags().Parse([]string{"--config", at, "--project", "Override", "--sort"}))

	conf, opts, err := flags.load(c)
	require.NoError(t, err)
	assert.Equal(t, "Override", opts.Project)
	assert.Equal(t, "kusama", opts.Runtime)
	assert.False(t, opts.Prune)
	assert.True(t, opts.SortByVersion)

	paths, err := snapshotPaths(conf, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "v1.yaml")}, paths)
}

func TestDescribe(t *testing.T) {
	se := schemaerr.New(schemaerr.NewNoConvergence{Pass: "wrapper refinement", Iterations: 3})
	err := describe(fmt.Errorf("could not refine: %w", se))
	assert.Contains(t, err.Error(), schemaerr.FormatWithCode(se))

	plain := errors.New("boom")
	assert.Equal(t, plain, describe(plain))
}

func TestReportDiagnostics(t *testing.T) {
	out := &bytes.Buffer{}
	reportDiagnostics(out, nil)
	assert.Empty(t, out.String())

	diags := (*schemaerr.Errors)(nil).With(schemaerr.New(schemaerr.NewUnresolvedReference{Owner: "constant X.Y", ID: 9}))
	reportDiagnostics(out, diags)
	assert.Contains(t, out.String(), "(E001)")
}
