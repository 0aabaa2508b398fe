package main

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// each folder under testdata is one case, named after the subcommand it runs.
// Its snapshots are passed in name order and expected.yaml holds the subset
// of the manifest that must match.
//
//go:embed testdata
var testSet embed.FS

type expectedManifest struct {
	Outputs []string `yaml:"outputs"`
	Modules []struct {
		Name   string   `yaml:"name"`
		Errors []string `yaml:"errors"`
	} `yaml:"modules"`
}

func TestEndToEnd(t *testing.T) {
	cases, err := testSet.ReadDir("testdata")
	require.NoError(t, err)
	for _, c := range cases {
		if !c.IsDir() {
			continue
		}
		t.Run(c.Name(), func(t *testing.T) {
			testCase(t, path.Join("testdata", c.Name()))
		})
	}
}

func testCase(t *testing.T, dir string) {
	subcommand, _, _ := strings.Cut(path.Base(dir), "-")
	tmp := t.TempDir()

	entries, err := testSet.ReadDir(dir)
	require.NoError(t, err)
	var expected expectedManifest
	args := []string{subcommand, "--config", filepath.Join(tmp, "absent.yaml")}
	for _, e := range entries {
		content, err := fs.ReadFile(testSet, path.Join(dir, e.Name()))
		require.NoError(t, err)
		if e.Name() == "expected.yaml" {
			require.NoError(t, yaml.Unmarshal(content, &expected))
			continue
		}
		at := filepath.Join(tmp, e.Name())
		require.NoError(t, os.WriteFile(at, content, 0o644))
		args = append(args, at)
	}

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())

	var got expectedManifest
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, expected.Outputs, got.Outputs)
	assert.Equal(t, expected.Modules, got.Modules)
}
