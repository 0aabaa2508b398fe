package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
project: Polkadot
runtime: polkadot
metadata:
  files: [v1.yaml, /abs/v2.yaml]
  prune: false
  sortByVersion: true
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Polkadot", c.Project)
	assert.Equal(t, "polkadot", c.Runtime)
	assert.False(t, c.Prune())
	assert.True(t, c.Metadata.SortByVersion)
	assert.Equal(t, []string{filepath.Join(filepath.Dir(path), "v1.yaml"), "/abs/v2.yaml"}, c.Files())
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeFile(t, "metadata:\n  files: [a.json]\n"))
	require.NoError(t, err)
	assert.Equal(t, "Runtime", c.Project)
	assert.Equal(t, "node", c.Runtime)
	assert.True(t, c.Prune())
	assert.False(t, c.Metadata.SortByVersion)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "malformed", content: "project: [unterminated"},
		{name: "empty project", content: "project: \"\"\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Empty(t, c.Files())
}
