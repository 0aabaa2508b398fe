// Package config loads the optional project file read by the palletgen
// subcommands.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultFile = "palletgen.yaml"

type Metadata struct {
	// Files are snapshot paths, relative to the directory of the project file
	Files []string `yaml:"files"`
	// Prune defaults to true when absent
	Prune         *bool `yaml:"prune,omitempty"`
	SortByVersion bool  `yaml:"sortByVersion,omitempty"`
}

type Config struct {
	Project  string   `yaml:"project"`
	Runtime  string   `yaml:"runtime"`
	Metadata Metadata `yaml:"metadata"`

	dir string
}

func Default() *Config {
	return &Config{Project: "Runtime", Runtime: "node"}
}

// Load reads the project file at path. Fields missing from the file keep
// their Default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading project file")
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parsing project file %s", path)
	}
	if c.Project == "" || c.Runtime == "" {
		return nil, errors.Errorf("project file %s: project and runtime must not be empty", path)
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// LoadOrDefault is Load, except a missing file yields Default
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

func (c *Config) Prune() bool {
	return c.Metadata.Prune == nil || *c.Metadata.Prune
}

// Files returns Metadata.Files resolved against the project file directory
func (c *Config) Files() []string {
	files := make([]string, len(c.Metadata.Files))
	for i, f := range c.Metadata.Files {
		if filepath.IsAbs(f) || c.dir == "" {
			files[i] = f
			continue
		}
		files[i] = filepath.Join(c.dir, f)
	}
	return files
}
