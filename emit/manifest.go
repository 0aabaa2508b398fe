package emit

import (
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type manifest struct {
	Outputs []OutputPath `yaml:"outputs"`
	Types   []TypeItem   `yaml:"types"`
	Modules []ModuleItem `yaml:"modules,omitempty"`
}

// WriteManifest writes p as a YAML document listing every planned item and
// output path
func WriteManifest(w io.Writer, p *Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(manifest{Outputs: p.SortedOutputs(), Types: p.Types, Modules: p.Modules}); err != nil {
		return errors.Wrap(err, "encoding manifest")
	}
	return errors.Wrap(enc.Close(), "flushing manifest")
}

func hexBytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return "0x" + hex.EncodeToString(b)
}
