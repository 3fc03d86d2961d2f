package entry

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

// LoadYAML reads the namespace manifest at path.
//
//	doc: Example namespace.
//	processes:
//	  - name: P1
//	    input: [a]
//	    output: ["outfile:file:out.txt"]
//	    script: echo {{.in.a}} > {{.out.outfile}}
//	groups:
//	  - name: G
//	    defaults: {input: ["100"]}
//	    processes:
//	      - name: P1
//	        role: start
//	        input: [a]
//	        input_from: "{a: opts.input}"
func LoadYAML(path string) (*pipeline.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkg.ErrManifest.Wrapf("%s", path).Wrap(err)
	}

	return DecodeYAML(path, data)
}

// DecodeYAML decodes a YAML namespace manifest. The name is used in errors.
func DecodeYAML(name string, data []byte) (*pipeline.Module, error) {
	var m manifest

	err := yaml.UnmarshalWithOptions(data, &m, yaml.DisallowUnknownField())
	if err != nil {
		return nil, pkg.ErrManifest.Wrapf("%s", name).Wrap(err)
	}

	mod, err := m.module()
	if err != nil {
		return nil, pkg.ErrManifest.Wrapf("%s", name).Wrap(err)
	}

	return mod, nil
}
