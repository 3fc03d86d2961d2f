package entry

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

// hclManifest is the HCL form of a manifest:
//
//	doc = "Example namespace."
//
//	group "G" {
//	  defaults = { input = ["100"] }
//
//	  process "P1" {
//	    role       = "start"
//	    input      = ["a"]
//	    input_from = "{a: opts.input}"
//	  }
//	}
type hclManifest struct {
	Doc       string        `hcl:"doc,optional"`
	Processes []*hclProcess `hcl:"process,block"`
	Groups    []*hclGroup   `hcl:"group,block"`
}

type hclProcess struct {
	Name            string    `hcl:"name,label"`
	Doc             string    `hcl:"doc,optional"`
	Role            string    `hcl:"role,optional"`
	Input           []string  `hcl:"input,optional"`
	InputData       cty.Value `hcl:"input_data,optional"`
	InputFrom       string    `hcl:"input_from,optional"`
	Output          []string  `hcl:"output,optional"`
	Script          string    `hcl:"script,optional"`
	Requires        []string  `hcl:"requires,optional"`
	Envs            cty.Value `hcl:"envs,optional"`
	Cache           *bool     `hcl:"cache,optional"`
	Dirsig          *bool     `hcl:"dirsig,optional"`
	Export          *bool     `hcl:"export,optional"`
	ErrorStrategy   string    `hcl:"error_strategy,optional"`
	NumRetries      *int      `hcl:"num_retries,optional"`
	Forks           *int      `hcl:"forks,optional"`
	SubmissionBatch *int      `hcl:"submission_batch,optional"`
	PluginOpts      cty.Value `hcl:"plugin_opts,optional"`
	SchedulerOpts   cty.Value `hcl:"scheduler_opts,optional"`
}

type hclGroup struct {
	Name      string        `hcl:"name,label"`
	Doc       string        `hcl:"doc,optional"`
	Abstract  bool          `hcl:"abstract,optional"`
	Defaults  cty.Value     `hcl:"defaults,optional"`
	Processes []*hclProcess `hcl:"process,block"`
}

// LoadHCL reads the HCL namespace manifest at path.
func LoadHCL(path string) (*pipeline.Module, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, pkg.ErrManifest.Wrapf("%s", path).Wrap(diags)
	}

	var hm hclManifest

	diags = gohcl.DecodeBody(file.Body, nil, &hm)
	if diags.HasErrors() {
		return nil, pkg.ErrManifest.Wrapf("%s", path).Wrap(diags)
	}

	m, err := hm.manifest()
	if err != nil {
		return nil, pkg.ErrManifest.Wrapf("%s", path).Wrap(err)
	}

	mod, err := m.module()
	if err != nil {
		return nil, pkg.ErrManifest.Wrapf("%s", path).Wrap(err)
	}

	return mod, nil
}

func (hm hclManifest) manifest() (manifest, error) {
	m := manifest{Doc: hm.Doc}

	for _, hp := range hm.Processes {
		ps, err := hp.spec()
		if err != nil {
			return m, err
		}

		m.Processes = append(m.Processes, ps)
	}

	for _, hg := range hm.Groups {
		defaults, err := ctyMap(hg.Defaults)
		if err != nil {
			return m, fmt.Errorf("group %q: defaults: %w", hg.Name, err)
		}

		gs := groupSpec{
			Name:     hg.Name,
			Doc:      hg.Doc,
			Abstract: hg.Abstract,
			Defaults: defaults,
		}

		for _, hp := range hg.Processes {
			ps, err := hp.spec()
			if err != nil {
				return m, fmt.Errorf("group %q: %w", hg.Name, err)
			}

			gs.Processes = append(gs.Processes, ps)
		}

		m.Groups = append(m.Groups, gs)
	}

	return m, nil
}

func (hp *hclProcess) spec() (procSpec, error) {
	ps := procSpec{
		Name:            hp.Name,
		Doc:             hp.Doc,
		Role:            hp.Role,
		Input:           hp.Input,
		InputFrom:       hp.InputFrom,
		Output:          hp.Output,
		Script:          hp.Script,
		Requires:        hp.Requires,
		Cache:           hp.Cache,
		Dirsig:          hp.Dirsig,
		Export:          hp.Export,
		ErrorStrategy:   hp.ErrorStrategy,
		NumRetries:      hp.NumRetries,
		Forks:           hp.Forks,
		SubmissionBatch: hp.SubmissionBatch,
	}

	var err error

	fields := []struct {
		name string
		src  cty.Value
		dst  *map[string]any
	}{
		{"envs", hp.Envs, &ps.Envs},
		{"plugin_opts", hp.PluginOpts, &ps.PluginOpts},
		{"scheduler_opts", hp.SchedulerOpts, &ps.SchedulerOpts},
	}

	for _, f := range fields {
		if *f.dst, err = ctyMap(f.src); err != nil {
			return ps, fmt.Errorf("process %q: %s: %w", hp.Name, f.name, err)
		}
	}

	data, err := ctyMap(hp.InputData)
	if err != nil {
		return ps, fmt.Errorf("process %q: input_data: %w", hp.Name, err)
	}

	if len(data) > 0 {
		ps.InputData = map[string][]any{}

		for k, v := range data {
			if list, ok := v.([]any); ok {
				ps.InputData[k] = list
			} else {
				ps.InputData[k] = []any{v}
			}
		}
	}

	return ps, nil
}

// ctyMap converts an object or map value into a Go map. Null values yield nil.
func ctyMap(v cty.Value) (map[string]any, error) {
	native, err := ctyToNative(v)
	if err != nil || native == nil {
		return nil, err
	}

	m, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", v.Type().FriendlyName())
	}

	return m, nil
}

// ctyToNative converts a cty value into its natural Go counterpart. Whole
// numbers become int, other numbers float64.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == 0 {
				return int(i), nil
			}
		}

		f, _ := bf.Float64()

		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := []any{}

		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()

			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}

			out = append(out, nv)
		}

		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := map[string]any{}

		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()

			nv, err := ctyToNative(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", kv.AsString(), err)
			}

			out[kv.AsString()] = nv
		}

		return out, nil

	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}
