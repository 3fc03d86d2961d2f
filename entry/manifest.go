package entry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

// manifest is the decoded form of a namespace manifest, shared by the YAML
// and HCL decoders.
type manifest struct {
	Doc       string      `yaml:"doc"`
	Processes []procSpec  `yaml:"processes"`
	Groups    []groupSpec `yaml:"groups"`
}

type procSpec struct {
	Name string `yaml:"name"`
	Doc  string `yaml:"doc"`
	// Role is "start", "end" or empty; only meaningful inside a group.
	Role string `yaml:"role"`

	Input     []string         `yaml:"input"`
	InputData map[string][]any `yaml:"input_data"`
	// InputFrom is an expression evaluated against {opts: <group options>}
	// when the group is built. It yields either a map of columns or a list
	// of values for the first input key.
	InputFrom string `yaml:"input_from"`

	Output   []string       `yaml:"output"`
	Script   string         `yaml:"script"`
	Requires []string       `yaml:"requires"`
	Envs     map[string]any `yaml:"envs"`

	Cache           *bool          `yaml:"cache"`
	Dirsig          *bool          `yaml:"dirsig"`
	Export          *bool          `yaml:"export"`
	ErrorStrategy   string         `yaml:"error_strategy"`
	NumRetries      *int           `yaml:"num_retries"`
	Forks           *int           `yaml:"forks"`
	SubmissionBatch *int           `yaml:"submission_batch"`
	PluginOpts      map[string]any `yaml:"plugin_opts"`
	SchedulerOpts   map[string]any `yaml:"scheduler_opts"`
}

type groupSpec struct {
	Name      string         `yaml:"name"`
	Doc       string         `yaml:"doc"`
	Abstract  bool           `yaml:"abstract"`
	Defaults  map[string]any `yaml:"defaults"`
	Processes []procSpec     `yaml:"processes"`
}

// module converts m into a namespace module. Expressions are compiled here
// so that syntax errors surface on resolution.
func (m manifest) module() (*pipeline.Module, error) {
	mod := &pipeline.Module{Doc: m.Doc}

	byName := map[string]*pipeline.Process{}

	for _, ps := range m.Processes {
		if ps.InputFrom != "" {
			return nil, fmt.Errorf("process %q: input_from requires a group", ps.Name)
		}

		p, err := ps.process()
		if err != nil {
			return nil, err
		}

		if _, dup := byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate process %q", p.Name)
		}

		byName[p.Name] = p
		mod.Members = append(mod.Members, pipeline.Member{Name: p.Name, Process: p})
	}

	for _, ps := range m.Processes {
		p := byName[ps.Name]

		for _, req := range ps.Requires {
			q, ok := byName[req]
			if !ok {
				return nil, fmt.Errorf("process %q requires unknown %q", ps.Name, req)
			}

			p.Requires = append(p.Requires, q)
		}
	}

	for _, gs := range m.Groups {
		def, err := gs.def()
		if err != nil {
			return nil, err
		}

		mod.Members = append(mod.Members, pipeline.Member{Name: def.Name, Group: def})
	}

	return mod, nil
}

func (ps procSpec) process() (*pipeline.Process, error) {
	if ps.Name == "" {
		return nil, errors.New("process without name")
	}

	p := &pipeline.Process{
		Name:            ps.Name,
		Doc:             ps.Doc,
		Input:           ps.Input,
		Output:          ps.Output,
		Script:          ps.Script,
		Envs:            normalizeMap(ps.Envs),
		Cache:           ps.Cache,
		Dirsig:          ps.Dirsig,
		Export:          ps.Export,
		ErrorStrategy:   ps.ErrorStrategy,
		NumRetries:      ps.NumRetries,
		Forks:           ps.Forks,
		SubmissionBatch: ps.SubmissionBatch,
		PluginOpts:      normalizeMap(ps.PluginOpts),
		SchedulerOpts:   normalizeMap(ps.SchedulerOpts),
	}

	if len(ps.InputData) > 0 {
		t, err := columnsTable(p, toColumns(ps.InputData))
		if err != nil {
			return nil, fmt.Errorf("process %q: %w", ps.Name, err)
		}

		p.InputData = t
	}

	return p, nil
}

func (gs groupSpec) def() (*pipeline.GroupDef, error) {
	if gs.Name == "" {
		return nil, errors.New("group without name")
	}

	def := &pipeline.GroupDef{
		Name:     gs.Name,
		Doc:      gs.Doc,
		Abstract: gs.Abstract,
		Defaults: normalizeMap(gs.Defaults),
	}

	names := map[string]bool{}
	for _, ps := range gs.Processes {
		names[ps.Name] = true
	}

	for _, ps := range gs.Processes {
		role, err := parseRole(ps.Role)
		if err != nil {
			return nil, fmt.Errorf("group %q: process %q: %w", gs.Name, ps.Name, err)
		}

		for _, req := range ps.Requires {
			if !names[req] {
				return nil, fmt.Errorf("group %q: process %q requires unknown %q",
					gs.Name, ps.Name, req)
			}
		}

		var prog *vm.Program

		if ps.InputFrom != "" {
			prog, err = expr.Compile(ps.InputFrom, expr.AllowUndefinedVariables())
			if err != nil {
				return nil, fmt.Errorf("group %q: process %q: input_from: %w",
					gs.Name, ps.Name, err)
			}
		}

		def.Builders = append(def.Builders, pipeline.Builder{
			Name:  ps.Name,
			Role:  role,
			Build: builder(ps, prog),
		})
	}

	return def, nil
}

// builder returns the build function of a group process.
func builder(ps procSpec, prog *vm.Program) func(*pipeline.Group) (*pipeline.Process, error) {
	return func(g *pipeline.Group) (*pipeline.Process, error) {
		p, err := ps.process()
		if err != nil {
			return nil, err
		}

		for _, req := range ps.Requires {
			if q := g.Proc(req); q != nil {
				p.Requires = append(p.Requires, q)
			}
		}

		if prog == nil {
			return p, nil
		}

		out, err := expr.Run(prog, map[string]any{"opts": maps.Clone(g.Opts)})
		if err != nil {
			return nil, fmt.Errorf("input_from: %w", err)
		}

		var cols map[string][]string

		switch v := out.(type) {
		case map[string]any:
			cols = map[string][]string{}
			for k, c := range v {
				cols[k] = stringList(c)
			}

		case nil:
			return p, nil

		default:
			keys := p.InputKeys()
			if len(keys) == 0 {
				return nil, errors.New("input_from: process declares no input")
			}

			cols = map[string][]string{keys[0].Name: stringList(v)}
		}

		t, err := columnsTable(p, cols)
		if err != nil {
			return nil, err
		}

		p.InputData = t

		return p, nil
	}
}

func parseRole(s string) (pipeline.Role, error) {
	switch s {
	case "":
		return pipeline.RoleNone, nil
	case "start":
		return pipeline.RoleStart, nil
	case "end":
		return pipeline.RoleEnd, nil
	default:
		return pipeline.RoleNone, fmt.Errorf("invalid role %q", s)
	}
}

// columnsTable orders cols by the input declarations of p, then by name for
// columns p does not declare.
func columnsTable(p *pipeline.Process, cols map[string][]string) (pipeline.Table, error) {
	var names []string

	for _, k := range p.InputKeys() {
		if _, ok := cols[k.Name]; ok {
			names = append(names, k.Name)
		}
	}

	for _, k := range slices.Sorted(maps.Keys(cols)) {
		if !slices.Contains(names, k) {
			names = append(names, k)
		}
	}

	values := make([][]string, len(names))
	for i, k := range names {
		values[i] = cols[k]
	}

	t, err := pipeline.MakeTable(names, values)
	if err != nil {
		return pipeline.Table{}, pkg.ErrManifest.Wrap(err)
	}

	return t, nil
}

func toColumns(data map[string][]any) map[string][]string {
	cols := make(map[string][]string, len(data))
	for k, v := range data {
		cols[k] = stringList(v)
	}

	return cols
}

// stringList converts a scalar or list into a list of strings.
func stringList(v any) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, e := range v {
			out[i] = scalarString(e)
		}

		return out
	default:
		return []string{scalarString(v)}
	}
}

func scalarString(v any) string {
	switch v := normalize(v).(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// normalize converts decoder-specific numeric types into int and float64.
func normalize(v any) any {
	switch v := v.(type) {
	case uint64:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case int32:
		return int(v)
	case float32:
		return float64(v)
	case map[string]any:
		return normalizeMap(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}

		return out
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}

	return out
}
