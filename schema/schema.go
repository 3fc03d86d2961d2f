// Package schema synthesizes the command-line argument schema of a run
// target, parses arguments against it and renders its help.
//
// For a single process the schema is flat (in.*, envs.*). For a group every
// process field is addressed through the process name (P1.in.a, P1.envs.x,
// P1.forks) and the runtime-control knobs stay hidden from help unless full
// options are requested.
//
// The pipeline options (name, outdir, workdir, the runtime knobs and
// full-opts) and the group name share the root of a group schema with the
// process names, so a process may not take any of those names.
package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/prun/docstr"
	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

// FullOptsFlag is the flag that reveals hidden fields.
const FullOptsFlag = "full-opts"

// Section titles of the fixed option groups.
const (
	SectionOptions  = ""
	SectionPipeline = "pipeline"
)

// Undescribed is the description of fields without documentation.
const Undescribed = "Undescribed."

// FromConfig is the default text of fields whose default comes from the
// execution engine's configuration.
const FromConfig = "Default: <from config>"

// ErrNameClash is returned by [Synthesize] when a process name is already
// taken by a pipeline option or the group.
var ErrNameClash = pkg.MakeErrorf("process name clashes with an option")

// Strategies lists the valid error strategies.
var Strategies = []string{"retry", "halt", "ignore"}

// Schema is the argument schema of one run target.
type Schema struct {
	Prog     string
	Desc     string
	Single   bool
	FullOpts bool
	Target   *pipeline.Pipeline
	// Group is the group target, nil for a single process.
	Group *pipeline.Group

	fields []*Field
	index  map[string]*Field
}

func newSchema(prog string, fullOpts bool) *Schema {
	return &Schema{Prog: prog, FullOpts: fullOpts, index: map[string]*Field{}}
}

// Fields returns the fields in registration order.
func (s *Schema) Fields() []*Field { return slices.Clone(s.fields) }

// Field returns the field with the given path or flag name.
func (s *Schema) Field(path string) (*Field, bool) {
	f, ok := s.index[normalize(path)]

	return f, ok
}

// add registers f. It panics if the path is already registered; dotted
// prefixes keep distinct processes apart, so a collision is a defect in the
// namespace that declared them.
func (s *Schema) add(f *Field) *Field {
	key := f.Flag()
	if _, dup := s.index[key]; dup {
		panic(fmt.Sprintf("schema: duplicate field %q", f.Path))
	}

	if f.Dest == nil && f.Kind != KindNamespace {
		f.Dest = strings.Split(f.Path, ".")
	}

	if f.DefaultText == "" && f.Default != nil {
		f.DefaultText = "Default: " + formatDefault(f.Default)
	}

	s.index[key] = f
	s.fields = append(s.fields, f)

	return f
}

func (s *Schema) namespace(path, desc string) {
	s.add(&Field{Path: path, Desc: desc, Kind: KindNamespace})
}

// Synthesize builds the schema of target, the member name of namespace.
//
// A *pipeline.Process target yields a flat schema; any other target is
// converted with its Pipeline method and every field is prefixed with the
// process name. Errors from pipeline construction, such as a missing start
// process, are returned unchanged.
func Synthesize(namespace, name string, target pipeline.Runnable, fullOpts bool) (*Schema, error) {
	proc, single := target.(*pipeline.Process)

	pl, err := target.Pipeline(name)
	if err != nil {
		return nil, err
	}

	procs, err := pl.Procs()
	if err != nil {
		return nil, err
	}

	s := newSchema(pkg.Prog(namespace, name), fullOpts)
	s.Single, s.Target, s.Desc = single, pl, pl.Desc

	if single {
		s.Desc = proc.Summary()
	}

	s.add(&Field{
		Path:    FullOptsFlag,
		Desc:    "Show full options.",
		Kind:    KindBool,
		Default: false,
		Show:    true,
	})

	s.addPipelineOptions(pl, proc)

	if g, ok := target.(*pipeline.Group); ok {
		s.Group = g
		s.addGroupOptions(g.Def, g.Opts)
	}

	for _, p := range procs {
		if _, taken := s.Field(p.Name); taken && !single {
			return nil, ErrNameClash.Wrapf("process %q", p.Name)
		}

		s.addProcess(pl, p, single)
	}

	return s, nil
}

// ForGroup builds a schema holding only the options of def, used to parse
// the group options before the group is constructed.
func ForGroup(namespace, name string, def *pipeline.GroupDef) *Schema {
	s := newSchema(pkg.Prog(namespace, name), false)
	s.Desc = def.Summary()
	s.addGroupOptions(def, def.Defaults)

	return s
}

// addPipelineOptions registers the pipeline-level fields. For a single
// process target the runtime knobs also apply to that process, so its own
// values are the defaults.
func (s *Schema) addPipelineOptions(pl *pipeline.Pipeline, single *pipeline.Process) {
	s.namespace(SectionPipeline, "Pipeline options.")

	visible := []*Field{
		{Path: "name", Kind: KindString, Default: pl.Name, Desc: "The name of the pipeline."},
		{Path: "outdir", Kind: KindString, Desc: "The output directory of the pipeline."},
		{Path: "workdir", Kind: KindString, Desc: "The working directory of the pipeline."},
	}

	for _, f := range visible {
		f.Show, f.Section = true, SectionPipeline
		if f.Default == nil {
			f.DefaultText = FromConfig
		}

		s.add(f)
	}

	hidden := []*Field{
		{Path: "cache", Kind: KindBool, Desc: "Whether to use cache for all processes."},
		{Path: "dirsig", Kind: KindBool, Desc: "Whether to calculate signatures for directories."},
		{Path: "error-strategy", Kind: KindChoice, Choices: Strategies,
			Desc: "How to deal with the errors. One of {choices}."},
		{Path: "num-retries", Kind: KindInt, Desc: "How many times to retry failed jobs."},
		{Path: "forks", Kind: KindInt, Desc: "How many jobs to run simultaneously."},
		{Path: "submission-batch", Kind: KindInt, Desc: "How many jobs to submit simultaneously."},
		{Path: "scheduler", Kind: KindString, Desc: "The scheduler to run the jobs."},
		{Path: "plugin-opts", Kind: KindJSON, Desc: "Options for the plugins."},
		{Path: "scheduler-opts", Kind: KindJSON, Desc: "Options for the scheduler."},
	}

	var defaults map[string]any
	if single != nil {
		defaults = map[string]any{}
		for _, k := range knobs(single) {
			defaults[k.Path] = k.Default
		}
	}

	for _, f := range hidden {
		f.Show, f.Section = s.FullOpts, SectionPipeline
		f.Dest = []string{strings.ReplaceAll(f.Path, "-", "_")}

		if f.Default = defaults[f.Path]; f.Default == nil {
			f.DefaultText = FromConfig
		}

		s.add(f)
	}
}

func (s *Schema) addGroupOptions(def *pipeline.GroupDef, opts map[string]any) {
	secs := docstr.Parse(def.Doc)

	s.namespace(def.Name, "Options for group: "+def.Name)

	for _, key := range optionKeys(def, secs) {
		val := opts[key]
		kind := kindOf(val)

		if it, ok := secs.Item("Args", key); ok && isListHint(it.Hint) {
			kind = KindList
		}

		s.add(&Field{
			Path:    join(def.Name, key),
			Dest:    []string{def.Name, key},
			Desc:    secs.Desc("Args", key, Undescribed),
			Kind:    kind,
			Default: val,
			Show:    true,
			Section: def.Name,
		})
	}
}

// optionKeys lists the default option keys of def in sorted order, followed
// by options only documented in its "Args" section.
func optionKeys(def *pipeline.GroupDef, secs docstr.Sections) []string {
	keys := slices.Sorted(maps.Keys(def.Defaults))

	for _, it := range secs["Args"] {
		if !slices.Contains(keys, it.Name) {
			keys = append(keys, it.Name)
		}
	}

	return keys
}

func isListHint(hint string) bool {
	switch strings.ToLower(strings.ReplaceAll(hint, " ", "")) {
	case "list", "nargs:+", "nargs=+", "nargs:*", "nargs=*":
		return true
	default:
		return false
	}
}

func (s *Schema) addProcess(pl *pipeline.Pipeline, p *pipeline.Process, single bool) {
	secs := docstr.Parse(p.Doc)

	prefix := ""
	if !single {
		prefix = p.Name
		s.namespace(prefix, "Options for process: "+p.Name)
	}

	if pl.IsStart(p) {
		ns := join(prefix, "in")
		s.namespace(ns, "Input data for the process.")

		for _, key := range p.InputKeys() {
			f := &Field{
				Path:     join(ns, key.Name),
				Dest:     dest(prefix, "in", key.Name),
				Desc:     secs.Desc("Input", key.Name, Undescribed),
				Kind:     KindList,
				Hint:     key.Type,
				Required: true,
				Show:     true,
				Section:  ns,
			}

			// Data the process already carries is the default.
			if col, ok := p.InputData.Column(key.Name); ok {
				f.Default, f.Required = col, false
			}

			s.add(f)
		}
	}

	ns := join(prefix, "envs")
	s.namespace(ns, "Envs for the process.")

	for _, key := range slices.Sorted(maps.Keys(p.Envs)) {
		val := p.Envs[key]
		s.add(&Field{
			Path:    join(ns, key),
			Dest:    dest(prefix, "envs", key),
			Desc:    secs.Desc("Envs", key, Undescribed),
			Kind:    kindOf(val),
			Default: val,
			Show:    true,
			Section: ns,
		})
	}

	if single {
		return
	}

	for _, f := range knobs(p) {
		f.Path = join(prefix, f.Path)
		f.Dest = dest(prefix, strings.ReplaceAll(f.Dest[0], "-", "_"))
		f.Show, f.Section = s.FullOpts, prefix

		if f.Default == nil {
			f.DefaultText = FromConfig
		}

		s.add(f)
	}
}

// knobs returns the runtime-control fields of p. Values p already carries
// are the defaults, so binding an unchanged field leaves p as it was.
func knobs(p *pipeline.Process) []*Field {
	var strategy any
	if p.ErrorStrategy != "" {
		strategy = p.ErrorStrategy
	}

	fields := []*Field{
		{Path: "cache", Kind: KindBool, Default: ptrValue(p.Cache),
			Desc: "Whether use cache."},
		{Path: "dirsig", Kind: KindBool, Default: ptrValue(p.Dirsig),
			Desc: "Whether calculate signature for directories."},
		{Path: "export", Kind: KindBool, Default: ptrValue(p.Export),
			Desc: "Whether export output."},
		{Path: "error-strategy", Kind: KindChoice, Choices: Strategies, Default: strategy,
			Desc: "How to deal with the errors. One of {choices}."},
		{Path: "num-retries", Kind: KindInt, Default: ptrValue(p.NumRetries),
			Desc: "How many times to retry to jobs once error occurs."},
		{Path: "forks", Kind: KindInt, Default: ptrValue(p.Forks),
			Desc: "How many jobs to run simultaneously?"},
		{Path: "submission-batch", Kind: KindInt, Default: ptrValue(p.SubmissionBatch),
			Desc: "How many jobs to be submitted simultaneously."},
		{Path: "plugin-opts", Kind: KindJSON, Desc: "Options for process-level plugins."},
		{Path: "scheduler-opts", Kind: KindJSON, Desc: "The options for the scheduler."},
	}

	for _, f := range fields {
		f.Dest = []string{f.Path}
	}

	return fields
}

func dest(prefix string, elem ...string) []string {
	if prefix == "" {
		return elem
	}

	return append([]string{prefix}, elem...)
}

func ptrValue[T any](p *T) any {
	if p == nil {
		return nil
	}

	return *p
}

func formatDefault(v any) string {
	switch v := v.(type) {
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	case string:
		if v == "" {
			return `""`
		}

		return v
	default:
		return fmt.Sprint(v)
	}
}
