// Package bind writes parsed argument values into the processes and the
// pipeline they target.
package bind

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
	"github.com/ardnew/prun/schema"
)

// ErrBind is returned when a parsed value cannot be applied.
var ErrBind = pkg.MakeErrorf("failed to bind arguments")

// Bind applies v to its target pipeline and the processes in it.
//
// For a single-process target the tree root holds the process fields; for a
// group each member process whose name is a key of the tree is bound from
// that subtree. Binding is not transactional: processes bound before an
// error keep their new values. Binding the same values twice yields the same
// state.
func Bind(v *schema.Values) error {
	pl := v.Target
	if pl == nil {
		return ErrBind.Wrapf("no target pipeline")
	}

	if err := bindPipeline(pl, v); err != nil {
		return err
	}

	procs, err := pl.Procs()
	if err != nil {
		return err
	}

	if v.Single {
		if len(procs) != 1 {
			return ErrBind.Wrapf("single target has %d processes", len(procs))
		}

		return Process(procs[0], v.Tree)
	}

	for _, p := range procs {
		sub, ok := v.Tree[p.Name].(map[string]any)
		if !ok {
			continue
		}

		if err := Process(p, sub); err != nil {
			return err
		}
	}

	return nil
}

// Process applies the fields of args to p.
//
// Input columns replace the input data; envs are merged into the existing
// envs; runtime knobs present in args are assigned directly, including nil
// values; plugin and scheduler options are merged only when both sides are
// non-nil; export is assigned only when present.
func Process(p *pipeline.Process, args map[string]any) error {
	if in, ok := args["in"].(map[string]any); ok {
		t, err := inputTable(p, in)
		if err != nil {
			return ErrBind.Wrapf("%s", p.Name).Wrap(err)
		}

		p.InputData = t
	}

	if envs, ok := args["envs"].(map[string]any); ok && p.Envs != nil && envs != nil {
		maps.Copy(p.Envs, envs)
	}

	var err error

	set := func(key string, fn func(any) error) {
		if err != nil {
			return
		}

		if val, ok := args[key]; ok {
			if e := fn(val); e != nil {
				err = ErrBind.Wrapf("%s.%s", p.Name, key).Wrap(e)
			}
		}
	}

	set("cache", assignBool(&p.Cache))
	set("dirsig", assignBool(&p.Dirsig))
	set("error_strategy", assignString(&p.ErrorStrategy))
	set("num_retries", assignInt(&p.NumRetries))
	set("forks", assignInt(&p.Forks))
	set("submission_batch", assignInt(&p.SubmissionBatch))
	set("plugin_opts", mergeMap(p.PluginOpts))
	set("scheduler_opts", mergeMap(p.SchedulerOpts))
	set("export", assignBool(&p.Export))

	return err
}

// bindPipeline applies the pipeline-level options at the root of the tree.
func bindPipeline(pl *pipeline.Pipeline, v *schema.Values) error {
	t := v.Tree

	if s, ok := t["name"].(string); ok && s != "" {
		pl.Name = s
	}

	if s, ok := t["outdir"].(string); ok {
		pl.Outdir = s
	}

	if s, ok := t["workdir"].(string); ok {
		pl.Workdir = s
	}

	if s, ok := t["scheduler"].(string); ok {
		pl.Options.Scheduler = s
	}

	if m, ok := t["plugin_opts"].(map[string]any); ok {
		pl.Options.PluginOpts = m
	}

	if m, ok := t["scheduler_opts"].(map[string]any); ok {
		pl.Options.SchedulerOpts = m
	}

	o := &pl.Options

	for key, fn := range map[string]func(any) error{
		"cache":            assignBool(&o.Cache),
		"dirsig":           assignBool(&o.Dirsig),
		"error_strategy":   assignString(&o.ErrorStrategy),
		"num_retries":      assignInt(&o.NumRetries),
		"forks":            assignInt(&o.Forks),
		"submission_batch": assignInt(&o.SubmissionBatch),
	} {
		if val, ok := t[key]; ok && val != nil {
			if err := fn(val); err != nil {
				return ErrBind.Wrapf("%s", key).Wrap(err)
			}
		}
	}

	pl.Hooked = slices.Clone(v.Hooked)

	return nil
}

// inputTable builds the input data of p from parsed columns, ordered by the
// input declarations of p.
func inputTable(p *pipeline.Process, in map[string]any) (pipeline.Table, error) {
	var (
		names  []string
		values [][]string
	)

	add := func(name string) error {
		col, ok := in[name].([]string)
		if !ok {
			return fmt.Errorf("input %q: expected a list, got %T", name, in[name])
		}

		names, values = append(names, name), append(values, col)

		return nil
	}

	for _, k := range p.InputKeys() {
		if _, ok := in[k.Name]; ok {
			if err := add(k.Name); err != nil {
				return pipeline.Table{}, err
			}
		}
	}

	for _, name := range slices.Sorted(maps.Keys(in)) {
		if !slices.Contains(names, name) {
			if err := add(name); err != nil {
				return pipeline.Table{}, err
			}
		}
	}

	return pipeline.MakeTable(names, values)
}

func assignBool(dst **bool) func(any) error {
	return func(v any) error {
		switch b := v.(type) {
		case nil:
			*dst = nil
		case bool:
			*dst = &b
		default:
			return fmt.Errorf("expected bool, got %T", v)
		}

		return nil
	}
}

func assignInt(dst **int) func(any) error {
	return func(v any) error {
		switch n := v.(type) {
		case nil:
			*dst = nil
		case int:
			*dst = &n
		default:
			return fmt.Errorf("expected int, got %T", v)
		}

		return nil
	}
}

func assignString(dst *string) func(any) error {
	return func(v any) error {
		switch s := v.(type) {
		case nil:
			*dst = ""
		case string:
			*dst = s
		default:
			return fmt.Errorf("expected string, got %T", v)
		}

		return nil
	}
}

func mergeMap(dst map[string]any) func(any) error {
	return func(v any) error {
		switch m := v.(type) {
		case nil:
		case map[string]any:
			if dst != nil {
				maps.Copy(dst, m)
			}
		default:
			return fmt.Errorf("expected object, got %T", v)
		}

		return nil
	}
}
