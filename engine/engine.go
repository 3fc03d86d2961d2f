// Package engine runs pipelines on the local host.
//
// Processes run one at a time in dependency order. Each row of a process's
// input table is a job; jobs of one process run concurrently up to the
// process's fork limit. A job renders its outputs and script from templates,
// then runs the script with a shell inside its own work directory.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/ardnew/prun/log"
	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

// Error strategies.
const (
	StrategyIgnore = "ignore"
	StrategyHalt   = "halt"
	StrategyRetry  = "retry"
)

// ErrNoInput is returned when a start process carries no input data.
var ErrNoInput = pkg.MakeErrorf("process has no input data")

// Engine runs pipelines with a host configuration.
type Engine struct {
	Config Config
}

// New returns an engine using cfg.
func New(cfg Config) *Engine {
	return &Engine{Config: cfg}
}

// Run runs every process of p and returns the first error that halts it.
func (e *Engine) Run(ctx context.Context, p *pipeline.Pipeline) error {
	procs, err := p.Procs()
	if err != nil {
		return pkg.ErrRun.Wrap(err)
	}

	if sched := e.scheduler(p); sched != "local" {
		return pkg.ErrRun.Wrapf("unsupported scheduler %q", sched)
	}

	outdir, workdir, err := e.dirs(p)
	if err != nil {
		return pkg.ErrRun.Wrap(err)
	}

	log.InfoContext(ctx, "running pipeline",
		slog.String("pipeline", p.Name),
		slog.Int("processes", len(procs)),
		slog.String("outdir", outdir),
	)

	results := make(map[*pipeline.Process][][]string, len(procs))

	for _, proc := range procs {
		st, err := e.settings(p, proc)
		if err != nil {
			return pkg.ErrRun.Wrapf("process %s", proc.Name).Wrap(err)
		}

		data, err := inputTable(p, proc, results)
		if err != nil {
			return pkg.ErrRun.Wrapf("process %s", proc.Name).Wrap(err)
		}

		export := p.IsEnd(proc)
		if proc.Export != nil {
			export = *proc.Export
		}

		r := &procRun{
			proc:    proc,
			set:     st,
			data:    data,
			workdir: filepath.Join(workdir, p.Name, proc.Name),
			hooked:  p.Hooked,
		}

		if export {
			r.outdir = filepath.Join(outdir, proc.Name)
		}

		out, err := r.run(ctx)
		if err != nil {
			return pkg.ErrRun.Wrapf("process %s", proc.Name).Wrap(err)
		}

		results[proc] = out
	}

	log.InfoContext(ctx, "pipeline finished", slog.String("pipeline", p.Name))

	return nil
}

func (e *Engine) scheduler(p *pipeline.Pipeline) string {
	if p.Options.Scheduler != "" {
		return p.Options.Scheduler
	}

	if e.Config.Scheduler != "" {
		return e.Config.Scheduler
	}

	return "local"
}

// dirs returns the absolute output and work directories of p.
func (e *Engine) dirs(p *pipeline.Pipeline) (outdir, workdir string, err error) {
	outdir = firstOf(p.Outdir, e.Config.Outdir, "./"+p.Name+"-output")
	workdir = firstOf(p.Workdir, e.Config.Workdir, "./.prun")

	if outdir, err = filepath.Abs(outdir); err != nil {
		return "", "", err
	}

	if workdir, err = filepath.Abs(workdir); err != nil {
		return "", "", err
	}

	return outdir, workdir, nil
}

// settings resolves the run knobs of proc: the process's own value first,
// then the pipeline option, then the host configuration.
func (e *Engine) settings(p *pipeline.Pipeline, proc *pipeline.Process) (settings, error) {
	o := p.Options
	c := e.Config

	st := settings{
		cache:    pick(proc.Cache, o.Cache, c.Cache),
		dirsig:   pick(proc.Dirsig, o.Dirsig, c.Dirsig),
		retries:  pick(proc.NumRetries, o.NumRetries, c.NumRetries),
		forks:    pick(proc.Forks, o.Forks, c.Forks),
		batch:    pick(proc.SubmissionBatch, o.SubmissionBatch, c.SubmissionBatch),
		strategy: firstOf(proc.ErrorStrategy, o.ErrorStrategy, c.ErrorStrategy, StrategyIgnore),
		plugin:   merge(c.PluginOpts, o.PluginOpts, proc.PluginOpts),
		sched:    merge(c.SchedulerOpts, o.SchedulerOpts, proc.SchedulerOpts),
		shell:    "sh",
	}

	switch st.strategy {
	case StrategyIgnore, StrategyHalt, StrategyRetry:
	default:
		return settings{}, pkg.MakeErrorf("unknown error strategy %q", st.strategy)
	}

	if sh, ok := st.sched["shell"].(string); ok && sh != "" {
		st.shell = sh
	}

	st.forks = max(st.forks, 1)
	st.batch = max(st.batch, 1)
	st.retries = max(st.retries, 0)

	return st, nil
}

type settings struct {
	cache, dirsig  bool
	retries, forks int
	batch          int
	strategy       string
	shell          string
	plugin, sched  map[string]any
}

func pick[T any](proc, pipe *T, def T) T {
	switch {
	case proc != nil:
		return *proc
	case pipe != nil:
		return *pipe
	default:
		return def
	}
}

// firstOf returns the first non-empty string.
func firstOf(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}

	return ""
}

func merge(maps ...map[string]any) map[string]any {
	out := map[string]any{}

	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}

	return out
}

// inputTable returns the input data of proc. Start processes read their own
// table; others read the outputs of their requirements, bound column-wise
// in declaration order.
func inputTable(
	p *pipeline.Pipeline, proc *pipeline.Process,
	results map[*pipeline.Process][][]string,
) (pipeline.Table, error) {
	keys := proc.InputKeys()

	cols := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = k.Name
	}

	if p.IsStart(proc) || len(proc.Requires) == 0 {
		if proc.InputData.Empty() && len(keys) > 0 {
			return pipeline.Table{}, ErrNoInput.Wrapf("process %s", proc.Name)
		}

		values := make([][]string, len(keys))

		for i, k := range keys {
			col, ok := proc.InputData.Column(k.Name)
			if !ok {
				return pipeline.Table{}, pkg.MakeErrorf("no data for input %q", k.Name)
			}

			values[i] = col
		}

		return pipeline.MakeTable(cols, values)
	}

	var rows [][]string

	for n, req := range proc.Requires {
		out := results[req]

		if n == 0 {
			rows = make([][]string, len(out))
		} else if len(out) != len(rows) {
			return pipeline.Table{}, pkg.MakeErrorf(
				"requirements produced %d and %d jobs", len(rows), len(out),
			)
		}

		for i := range rows {
			rows[i] = append(rows[i], out[i]...)
		}
	}

	for i, row := range rows {
		if len(row) < len(cols) {
			return pipeline.Table{}, pkg.MakeErrorf(
				"job %d: %d inputs declared, %d values received", i, len(cols), len(row),
			)
		}

		rows[i] = row[:len(cols)]
	}

	return pipeline.Table{Columns: cols, Rows: rows}, nil
}
