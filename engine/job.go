package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/prun/log"
	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

const (
	signatureFile = "job.signature"
	stdoutFile    = "job.stdout"
	stderrFile    = "job.stderr"
)

// HookedEnv names the environment variable that carries the pipeline's
// hooked arguments to job scripts, space separated.
var HookedEnv = strings.ToUpper(pkg.Name) + "_HOOKED"

// procRun runs the jobs of one process.
type procRun struct {
	proc    *pipeline.Process
	set     settings
	data    pipeline.Table
	workdir string
	// outdir is the export directory; empty when outputs stay in the job
	// directories.
	outdir string
	hooked []string
}

type job struct {
	index  int
	dir    string
	outdir string
	types  map[string]string
	in     map[string]string
	out    map[string]string
	data   map[string]any
}

func (r *procRun) run(ctx context.Context) ([][]string, error) {
	outs, err := parseOutputs(r.proc.Output)
	if err != nil {
		return nil, err
	}

	script, err := newTemplate(r.proc.Name, r.proc.Script)
	if err != nil {
		return nil, err
	}

	n := r.data.Len()

	log.InfoContext(ctx, "running process",
		slog.String("process", r.proc.Name),
		slog.Int("jobs", n),
		slog.Int("forks", r.set.forks),
		slog.String("error_strategy", r.set.strategy),
	)

	if len(r.set.plugin) > 0 {
		log.DebugContext(ctx, "plugin options",
			slog.String("process", r.proc.Name),
			slog.Any("plugin_opts", r.set.plugin),
		)
	}

	jobs := make([]*job, n)
	results := make([][]string, n)

	for i := range n {
		j, err := r.prepare(i, n, outs)
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}

		jobs[i] = j
		results[i] = make([]string, len(outs))

		for k, o := range outs {
			results[i][k] = j.out[o.key]
		}
	}

	for lo := 0; lo < n; lo += r.set.batch {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.set.forks)

		for _, j := range jobs[lo:min(lo+r.set.batch, n)] {
			g.Go(func() error { return r.submit(gctx, j, script, outs) })
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// prepare resolves the directories, inputs and outputs of job i of n.
func (r *procRun) prepare(i, n int, outs []output) (*job, error) {
	j := &job{
		index: i,
		dir:   filepath.Join(r.workdir, strconv.Itoa(i)),
		types: map[string]string{},
		in:    map[string]string{},
		out:   map[string]string{},
	}

	switch {
	case r.outdir == "":
		j.outdir = filepath.Join(j.dir, "output")
	case n > 1:
		j.outdir = filepath.Join(r.outdir, strconv.Itoa(i))
	default:
		j.outdir = r.outdir
	}

	row := r.data.Row(i)

	for _, k := range r.proc.InputKeys() {
		v := row[k.Name]

		if isPath(k.Type) && v != "" && !filepath.IsAbs(v) {
			abs, err := filepath.Abs(v)
			if err != nil {
				return nil, err
			}

			v = abs
		}

		j.in[k.Name] = v
		j.types[k.Name] = k.Type
	}

	envs := r.proc.Envs
	if envs == nil {
		envs = map[string]any{}
	}

	j.data = map[string]any{
		"in":   j.in,
		"envs": envs,
		"job": map[string]any{
			"index":  i,
			"dir":    j.dir,
			"outdir": j.outdir,
		},
	}

	for _, o := range outs {
		v, err := render(o.tmpl, j.data)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", o.key, err)
		}

		if o.kind != KindVar && !filepath.IsAbs(v) {
			v = filepath.Join(j.outdir, v)
		}

		j.out[o.key] = v
	}

	j.data["out"] = j.out

	return j, nil
}

// submit runs j under the process's error strategy.
func (r *procRun) submit(ctx context.Context, j *job, script *template.Template, outs []output) error {
	attempts := 1
	if r.set.strategy == StrategyRetry {
		attempts += r.set.retries
	}

	var err error

	for a := range attempts {
		if err = r.exec(ctx, j, script, outs); err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return err
		}

		log.WarnContext(ctx, "job failed",
			slog.String("process", r.proc.Name),
			slog.Int("job", j.index),
			slog.Int("attempt", a+1),
			slog.String("error", err.Error()),
		)
	}

	if r.set.strategy == StrategyIgnore {
		log.WarnContext(ctx, "ignoring failed job",
			slog.String("process", r.proc.Name),
			slog.Int("job", j.index),
		)

		return nil
	}

	return fmt.Errorf("job %d: %w", j.index, err)
}

func (r *procRun) exec(ctx context.Context, j *job, script *template.Template, outs []output) error {
	for _, dir := range []string{j.dir, j.outdir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	for _, o := range outs {
		if o.kind == KindDir {
			if err := os.MkdirAll(j.out[o.key], 0o755); err != nil {
				return err
			}
		}
	}

	text, err := render(script, j.data)
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}

	sig := r.signature(text, j)
	sigPath := filepath.Join(j.dir, signatureFile)

	if r.set.cache && cached(sigPath, sig, j, outs) {
		log.DebugContext(ctx, "job cached",
			slog.String("process", r.proc.Name),
			slog.Int("job", j.index),
		)

		return nil
	}

	_ = os.Remove(sigPath)

	stdout, err := os.Create(filepath.Join(j.dir, stdoutFile))
	if err != nil {
		return err
	}
	defer stdout.Close()

	stderr, err := os.Create(filepath.Join(j.dir, stderrFile))
	if err != nil {
		return err
	}
	defer stderr.Close()

	cmd := exec.CommandContext(ctx, r.set.shell, "-c", text)
	cmd.Dir = j.dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(),
		strings.ToUpper(pkg.Name)+"_JOB_INDEX="+strconv.Itoa(j.index),
		HookedEnv+"="+strings.Join(r.hooked, " "),
	)

	log.DebugContext(ctx, "submitting job",
		slog.String("process", r.proc.Name),
		slog.Int("job", j.index),
		slog.String("dir", j.dir),
	)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w (see %s)", err, filepath.Join(j.dir, stderrFile))
	}

	for _, o := range outs {
		if o.kind == KindVar {
			continue
		}

		if _, err := os.Stat(j.out[o.key]); err != nil {
			return fmt.Errorf("output %s not generated: %s", o.key, j.out[o.key])
		}
	}

	return os.WriteFile(sigPath, []byte(sig), 0o644)
}

// signature digests everything a job's result depends on: its script, its
// inputs (with modification times of path inputs) and its outputs.
func (r *procRun) signature(script string, j *job) string {
	h := sha256.New()

	fmt.Fprintf(h, "script\x00%s\x00", script)

	for _, k := range r.proc.InputKeys() {
		v := j.in[k.Name]
		fmt.Fprintf(h, "in\x00%s\x00%s\x00", k.Name, v)

		if isPath(j.types[k.Name]) {
			fmt.Fprintf(h, "%d\x00", mtime(v, r.set.dirsig).UnixNano())
		}
	}

	for _, k := range sortedKeys(j.out) {
		fmt.Fprintf(h, "out\x00%s\x00%s\x00", k, j.out[k])
	}

	return hex.EncodeToString(h.Sum(nil))
}

func cached(path, sig string, j *job, outs []output) bool {
	b, err := os.ReadFile(path)
	if err != nil || string(b) != sig {
		return false
	}

	for _, o := range outs {
		if o.kind == KindVar {
			continue
		}

		if _, err := os.Stat(j.out[o.key]); err != nil {
			return false
		}
	}

	return true
}

func isPath(typ string) bool {
	switch typ {
	case "file", "files", "dir", "dirs", "path":
		return true
	}

	return false
}

// mtime returns the modification time of path. With deep set, a directory's
// time is the latest of everything beneath it.
func mtime(path string, deep bool) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}

	latest := fi.ModTime()

	if !fi.IsDir() || !deep {
		return latest
	}

	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if info, err := d.Info(); err == nil && info.ModTime().After(latest) {
			latest = info.ModTime()
		}

		return nil
	})

	return latest
}
