// Package router turns the arguments of the run command into a bound
// pipeline and hands it to a [Runner].
//
// Routing moves through namespace selection, target selection, parsing and
// binding; a help flag or a missing or unknown token ends it early with a
// listing or help text and an [*ExitError].
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/ardnew/prun/bind"
	"github.com/ardnew/prun/entry"
	"github.com/ardnew/prun/log"
	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
	"github.com/ardnew/prun/schema"
)

// Runner executes a bound pipeline.
type Runner interface {
	Run(ctx context.Context, p *pipeline.Pipeline) error
}

// RunnerFunc adapts a function to [Runner].
type RunnerFunc func(ctx context.Context, p *pipeline.Pipeline) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, p *pipeline.Pipeline) error { return f(ctx, p) }

// Router routes run arguments.
type Router struct {
	Registry  *entry.Registry
	Instances *pipeline.Instances
	Runner    Runner
	Stdout    io.Writer
	Stderr    io.Writer
}

// New returns a router over reg that runs pipelines with run and writes to
// the process's standard streams.
func New(reg *entry.Registry, run Runner) *Router {
	return &Router{
		Registry:  reg,
		Instances: pipeline.NewInstances(),
		Runner:    run,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Route runs the command described by args: the namespace, the target and
// the target's arguments.
//
// Help and listings are written to Stdout and yield an *[ExitError] with
// [ExitHelp]; usage errors are written to Stderr and yield [ExitUsage].
// Other errors, including pipeline definition errors and run failures, are
// returned as they are.
func (r *Router) Route(ctx context.Context, args []string) error {
	hooked := HookedArgs(args)
	args = SkipHookedArgs(args)

	if len(args) == 0 || isHelp(args[0]) {
		r.ListNamespaces(r.Stdout)

		return &ExitError{Code: ExitHelp}
	}

	ns := args[0]

	if !r.Registry.Has(ns) {
		invalidChoice(r.Stderr, pkg.Prog(), "namespace", ns, r.Registry.Names())

		return &ExitError{Code: ExitUsage}
	}

	mod, err := r.Registry.Resolve(ns)
	if err != nil {
		return err
	}

	log.Debug("namespace selected", slog.String("namespace", ns))

	if len(args) == 1 || isHelp(args[1]) {
		listMembers(r.Stdout, ns, mod)

		return &ExitError{Code: ExitHelp}
	}

	name := args[1]

	mb, ok := mod.Lookup(name)
	if !ok {
		var valid []string
		for _, m := range mod.Runnable() {
			valid = append(valid, m.Name)
		}

		invalidChoice(r.Stderr, pkg.Prog(ns), "target", name, valid)
		listMembers(r.Stderr, ns, mod)

		return &ExitError{Code: ExitUsage}
	}

	log.Debug("target selected",
		slog.String("namespace", ns),
		slog.String("target", name),
		slog.String("kind", mb.Kind()))

	return r.target(ctx, ns, mb, args[2:], hooked)
}

func (r *Router) target(
	ctx context.Context,
	ns string,
	mb pipeline.Member,
	args, hooked []string,
) error {
	var target pipeline.Runnable = mb.Process

	if mb.Group != nil {
		pre, err := schema.ForGroup(ns, mb.Name, mb.Group).ParseKnown(args)
		if err != nil {
			return r.usageError(schema.ForGroup(ns, mb.Name, mb.Group), err)
		}

		g, err := r.Instances.Get(mb.Group, pre.Map(mb.Group.Name))
		if err != nil {
			return err
		}

		target = g
	}

	s, err := schema.Synthesize(ns, mb.Name, target, wantsFullOpts(args))
	if err != nil {
		return err
	}

	v, err := s.Parse(args)
	if err == nil && v.FullOpts && !s.FullOpts {
		if s, err = schema.Synthesize(ns, mb.Name, target, true); err != nil {
			return err
		}

		v, err = s.Parse(args)
	}

	var help *schema.HelpError

	switch {
	case errors.As(err, &help):
		s.Help(r.Stdout, help.Full)

		return &ExitError{Code: ExitHelp}

	case err != nil:
		return r.usageError(s, err)
	}

	v.Hooked = hooked

	if err := bind.Bind(v); err != nil {
		return err
	}

	log.InfoContext(ctx, "running pipeline",
		slog.String("namespace", ns),
		slog.String("target", mb.Name),
		slog.String("pipeline", v.Target.Name))

	return r.Runner.Run(ctx, v.Target)
}

func (r *Router) usageError(s *schema.Schema, err error) error {
	var perr *schema.ParseError
	if !errors.As(err, &perr) {
		return err
	}

	s.Usage(r.Stderr)
	fmt.Fprintf(r.Stderr, "%s: error: %s\n", s.Prog, perr.Err)

	return &ExitError{Code: ExitUsage}
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "--help+"
}

// wantsFullOpts reports whether args reveal hidden fields before "--".
func wantsFullOpts(args []string) bool {
	if i := slices.Index(args, "--"); i >= 0 {
		args = args[:i]
	}

	return slices.Contains(args, "--"+schema.FullOptsFlag) ||
		slices.Contains(args, "--help+")
}
