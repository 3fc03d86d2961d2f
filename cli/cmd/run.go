package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/prun/engine"
	"github.com/ardnew/prun/entry"
	"github.com/ardnew/prun/log"
	"github.com/ardnew/prun/router"
)

// Run routes its arguments to a namespace target and runs the resulting
// pipeline.
type Run struct {
	Args []string `arg:"" help:"Namespace, process or group, and their options." optional:""`
}

// Run implements the run command. Help, listings and usage errors surface
// as *[router.ExitError].
func (r *Run) Run(ctx context.Context) error {
	reg, err := registry(ctx)
	if err != nil {
		return err
	}

	cfg, err := engine.LoadConfig(configFileFrom(ctx))
	if err != nil {
		return ErrLoadConfig.Wrap(err).With(slog.String("path", configFileFrom(ctx)))
	}

	rt := router.New(reg, engine.New(cfg))
	rt.Stdout, rt.Stderr = writers(ctx)

	err = rt.Route(ctx, r.Args)

	var exit *router.ExitError
	if err == nil || errors.As(err, &exit) {
		return err
	}

	return ErrRun.Wrap(err).With(slog.Any("args", r.Args))
}

// List writes the installed namespaces.
type List struct{}

// Run implements the list command.
func (l *List) Run(ctx context.Context) error {
	reg, err := registry(ctx)
	if err != nil {
		return err
	}

	stdout, _ := writers(ctx)

	router.New(reg, nil).ListNamespaces(stdout)

	return nil
}

// registry returns the namespace registry with the manifests of the plugin
// directories registered.
func registry(ctx context.Context) (*entry.Registry, error) {
	reg := registryFrom(ctx)
	dirs := pluginDirsFrom(ctx)

	found, err := entry.Discover(reg, dirs...)
	if err != nil {
		return nil, ErrDiscover.Wrap(err).With(slog.Any("dirs", dirs))
	}

	log.DebugContext(ctx, "namespaces discovered",
		slog.Any("dirs", dirs),
		slog.Any("manifests", found),
	)

	return reg, nil
}
