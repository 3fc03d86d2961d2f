package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/prun/entry"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	pluginDirsKey struct{}
	configFileKey struct{}
	registryKey   struct{}
)

// WithPluginDirs returns a new context.Context containing the directories
// scanned for namespace manifests.
func WithPluginDirs(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, pluginDirsKey{}, dirs)
}

func pluginDirsFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(pluginDirsKey{}).([]string)

	return dirs
}

// WithConfigFile returns a new context.Context containing the path of the
// configuration file whose defaults section configures the engine.
func WithConfigFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, configFileKey{}, path)
}

func configFileFrom(ctx context.Context) string {
	path, _ := ctx.Value(configFileKey{}).(string)

	return path
}

// WithRegistry returns a new context.Context containing the namespace
// registry commands operate on. Commands use [entry.Default] without it.
func WithRegistry(ctx context.Context, reg *entry.Registry) context.Context {
	return context.WithValue(ctx, registryKey{}, reg)
}

func registryFrom(ctx context.Context) *entry.Registry {
	if reg, ok := ctx.Value(registryKey{}).(*entry.Registry); ok && reg != nil {
		return reg
	}

	return entry.Default
}

// writers returns the output streams of the kong context in ctx, or the
// process's standard streams.
func writers(ctx context.Context) (stdout, stderr io.Writer) {
	stdout, stderr = os.Stdout, os.Stderr

	if ktx := kongContextFrom(ctx); ktx != nil {
		if ktx.Stdout != nil {
			stdout = ktx.Stdout
		}

		if ktx.Stderr != nil {
			stderr = ktx.Stderr
		}
	}

	return stdout, stderr
}
