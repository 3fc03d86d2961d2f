package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/prun/log"
)

// defaultsKey is the top-level configuration key holding engine defaults.
// It is read by the run command, not resolved into flags.
const defaultsKey = "defaults"

// resolve is a [kong.ConfigurationLoader] that reads YAML configuration
// files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// Top-level keys name flags, with hyphens or underscores:
//
//	log_level: debug
//	log-pretty: false
//	plugin_dir: [/opt/prun/namespaces, ~/namespaces]
//	defaults:
//	  forks: 4
//
// Command-line flags override config file values. A file that fails to
// decode is logged and ignored.
func resolve(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	err := yaml.NewDecoder(r).Decode(&doc)
	if errors.Is(err, io.EOF) {
		return config{}, nil
	}

	if err != nil {
		log.Warn("ignoring configuration file", slog.String("error", err.Error()))

		return config{}, nil
	}

	cfg := make(config, len(doc))

	for key, val := range doc {
		if key == defaultsKey {
			continue
		}

		cfg[key] = flagValue(val)
	}

	return cfg, nil
}

// config implements [kong.Resolver] over a decoded configuration file.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flagValue converts a decoded YAML value to the form kong's mappers accept,
// the same shapes its JSON loader produces with numbers as strings.
func flagValue(v any) any {
	switch v := v.(type) {
	case bool, string:
		return v
	case []any:
		list := make([]any, len(v))
		for i, e := range v {
			list[i] = flagValue(e)
		}

		return list
	default:
		return fmt.Sprint(v)
	}
}
