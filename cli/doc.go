// Package cli contains the command line interface for prun.
//
// # Usage
//
//	prun [flags] run [<namespace> [<process|group> [options...]]]
//	prun [flags] list
//	prun [flags] init [--force]
//
// Every argument after "run" goes to the router unparsed, including help
// flags, so that "prun run ns proc --help" shows the options of proc.
//
// # Configuration
//
// Flags may also be set in a YAML file (default: <config dir>/prun/config.yaml,
// or the path given with --config). Top-level keys name flags; the
// "defaults" key holds the execution engine defaults used when neither a
// process nor the pipeline sets a runtime option:
//
//	log_level: debug
//	plugin_dir: [/opt/prun/namespaces]
//	defaults:
//	  forks: 4
//	  error_strategy: retry
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o prun .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: <cache dir>/prun/pprof)
package cli
