package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/prun/cli/cmd"
	"github.com/ardnew/prun/pkg"
	"github.com/ardnew/prun/router"
)

// CLI is the top-level command-line interface for prun.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Config    string   `default:"${config}"    help:"Configuration file."                                name:"config"     type:"path"`
	PluginDir []string `default:"${pluginDir}" help:"Directory of namespace manifests (repeatable)." name:"plugin-dir" sep:"none" type:"path"`

	Init cmd.Init `cmd:"" help:"Initialize configuration file"`
	List cmd.List `cmd:"" help:"List installed namespaces."`
	Run  cmd.Run  `cmd:"" help:"Run a process or pipeline from a namespace." passthrough:""`
}

// Run executes the prun CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion:
// by kong for its own help and usage errors, and with the status of a run
// that ended in help, a listing or a usage error.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := scanConfig(args, pkg.ConfigPath(baseConfig))

	vars := kong.Vars{
		cmd.ConfigIdentifier:    pkg.ConfigPath(baseConfig),
		cmd.CacheIdentifier:     pkg.CacheDir(),
		cmd.PluginDirIdentifier: pkg.PluginDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags take effect before kong reports anything.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, jsonConfig(configFilePath)),
		kong.Configuration(resolve, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithPluginDirs(ctx, cli.PluginDir)
	ctx = cmd.WithConfigFile(ctx, cli.Config)

	err = execute(ctx, ktx, &cli)

	var status *router.ExitError
	if errors.As(err, &status) {
		exit(status.Code)

		return nil
	}

	return err
}

// execute runs the selected command with logging and profiling configured.
func execute(ctx context.Context, ktx *kong.Context, cli *CLI) error {
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, cli)
}

// scanConfig returns the value of a --config flag in args, or def. Scanning
// stops at the run command, whose arguments belong to the router.
func scanConfig(args []string, def string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || arg == pkg.RunCommand {
			break
		}

		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}

		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}

	return def
}

// jsonConfig returns the path of the JSON variant of a configuration file.
func jsonConfig(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}
