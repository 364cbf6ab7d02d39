package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/neutral/cli/cmd"
	"github.com/ardnew/neutral/pkg"
)

// CLI is the top-level command-line interface for neutral.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Render cmd.Render `cmd:"" default:"withargs" help:"Render a template (default command)."`
	Blocks cmd.Blocks `cmd:""                    help:"List the blocks of a template."`
	Schema cmd.Schema `cmd:""                    help:"Print the merged schema."`
	Repl   cmd.Repl   `cmd:""                    help:"Render templates interactively."`
	Init   cmd.Init   `cmd:""                    help:"Write a configuration file from the current flags."`
}

// Run executes the neutral CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cachePath(),
		"version":            versionString(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before parsing so it applies to parse errors
	// wherever the flags appear.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Prefix()),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(append(cli.Log.groups(), cli.Pprof.groups()...)),
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
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath+".yaml", configFilePath+".yml"),
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

	cli.Log.start(ctx)

	// No-op unless built with the pprof tag and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}

// versionString returns the name, version and maintainers printed by
// --version.
func versionString() string {
	authors := make([]string, len(pkg.Author))
	for i, a := range pkg.Author {
		authors[i] = a.Name + " <" + a.Email + ">"
	}

	return pkg.Name + " " + pkg.Version() + " (" + strings.Join(authors, ", ") + ")"
}
