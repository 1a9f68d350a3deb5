package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Server      ServerCmd        `cmd:"" help:"Run the game server"`
	Client      ClientCmd        `cmd:"" help:"Play from the terminal"`
	VersionInfo VersionCmd       `cmd:"" name:"version" help:"Print the version"`
}

// VersionCmd prints the build version.
type VersionCmd struct{}

func (VersionCmd) Run(k *kong.Context) error {
	_, err := fmt.Fprintln(k.Stdout, version)
	return err
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("withoutx"),
		kong.Description("Server and terminal client for the Without X trick-taking card game"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	// Client subcommands take the group's flags.
	err = ctx.Run(&cli.Client.GlobalFlags)
	ctx.FatalIfErrorf(err)
}
