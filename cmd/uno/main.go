package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"uno.hcl" help:"Path to the HCL config file"`
	Seed     int64  `help:"Shuffle seed, overrides the config (0 keeps it)"`
	LogLevel string `help:"Log level, overrides the config (debug, info, warn, error)"`
	NoColor  bool   `help:"Disable colour output"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play a match against the computer"`
	Autoplay AutoplayCmd      `cmd:"" help:"Let the computer play both sides and print the result"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("uno"),
		kong.Description("Two player UNO against a computer opponent, in the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
