// Command wallet is the terminal client of the personal ledger service.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var (
	style    = flag.String("style", "", "Markdown style (dark, light, notty). Defaults to the terminal's.")
	wordWrap = flag.Int("wrap", 100, "Word wrap width for rendered output.")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&listCmd{}, "ledger")
	commander.Register(&reportCmd{}, "ledger")
	commander.Register(&summaryCmd{}, "ledger")
	commander.Register(&addCmd{}, "ledger")
	commander.Register(&rmCmd{}, "ledger")
	commander.Register(&categoriesCmd{}, "ledger")
	commander.Register(&exportCmd{}, "sheets")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
