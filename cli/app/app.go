package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/ticketsim/cli/chain"
	"github.com/nspcc-dev/ticketsim/cli/console"
	"github.com/nspcc-dev/ticketsim/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "ticketsim\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a ticketsim instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "ticketsim"
	ctl.Version = config.Version
	ctl.Usage = "Simulated chain for the tickets-nft contract"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, chain.NewCommands()...)
	ctl.Commands = append(ctl.Commands, console.NewCommands()...)
	return ctl
}
