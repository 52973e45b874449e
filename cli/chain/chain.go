package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/ticketsim/cli/options"
	"github.com/nspcc-dev/ticketsim/pkg/core"
	"github.com/nspcc-dev/ticketsim/pkg/core/storage"
	"github.com/nspcc-dev/ticketsim/pkg/scenario"
	"github.com/nspcc-dev/ticketsim/pkg/services/metrics"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// ErrScenarioFailed is returned by the run command when some of the scenario
// expectations are not met.
var ErrScenarioFailed = errors.New("scenario expectations failed")

// NewCommands returns chain-related commands.
func NewCommands() []cli.Command {
	runFlags := append([]cli.Flag{
		cli.StringFlag{
			Name:  "scenario, s",
			Usage: "path to the YAML scenario file",
		},
	}, options.Chain...)
	return []cli.Command{
		{
			Name:      "accounts",
			Usage:     "List genesis accounts with their STX balances",
			UsageText: "ticketsim accounts [--config-file file]",
			Action:    listAccounts,
			Flags:     options.Chain,
		},
		{
			Name:      "run",
			Usage:     "Run a scenario and print its JSON report",
			UsageText: "ticketsim run --scenario file [--config-file file] [--debug]",
			Action:    runScenario,
			Flags:     runFlags,
		},
	}
}

// Closer releases resources acquired by InitChain.
type Closer func()

// InitChain creates a chain using the configuration from the context. The
// Prometheus service is started if it's enabled.
func InitChain(ctx *cli.Context) (*core.Blockchain, *zap.Logger, Closer, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	store, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, cli.NewExitError(fmt.Errorf("could not initialize storage: %w", err), 1)
	}
	bc, err := core.NewBlockchain(store, cfg, log)
	if err != nil {
		_ = store.Close()
		_ = log.Sync()
		return nil, nil, nil, cli.NewExitError(fmt.Errorf("could not initialize blockchain: %w", err), 1)
	}
	prometheus := metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log)
	if err := prometheus.Start(); err != nil {
		_ = bc.Close()
		_ = log.Sync()
		return nil, nil, nil, cli.NewExitError(fmt.Errorf("failed to start Prometheus service: %w", err), 1)
	}
	return bc, log, func() {
		prometheus.ShutDown()
		if err := bc.Close(); err != nil {
			log.Error("failed to close blockchain", zap.Error(err))
		}
		_ = log.Sync()
	}, nil
}

func listAccounts(ctx *cli.Context) error {
	bc, _, closer, err := InitChain(ctx)
	if err != nil {
		return err
	}
	defer closer()

	w := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tSTX")
	for _, acc := range bc.Accounts() {
		balance, err := bc.GetSTXBalance(acc.ScriptHash)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", acc.Name, address.Uint160ToString(acc.ScriptHash), balance.ToBig())
	}
	for _, c := range bc.Contracts() {
		balance, err := bc.GetSTXBalance(c.Hash)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", c.Name, address.Uint160ToString(c.Hash), balance.ToBig())
	}
	return w.Flush()
}

func runScenario(ctx *cli.Context) error {
	path := ctx.String("scenario")
	if path == "" {
		return cli.NewExitError("no scenario file specified, use --scenario", 1)
	}
	sc, err := scenario.LoadFile(path)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	bc, log, closer, err := InitChain(ctx)
	if err != nil {
		return err
	}
	defer closer()

	rep, err := scenario.Run(bc, sc, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(data))
	if !rep.Passed() {
		return cli.NewExitError(ErrScenarioFailed, 1)
	}
	return nil
}
