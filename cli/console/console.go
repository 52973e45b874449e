package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/chzyer/readline"
	"github.com/holiman/uint256"
	"github.com/kballard/go-shellquote"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/ticketsim/cli/chain"
	"github.com/nspcc-dev/ticketsim/cli/options"
	"github.com/nspcc-dev/ticketsim/pkg/config"
	"github.com/nspcc-dev/ticketsim/pkg/core"
	"github.com/nspcc-dev/ticketsim/pkg/core/interop"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
	"github.com/nspcc-dev/ticketsim/pkg/core/transaction"
	"github.com/urfave/cli"
)

const (
	chainKey            = "chain"
	exitFuncKey         = "exitFunc"
	readlineInstanceKey = "readlineKey"
)

var commands = []cli.Command{
	{
		Name:        "exit",
		Usage:       "Exit the console",
		Description: "Exit the console",
		Action:      handleExit,
	},
	{
		Name:      "call",
		Usage:     "Mine a block with a single contract call",
		UsageText: `call <sender> <contract> <method> [<arg>...]`,
		Description: `call <sender> <contract> <method> [<arg>...]
<sender> is an account name or address, arguments are parsed according to
the method parameters (u1, true, wallet_2, 'ST... or "string"), example:
> call wallet_1 tickets-nft claim
> call wallet_1 tickets-nft transfer u1 wallet_1 wallet_2`,
		Action: handleCall,
	},
	{
		Name:      "readonly",
		Usage:     "Call a read-only contract method",
		UsageText: `readonly <sender> <contract> <method> [<arg>...]`,
		Description: `readonly <sender> <contract> <method> [<arg>...]
example:
> readonly wallet_1 tickets-nft get-owner u1`,
		Action: handleReadOnly,
	},
	{
		Name:      "transfer",
		Usage:     "Mine a block with a single STX transfer",
		UsageText: `transfer <sender> <recipient> <amount>`,
		Description: `transfer <sender> <recipient> <amount>
example:
> transfer wallet_1 wallet_2 u100`,
		Action: handleTransfer,
	},
	{
		Name:      "mine",
		Usage:     "Mine empty blocks",
		UsageText: `mine [<n>]`,
		Description: `mine [<n>]
<n> is the number of blocks to mine (up to 10000), 1 by default, example:
> mine 5`,
		Action: handleMine,
	},
	{
		Name:      "advance",
		Usage:     "Mine empty blocks until the given height",
		UsageText: `advance <height>`,
		Description: `advance <height>
example:
> advance 10`,
		Action: handleAdvance,
	},
	{
		Name:        "height",
		Usage:       "Show current chain height",
		Description: "Show current chain height",
		Action:      handleHeight,
	},
	{
		Name:      "balance",
		Usage:     "Show STX balance of a principal",
		UsageText: `balance <principal>`,
		Description: `balance <principal>
example:
> balance tickets-nft`,
		Action: handleBalance,
	},
	{
		Name:        "accounts",
		Usage:       "List accounts and contracts",
		Description: "List accounts and contracts",
		Action:      handleAccounts,
	},
	{
		Name:      "receipt",
		Usage:     "Show transaction receipt",
		UsageText: `receipt <txid>`,
		Description: `receipt <txid>
example:
> receipt 0x2b5a...`,
		Action: handleReceipt,
	},
}

var completer *readline.PrefixCompleter

func init() {
	var pcItems []readline.PrefixCompleterInterface
	for _, c := range commands {
		if !c.Hidden {
			pcItems = append(pcItems, readline.PcItem(c.Name))
		}
	}
	completer = readline.NewPrefixCompleter(pcItems...)
}

// MaxBlocksPerCommand is the maximum number of blocks mine and advance can
// produce at once.
const MaxBlocksPerCommand = 10000

// Various errors.
var (
	ErrMissingParameter = errors.New("missing argument")
	ErrInvalidParameter = errors.New("can't parse argument")
	ErrTooManyBlocks    = errors.New("too many blocks to mine")
)

// NewCommands returns the console command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:      "console",
		Usage:     "Start interactive console over the simulated chain",
		UsageText: "ticketsim console [--config-file file] [--debug]",
		Action:    startConsole,
		Flags:     options.Chain,
	}}
}

func startConsole(ctx *cli.Context) error {
	bc, _, closer, err := chain.InitChain(ctx)
	if err != nil {
		return err
	}
	defer closer()

	c, err := New(bc, func(int) {}, &readline.Config{
		Stdout: ctx.App.Writer,
		Stderr: ctx.App.ErrWriter,
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return c.Run()
}

// Console is an interactive shell over the simulated chain.
type Console struct {
	chain *core.Blockchain
	shell *cli.App
	done  bool
}

// New returns a new Console instance for the given chain.
func New(bc *core.Blockchain, onExit func(int), c *readline.Config) (*Console, error) {
	if c.AutoComplete == nil {
		// Autocomplete commands on TAB.
		c.AutoComplete = completer
	}
	l, err := readline.NewEx(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	ctl := cli.NewApp()
	ctl.Name = "ticketsim console"

	// Note: need to set empty `ctl.HelpName` and `ctl.UsageText`, otherwise
	// `filepath.Base(os.Args[0])` will be used.
	ctl.HelpName = ""
	ctl.UsageText = ""

	ctl.Writer = l.Stdout()
	ctl.ErrWriter = l.Stderr()
	ctl.Version = config.Version
	ctl.Usage = "Interactive console for the simulated chain"

	// Override default error handler in order not to exit on error.
	ctl.ExitErrHandler = func(context *cli.Context, err error) {}

	ctl.Commands = commands

	con := &Console{
		chain: bc,
		shell: ctl,
	}
	con.shell.Metadata = map[string]any{
		chainKey: bc,
		exitFuncKey: func(code int) {
			con.done = true
			onExit(code)
		},
		readlineInstanceKey: l,
	}
	changePrompt(con.shell)
	return con, nil
}

func getChainFromContext(app *cli.App) *core.Blockchain {
	return app.Metadata[chainKey].(*core.Blockchain)
}

func getExitFuncFromContext(app *cli.App) func(int) {
	return app.Metadata[exitFuncKey].(func(int))
}

func getReadlineInstanceFromContext(app *cli.App) *readline.Instance {
	return app.Metadata[readlineInstanceKey].(*readline.Instance)
}

// Run waits for user input from Stdin and executes the passed command.
func (c *Console) Run() error {
	l := getReadlineInstanceFromContext(c.shell)
	for !c.done {
		line, err := l.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil // OK, stop execution.
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err) // Critical error, stop execution.
		}

		args, err := shellquote.Split(line)
		if err != nil {
			writeErr(c.shell.ErrWriter, fmt.Errorf("failed to parse arguments: %w", err))
			continue // Not a critical error, continue execution.
		}
		if len(args) == 0 {
			continue
		}

		err = c.shell.Run(append([]string{"console"}, args...))
		if err != nil {
			writeErr(c.shell.ErrWriter, err) // Various command/flags parsing errors and execution errors.
		}
		changePrompt(c.shell)
	}
	return nil
}

func changePrompt(app *cli.App) {
	bc := getChainFromContext(app)
	l := getReadlineInstanceFromContext(app)
	l.SetPrompt(fmt.Sprintf("\033[32mticketsim %d >\033[0m ", bc.BlockHeight()))
}

func handleExit(c *cli.Context) error {
	l := getReadlineInstanceFromContext(c.App)
	_ = l.Close()
	exit := getExitFuncFromContext(c.App)
	fmt.Fprintln(c.App.Writer, "Bye!")
	exit(0)
	return nil
}

func parsePrincipal(bc *core.Blockchain, s string) (util.Uint160, error) {
	u, err := interop.ParsePrincipal(s, bc.ResolvePrincipal)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	return u, nil
}

func parseUint(s string, bits int) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "u"), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	return n, nil
}

func makeContractCall(bc *core.Blockchain, args []string) (util.Uint160, *interop.MethodMD, []string, error) {
	if len(args) < 3 {
		return util.Uint160{}, nil, nil, fmt.Errorf("%w: <sender> <contract> <method>", ErrMissingParameter)
	}
	sender, err := parsePrincipal(bc, args[0])
	if err != nil {
		return util.Uint160{}, nil, nil, err
	}
	ctr, err := bc.GetContract(args[1])
	if err != nil {
		return util.Uint160{}, nil, nil, err
	}
	m, ok := ctr.Metadata().GetMethod(args[2])
	if !ok {
		return util.Uint160{}, nil, nil, fmt.Errorf("%w: %s.%s", core.ErrUnknownMethod, args[1], args[2])
	}
	return sender, m, args[3:], nil
}

func handleCall(c *cli.Context) error {
	bc := getChainFromContext(c.App)
	args := c.Args()
	sender, m, params, err := makeContractCall(bc, args)
	if err != nil {
		return err
	}
	items, err := m.ParseParams(params, bc.ResolvePrincipal)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	tx := transaction.NewContractCall(args[1], m.Name, items, sender)
	return mineTx(c, bc, tx)
}

func handleTransfer(c *cli.Context) error {
	bc := getChainFromContext(c.App)
	args := c.Args()
	if len(args) != 3 {
		return fmt.Errorf("%w: <sender> <recipient> <amount>", ErrMissingParameter)
	}
	sender, err := parsePrincipal(bc, args[0])
	if err != nil {
		return err
	}
	recipient, err := parsePrincipal(bc, args[1])
	if err != nil {
		return err
	}
	amount, err := parseUint(args[2], 64)
	if err != nil {
		return err
	}
	tx := transaction.NewSTXTransfer(uint256.NewInt(amount), recipient, sender)
	return mineTx(c, bc, tx)
}

func mineTx(c *cli.Context, bc *core.Blockchain, tx *transaction.Transaction) error {
	tx.Nonce = bc.NextNonce()
	_, receipts, err := bc.MineBlock(tx)
	if err != nil {
		return err
	}
	return dumpJSON(c.App.Writer, receipts[0])
}

func handleReadOnly(c *cli.Context) error {
	bc := getChainFromContext(c.App)
	args := c.Args()
	sender, m, params, err := makeContractCall(bc, args)
	if err != nil {
		return err
	}
	items, err := m.ParseParams(params, bc.ResolvePrincipal)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	resp, err := bc.CallReadOnly(sender, args[1], m.Name, items...)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, resp)
	return nil
}

func handleMine(c *cli.Context) error {
	bc := getChainFromContext(c.App)
	n := uint64(1)
	if args := c.Args(); len(args) > 0 {
		var err error
		n, err = parseUint(args[0], 32)
		if err != nil {
			return err
		}
	}
	if n > MaxBlocksPerCommand {
		return fmt.Errorf("%w: %d > %d", ErrTooManyBlocks, n, MaxBlocksPerCommand)
	}
	for i := uint64(0); i < n; i++ {
		if _, err := bc.MineEmptyBlock(); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.App.Writer, "height: %d\n", bc.BlockHeight())
	return nil
}

func handleAdvance(c *cli.Context) error {
	bc := getChainFromContext(c.App)
	args := c.Args()
	if len(args) != 1 {
		return fmt.Errorf("%w: <height>", ErrMissingParameter)
	}
	target, err := parseUint(args[0], 32)
	if err != nil {
		return err
	}
	if h := uint64(bc.BlockHeight()); target > h+MaxBlocksPerCommand {
		return fmt.Errorf("%w: %d > %d", ErrTooManyBlocks, target-h, MaxBlocksPerCommand)
	}
	h, err := bc.MineEmptyBlockUntil(uint32(target))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "height: %d\n", h)
	return nil
}

func handleHeight(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, getChainFromContext(c.App).BlockHeight())
	return nil
}

func handleBalance(c *cli.Context) error {
	bc := getChainFromContext(c.App)
	args := c.Args()
	if len(args) != 1 {
		return fmt.Errorf("%w: <principal>", ErrMissingParameter)
	}
	acc, err := parsePrincipal(bc, args[0])
	if err != nil {
		return err
	}
	balance, err := bc.GetSTXBalance(acc)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "u%d\n", balance.ToBig())
	return nil
}

func handleAccounts(c *cli.Context) error {
	bc := getChainFromContext(c.App)
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	for _, acc := range bc.Accounts() {
		fmt.Fprintf(w, "%s\t%s\n", acc.Name, address.Uint160ToString(acc.ScriptHash))
	}
	for _, md := range bc.Contracts() {
		fmt.Fprintf(w, "%s\t%s\n", md.Name, address.Uint160ToString(md.Hash))
	}
	return w.Flush()
}

func handleReceipt(c *cli.Context) error {
	bc := getChainFromContext(c.App)
	args := c.Args()
	if len(args) != 1 {
		return fmt.Errorf("%w: <txid>", ErrMissingParameter)
	}
	h, err := util.Uint256DecodeStringLE(strings.TrimPrefix(args[0], "0x"))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	r, err := bc.GetReceipt(h)
	if err != nil {
		return err
	}
	return dumpJSON(c.App.Writer, r)
}

func dumpJSON(w io.Writer, r *state.Receipt) error {
	b, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func writeErr(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
}
