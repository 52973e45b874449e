package console

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/ticketsim/pkg/core"
	"github.com/nspcc-dev/ticketsim/pkg/core/transaction"
	"github.com/nspcc-dev/ticketsim/pkg/simtest"
	"github.com/stretchr/testify/require"
)

type readCloser struct {
	sync.Mutex
	bytes.Buffer
}

func (r *readCloser) Close() error {
	return nil
}

func (r *readCloser) Read(p []byte) (int, error) {
	r.Lock()
	defer r.Unlock()
	return r.Buffer.Read(p)
}

func (r *readCloser) WriteString(s string) {
	r.Lock()
	defer r.Unlock()
	r.Buffer.WriteString(s)
}

type executor struct {
	in   *readCloser
	out  *bytes.Buffer
	cli  *Console
	bc   *core.Blockchain
	exit bool
	ch   chan struct{}
}

func newTestConsole(t *testing.T) *executor {
	e := &executor{
		in:  &readCloser{Buffer: *bytes.NewBuffer(nil)},
		out: bytes.NewBuffer(nil),
		bc:  simtest.NewChain(t),
		ch:  make(chan struct{}),
	}
	var err error
	e.cli, err = New(e.bc, func(int) { e.exit = true }, &readline.Config{
		Prompt:         "",
		Stdin:          e.in,
		Stderr:         e.out,
		Stdout:         e.out,
		FuncIsTerminal: func() bool { return false },
	})
	require.NoError(t, err)
	return e
}

func (e *executor) runProg(t *testing.T, commands ...string) string {
	e.in.WriteString(strings.Join(commands, "\n") + "\n")
	go func() {
		require.NoError(t, e.cli.Run())
		close(e.ch)
	}()
	select {
	case <-e.ch:
	case <-time.After(4 * time.Second):
		require.Fail(t, "program didn't finish")
	}
	return e.out.String()
}

func TestConsole(t *testing.T) {
	e := newTestConsole(t)
	w1, err := e.bc.GetAccount("wallet_1")
	require.NoError(t, err)

	// The first nonce of a fresh chain is 1.
	claim := transaction.NewContractCall("tickets-nft", "claim", nil, w1)
	claim.Nonce = 1

	out := e.runProg(t,
		"height",
		"call wallet_1 tickets-nft claim",
		"balance tickets-nft",
		"readonly wallet_1 tickets-nft get-owner u1",
		"advance 10",
		"call wallet_1 tickets-nft claim",
		"transfer wallet_1 wallet_2 u5",
		"mine 2",
		"accounts",
		"receipt "+claim.Hash().StringLE(),
		"exit",
		"height",
	)
	require.True(t, e.exit)
	require.EqualValues(t, 14, e.bc.BlockHeight())

	require.Contains(t, out, `"result": "(ok true)"`)
	require.Contains(t, out, `"nft_mint_event"`)
	require.Contains(t, out, "u100\n")
	require.Contains(t, out, "(ok '"+address.Uint160ToString(w1)+")")
	require.Contains(t, out, "height: 10\n")
	require.Contains(t, out, `"result": "(err u102)"`)
	require.Contains(t, out, "height: 14\n")
	require.Contains(t, out, "wallet_8")
	require.Contains(t, out, `"block": 1,`)
	require.True(t, strings.HasSuffix(out, "Bye!\n"))
}

func TestConsoleErrors(t *testing.T) {
	e := newTestConsole(t)

	out := e.runProg(t,
		"call",
		"call nobody tickets-nft claim",
		"call wallet_1 nope claim",
		"call wallet_1 tickets-nft nope",
		"call wallet_1 tickets-nft transfer x wallet_1 wallet_2",
		"readonly wallet_1 tickets-nft claim",
		"transfer wallet_1 wallet_2",
		"transfer wallet_1 wallet_2 lots",
		"mine x",
		"mine 4294967295",
		"advance",
		"advance 4294967295",
		"balance",
		"receipt zz",
		"receipt "+strings.Repeat("00", 32),
		`call "unterminated`,
		"unknown",
	)
	require.False(t, e.exit)
	require.EqualValues(t, 0, e.bc.BlockHeight())
	require.Contains(t, out, "Error: missing argument: <sender> <contract> <method>")
	require.Contains(t, out, "Error: can't parse argument")
	require.Contains(t, out, "unknown contract")
	require.Contains(t, out, "unknown method")
	require.Contains(t, out, "method is not read-only")
	require.Contains(t, out, "Error: missing argument: <sender> <recipient> <amount>")
	require.Contains(t, out, "Error: missing argument: <height>")
	require.Contains(t, out, "Error: too many blocks to mine: 4294967295 > 10000")
	require.Contains(t, out, "Error: missing argument: <principal>")
	require.Contains(t, out, "key not found")
	require.Contains(t, out, "failed to parse arguments")
}
