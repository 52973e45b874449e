package scenario

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/ticketsim/pkg/simtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const ticketsScenario = "../../config/scenarios/tickets.yml"

func TestDecode(t *testing.T) {
	testCases := map[string]string{
		"unknown field": `Steps: [{Mine: 1}]`,
		"empty step":    `Steps: [{}]`,
		"two actions":   `Steps: [{EmptyBlocks: 1, AdvanceTo: 5}]`,
		"no sender":     `Steps: [{Transactions: [{Contract: tickets-nft, Method: claim}]}]`,
		"no method":     `Steps: [{Transactions: [{Sender: wallet_1, Contract: tickets-nft}]}]`,
		"call and transfer": `Steps: [{Transactions: [{Sender: wallet_1, Contract: tickets-nft, Method: claim,
Transfer: {Amount: 1, Recipient: wallet_2}}]}]`,
	}
	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			require.Error(t, err)
		})
	}

	sc, err := Decode([]byte(`Name: x
Steps: [{AdvanceTo: 3}, {EmptyBlocks: 2}]`))
	require.NoError(t, err)
	require.Equal(t, "x", sc.Name)
	require.Equal(t, 2, len(sc.Steps))
}

func TestRun(t *testing.T) {
	sc, err := LoadFile(ticketsScenario)
	require.NoError(t, err)

	bc := simtest.NewChain(t)
	e := simtest.NewExecutor(t, bc)
	rep, err := Run(bc, sc, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.True(t, rep.Passed(), rep.Failures)
	require.Equal(t, "tickets sale", rep.Scenario)
	require.EqualValues(t, 13, rep.Height)

	require.Equal(t, 3, len(rep.Blocks))
	require.EqualValues(t, 1, rep.Blocks[0].Index)
	require.EqualValues(t, 2, rep.Blocks[1].Index)
	require.EqualValues(t, 11, rep.Blocks[2].Index)
	require.Equal(t, 3, rep.Blocks[2].Step)

	contract := e.ContractHash(t, "tickets-nft")
	e.CheckSTXBalance(t, contract, 0)
	e.NewInvoker("tickets-nft", e.Account(t, "wallet_1")).
		Call(t, "get-owner", 1).ExpectOk(t).ExpectPrincipal(t, e.Account(t, "wallet_3"))

	data, err := json.Marshal(rep)
	require.NoError(t, err)
	require.Contains(t, string(data), `"result":"(err u102)"`)
}

func TestRunFailures(t *testing.T) {
	sc, err := Decode([]byte(`Steps:
  - Transactions:
      - Sender: wallet_1
        Contract: tickets-nft
        Method: withdraw-stx
        Expect: (ok true)
      - Sender: wallet_1
        Contract: tickets-nft
        Method: claim
        Expect: fault
`))
	require.NoError(t, err)

	rep, err := Run(simtest.NewChain(t), sc, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.False(t, rep.Passed())
	require.Equal(t, 2, len(rep.Failures))
	require.Contains(t, rep.Failures[0], "expected (ok true), got (err u107)")
}

func TestRunErrors(t *testing.T) {
	testCases := map[string]string{
		"unknown sender":   `Steps: [{Transactions: [{Sender: nobody, Contract: tickets-nft, Method: claim}]}]`,
		"unknown contract": `Steps: [{Transactions: [{Sender: wallet_1, Contract: nope, Method: claim}]}]`,
		"unknown method":   `Steps: [{Transactions: [{Sender: wallet_1, Contract: tickets-nft, Method: nope}]}]`,
		"bad args":         `Steps: [{Transactions: [{Sender: wallet_1, Contract: tickets-nft, Method: transfer, Args: [x, wallet_1, wallet_2]}]}]`,
		"bad recipient":    `Steps: [{Transactions: [{Sender: wallet_1, Transfer: {Amount: 1, Recipient: nobody}}]}]`,
		"advance back":     `Steps: [{EmptyBlocks: 3}, {AdvanceTo: 2}]`,
	}
	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			sc, err := Decode([]byte(data))
			require.NoError(t, err)
			_, err = Run(simtest.NewChain(t), sc, zaptest.NewLogger(t))
			require.Error(t, err)
		})
	}
}
