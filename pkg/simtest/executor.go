package simtest

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/ticketsim/pkg/core"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
	"github.com/nspcc-dev/ticketsim/pkg/core/transaction"
	"github.com/stretchr/testify/require"
)

// Executor is a wrapper over chain state.
type Executor struct {
	Chain *core.Blockchain
}

// BlockResult is the outcome of a mined block.
type BlockResult struct {
	// Height is the chain height after the block.
	Height   uint32
	Receipts []Receipt
}

// Receipt is a transaction receipt wrapper.
type Receipt struct {
	Result Result
	Events Events
	Raw    *state.Receipt
}

// NewExecutor creates a new executor instance from the provided blockchain.
func NewExecutor(t testing.TB, bc *core.Blockchain) *Executor {
	require.NotNil(t, bc)
	return &Executor{Chain: bc}
}

// Account returns the principal of the named genesis account.
func (e *Executor) Account(t testing.TB, name string) util.Uint160 {
	h, err := e.Chain.GetAccount(name)
	require.NoError(t, err)
	return h
}

// ContractHash returns the principal of the named contract.
func (e *Executor) ContractHash(t testing.TB, name string) util.Uint160 {
	c, err := e.Chain.GetContract(name)
	require.NoError(t, err)
	return c.Metadata().Hash
}

// ContractCall creates a transaction calling the contract method. Arguments
// are converted with stackitem.Make, util.Uint160 values become principals.
func (e *Executor) ContractCall(contract, method string, sender util.Uint160, args ...any) *transaction.Transaction {
	items := make([]stackitem.Item, len(args))
	for i := range args {
		items[i] = toItem(args[i])
	}
	tx := transaction.NewContractCall(contract, method, items, sender)
	tx.Nonce = e.Chain.NextNonce()
	return tx
}

// TransferSTX creates a transaction moving amount of STX from one principal
// to another.
func (e *Executor) TransferSTX(amount uint64, from, to util.Uint160) *transaction.Transaction {
	tx := transaction.NewSTXTransfer(uint256.NewInt(amount), to, from)
	tx.Nonce = e.Chain.NextNonce()
	return tx
}

// MineBlock mines a block with the given transactions and checks that there
// is a receipt for each of them in the same order.
func (e *Executor) MineBlock(t testing.TB, txs ...*transaction.Transaction) *BlockResult {
	b, receipts, err := e.Chain.MineBlock(txs...)
	require.NoError(t, err)
	require.Equal(t, len(txs), len(receipts))
	res := &BlockResult{
		Height:   b.Index,
		Receipts: make([]Receipt, len(receipts)),
	}
	for i, r := range receipts {
		require.Equal(t, txs[i].Hash(), r.TxHash, "receipt %d", i)
		res.Receipts[i] = Receipt{
			Result: Result{Response: r.Result, FaultException: r.FaultException},
			Events: r.Events,
			Raw:    r,
		}
	}
	return res
}

// MineEmptyBlock mines a block without transactions.
func (e *Executor) MineEmptyBlock(t testing.TB) {
	_, err := e.Chain.MineEmptyBlock()
	require.NoError(t, err)
}

// MineEmptyBlockUntil mines empty blocks until the chain reaches the given
// height.
func (e *Executor) MineEmptyBlockUntil(t testing.TB, height uint32) {
	h, err := e.Chain.MineEmptyBlockUntil(height)
	require.NoError(t, err)
	require.Equal(t, height, h)
}

// CallReadOnly calls the read-only contract method.
func (e *Executor) CallReadOnly(t testing.TB, sender util.Uint160, contract, method string, args ...any) Result {
	items := make([]stackitem.Item, len(args))
	for i := range args {
		items[i] = toItem(args[i])
	}
	resp, err := e.Chain.CallReadOnly(sender, contract, method, items...)
	require.NoError(t, err)
	return Result{Response: resp}
}

// CheckSTXBalance ensures that the STX balance of the principal is as expected.
func (e *Executor) CheckSTXBalance(t testing.TB, acc util.Uint160, expected uint64) {
	actual, err := e.Chain.GetSTXBalance(acc)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(expected), actual, "invalid STX balance")
}

func toItem(v any) stackitem.Item {
	if h, ok := v.(util.Uint160); ok {
		return state.PrincipalItem(h)
	}
	return stackitem.Make(v)
}
