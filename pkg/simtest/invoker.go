package simtest

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/ticketsim/pkg/core/transaction"
)

// ContractInvoker is used to create and mine transactions calling a single
// contract on behalf of a single sender.
type ContractInvoker struct {
	*Executor
	Contract string
	Sender   util.Uint160
}

// NewInvoker creates a new ContractInvoker for the contract.
func (e *Executor) NewInvoker(contract string, sender util.Uint160) *ContractInvoker {
	return &ContractInvoker{
		Executor: e,
		Contract: contract,
		Sender:   sender,
	}
}

// WithSender creates a new ContractInvoker for the same contract but with
// another sender.
func (c *ContractInvoker) WithSender(sender util.Uint160) *ContractInvoker {
	return c.NewInvoker(c.Contract, sender)
}

// Tx creates a transaction calling the method.
func (c *ContractInvoker) Tx(method string, args ...any) *transaction.Transaction {
	return c.ContractCall(c.Contract, method, c.Sender, args...)
}

// Invoke mines a block with a single transaction calling the method and
// returns its receipt.
func (c *ContractInvoker) Invoke(t testing.TB, method string, args ...any) Receipt {
	return c.MineBlock(t, c.Tx(method, args...)).Receipts[0]
}

// Call calls the read-only method.
func (c *ContractInvoker) Call(t testing.TB, method string, args ...any) Result {
	return c.CallReadOnly(t, c.Sender, c.Contract, method, args...)
}
