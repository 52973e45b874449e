package interop

import (
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/ticketsim/pkg/core/dao"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
	"github.com/nspcc-dev/ticketsim/pkg/core/transaction"
	"go.uber.org/zap"
)

// Context represents context in which contract functions and built-ins are
// executed.
type Context struct {
	// DAO is a private storage layer of the transaction, it's persisted only
	// for (ok ...) results.
	DAO *dao.Simple
	// BlockHeight is the index of the block being mined (or the current
	// height for read-only calls).
	BlockHeight uint32
	// Timestamp of the block being mined.
	Timestamp uint64
	// Tx is the transaction being executed, nil for read-only calls.
	Tx *transaction.Transaction
	// TxSender is the principal that sent the transaction, it's replaced by
	// the contract principal inside AsContract.
	TxSender util.Uint160
	// ContractCaller is the principal that called the current contract.
	ContractCaller util.Uint160
	// Contract is the principal of the contract being executed.
	Contract util.Uint160
	// Events are the events emitted so far, in emission order.
	Events []state.Event
	Log    *zap.Logger
}

// NewContext returns new interop context.
func NewContext(d *dao.Simple, height uint32, timestamp uint64, tx *transaction.Transaction, sender util.Uint160, log *zap.Logger) *Context {
	return &Context{
		DAO:            d,
		BlockHeight:    height,
		Timestamp:      timestamp,
		Tx:             tx,
		TxSender:       sender,
		ContractCaller: sender,
		Events:         make([]state.Event, 0),
		Log:            log,
	}
}

// AsContract executes f with TxSender set to the current contract principal,
// so that f can move assets owned by the contract.
func (ic *Context) AsContract(f func() error) error {
	sender := ic.TxSender
	ic.TxSender = ic.Contract
	defer func() { ic.TxSender = sender }()
	return f()
}

// AddEvent appends an event to the list of emitted ones.
func (ic *Context) AddEvent(e state.Event) {
	ic.Events = append(ic.Events, e)
}
