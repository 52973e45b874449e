package interop

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
)

var errBalanceOverflow = errors.New("STX balance overflow")

// GetSTXBalance returns STX balance of the principal.
func (ic *Context) GetSTXBalance(acc util.Uint160) (*uint256.Int, error) {
	return ic.DAO.GetSTXBalance(acc)
}

// TransferSTX moves amount of STX from one principal to another and emits
// STX transfer event. The sender must be the current tx-sender.
func (ic *Context) TransferSTX(amount *uint256.Int, from, to util.Uint160) error {
	if amount.IsZero() {
		return ErrSTXNonPositiveAmount
	}
	if from.Equals(to) {
		return ErrSTXSamePrincipal
	}
	if !from.Equals(ic.TxSender) {
		return ErrSTXSenderNotTxSender
	}
	fromBalance, err := ic.DAO.GetSTXBalance(from)
	if err != nil {
		return err
	}
	if fromBalance.Lt(amount) {
		return ErrSTXInsufficientBalance
	}
	toBalance, err := ic.DAO.GetSTXBalance(to)
	if err != nil {
		return err
	}
	toBalance, overflow := new(uint256.Int).AddOverflow(toBalance, amount)
	if overflow {
		return errBalanceOverflow
	}
	ic.DAO.PutSTXBalance(from, new(uint256.Int).Sub(fromBalance, amount))
	ic.DAO.PutSTXBalance(to, toBalance)
	ic.AddEvent(state.NewSTXTransferEvent(amount, from, to))
	return nil
}
