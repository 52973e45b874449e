package interop

import (
	"fmt"

	"github.com/nspcc-dev/ticketsim/pkg/core/state"
)

// CodeError is a committed (err uN) result of a contract function. Returning
// it aborts the transaction: its state changes and events are discarded, but
// the receipt still carries the code. Any other error is a fault.
type CodeError struct {
	Code    uint64
	Message string
}

// NewCodeError creates a new CodeError.
func NewCodeError(code uint64, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// Error implements the error interface.
func (e *CodeError) Error() string {
	return fmt.Sprintf("err u%d: %s", e.Code, e.Message)
}

// Response returns (err uN) response for the error.
func (e *CodeError) Response() *state.Response {
	return state.NewErrCode(e.Code)
}

// Built-in STX transfer errors.
var (
	ErrSTXInsufficientBalance = NewCodeError(1, "insufficient STX balance")
	ErrSTXSamePrincipal       = NewCodeError(2, "sender and recipient are the same principal")
	ErrSTXNonPositiveAmount   = NewCodeError(3, "amount is not positive")
	ErrSTXSenderNotTxSender   = NewCodeError(4, "sender is not tx-sender")
)

// Built-in NFT errors.
var (
	ErrNFTAlreadyExists = NewCodeError(1, "token already exists")
	ErrNFTNotOwner      = NewCodeError(1, "sender does not own the token")
	ErrNFTSamePrincipal = NewCodeError(2, "sender and recipient are the same principal")
	ErrNFTNotFound      = NewCodeError(3, "token does not exist")
)
