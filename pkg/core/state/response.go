package state

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Response is a committed result of a public contract function, either
// (ok value) or (err value). An err response discards all state changes and
// events of the transaction.
type Response struct {
	Ok    bool
	Value stackitem.Item
}

// NewOk returns (ok item).
func NewOk(item stackitem.Item) *Response {
	return &Response{Ok: true, Value: item}
}

// NewErr returns (err item).
func NewErr(item stackitem.Item) *Response {
	return &Response{Ok: false, Value: item}
}

// NewErrCode returns (err uCode).
func NewErrCode(code uint64) *Response {
	return NewErr(stackitem.NewBigInteger(new(big.Int).SetUint64(code)))
}

// String implements fmt.Stringer, e.g. "(ok true)" or "(err u102)".
func (r *Response) String() string {
	tag := "err"
	if r.Ok {
		tag = "ok"
	}
	return fmt.Sprintf("(%s %s)", tag, FormatValue(r.Value))
}

// EncodeBinary implements the io.Serializable interface.
func (r *Response) EncodeBinary(w *io.BinWriter) {
	w.WriteBool(r.Ok)
	value := r.Value
	if value == nil {
		value = stackitem.Null{}
	}
	stackitem.EncodeBinary(value, w)
}

// DecodeBinary implements the io.Serializable interface.
func (r *Response) DecodeBinary(br *io.BinReader) {
	r.Ok = br.ReadBool()
	r.Value = stackitem.DecodeBinary(br)
}
