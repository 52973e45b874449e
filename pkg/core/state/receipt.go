package state

import (
	"encoding/json"
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// MaxEventsPerReceipt limits the number of events decoded for a single receipt.
const MaxEventsPerReceipt = 1024

var errTooManyEvents = errors.New("too many events")

// Receipt is the outcome of a single transaction. Result is nil for faulted
// transactions, FaultException then holds the failure description. Events
// are only kept for (ok ...) results and retain their emission order.
type Receipt struct {
	TxHash         util.Uint256
	BlockIndex     uint32
	Result         *Response
	FaultException string
	Events         []Event
}

// Faulted returns true if transaction execution failed without a committed
// response.
func (r *Receipt) Faulted() bool {
	return r.Result == nil
}

// EncodeBinary implements the io.Serializable interface.
func (r *Receipt) EncodeBinary(w *io.BinWriter) {
	r.TxHash.EncodeBinary(w)
	w.WriteU32LE(r.BlockIndex)
	w.WriteBool(r.Result != nil)
	if r.Result != nil {
		r.Result.EncodeBinary(w)
	}
	w.WriteString(r.FaultException)
	w.WriteVarUint(uint64(len(r.Events)))
	for i := range r.Events {
		r.Events[i].EncodeBinary(w)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (r *Receipt) DecodeBinary(br *io.BinReader) {
	r.TxHash.DecodeBinary(br)
	r.BlockIndex = br.ReadU32LE()
	if br.ReadBool() {
		r.Result = new(Response)
		r.Result.DecodeBinary(br)
	}
	r.FaultException = br.ReadString()
	n := br.ReadVarUint()
	if n > MaxEventsPerReceipt {
		br.Err = errTooManyEvents
		return
	}
	r.Events = make([]Event, n)
	for i := range r.Events {
		r.Events[i].DecodeBinary(br)
		if br.Err != nil {
			return
		}
	}
}

type receiptAux struct {
	TxHash         util.Uint256 `json:"txid"`
	BlockIndex     uint32       `json:"block"`
	Result         string       `json:"result,omitempty"`
	FaultException string       `json:"exception,omitempty"`
	Events         []Event      `json:"events"`
}

// MarshalJSON implements the json.Marshaler interface.
func (r Receipt) MarshalJSON() ([]byte, error) {
	aux := receiptAux{
		TxHash:         r.TxHash,
		BlockIndex:     r.BlockIndex,
		FaultException: r.FaultException,
		Events:         r.Events,
	}
	if r.Result != nil {
		aux.Result = r.Result.String()
	}
	if aux.Events == nil {
		aux.Events = []Event{}
	}
	return json.Marshal(aux)
}
