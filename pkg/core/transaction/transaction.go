package transaction

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

const (
	// MaxArgs is the maximum number of contract call arguments.
	MaxArgs = 16
	// MaxNameLength limits contract and method names.
	MaxNameLength = 128
)

// Type is the transaction payload kind.
type Type byte

// Transaction types.
const (
	// ContractCallType calls a public contract function.
	ContractCallType Type = 0x01
	// STXTransferType moves STX between principals without any contract.
	STXTransferType Type = 0x02
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case ContractCallType:
		return "contract_call"
	case STXTransferType:
		return "stx_transfer"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// ErrInvalidType is returned when decoding a transaction of an unknown type.
var ErrInvalidType = errors.New("invalid transaction type")

// Transaction is a single call submitted to the chain.
type Transaction struct {
	// Nonce makes otherwise equal transactions distinct.
	Nonce uint32
	// Sender is the principal sending the transaction (tx-sender).
	Sender util.Uint160
	// Type of the payload.
	Type Type

	// Contract call payload.
	Contract string
	Method   string
	Args     []stackitem.Item

	// STX transfer payload.
	Amount    *uint256.Int
	Recipient util.Uint160

	hash   util.Uint256
	hashed bool
}

// NewContractCall creates a transaction calling method of the named contract.
func NewContractCall(contract, method string, args []stackitem.Item, sender util.Uint160) *Transaction {
	return &Transaction{
		Sender:   sender,
		Type:     ContractCallType,
		Contract: contract,
		Method:   method,
		Args:     args,
	}
}

// NewSTXTransfer creates a plain STX transfer transaction.
func NewSTXTransfer(amount *uint256.Int, recipient, sender util.Uint160) *Transaction {
	return &Transaction{
		Sender:    sender,
		Type:      STXTransferType,
		Amount:    amount,
		Recipient: recipient,
	}
}

// Hash returns the hash of the transaction.
func (t *Transaction) Hash() util.Uint256 {
	if !t.hashed {
		buf := io.NewBufBinWriter()
		t.EncodeBinary(buf.BinWriter)
		if buf.Err != nil {
			panic(buf.Err)
		}
		t.hash = hash.Sha256(buf.Bytes())
		t.hashed = true
	}
	return t.hash
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(t.Nonce)
	t.Sender.EncodeBinary(w)
	w.WriteB(byte(t.Type))
	switch t.Type {
	case ContractCallType:
		w.WriteString(t.Contract)
		w.WriteString(t.Method)
		w.WriteVarUint(uint64(len(t.Args)))
		for _, arg := range t.Args {
			stackitem.EncodeBinary(arg, w)
		}
	case STXTransferType:
		amount := t.Amount
		if amount == nil {
			amount = new(uint256.Int)
		}
		b := amount.Bytes32()
		w.WriteBytes(b[:])
		t.Recipient.EncodeBinary(w)
	default:
		w.Err = fmt.Errorf("%w: %s", ErrInvalidType, t.Type)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (t *Transaction) DecodeBinary(r *io.BinReader) {
	t.Nonce = r.ReadU32LE()
	t.Sender.DecodeBinary(r)
	t.Type = Type(r.ReadB())
	switch t.Type {
	case ContractCallType:
		t.Contract = r.ReadString(MaxNameLength)
		t.Method = r.ReadString(MaxNameLength)
		n := r.ReadVarUint()
		if n > MaxArgs {
			r.Err = fmt.Errorf("too many arguments: %d", n)
			return
		}
		t.Args = make([]stackitem.Item, 0, n)
		for i := uint64(0); i < n && r.Err == nil; i++ {
			t.Args = append(t.Args, stackitem.DecodeBinary(r))
		}
	case STXTransferType:
		var b [32]byte
		r.ReadBytes(b[:])
		t.Amount = new(uint256.Int).SetBytes(b[:])
		t.Recipient.DecodeBinary(r)
	default:
		if r.Err == nil {
			r.Err = fmt.Errorf("%w: %s", ErrInvalidType, t.Type)
		}
	}
}

// Bytes returns the binary serialization of the transaction.
func (t *Transaction) Bytes() []byte {
	buf := io.NewBufBinWriter()
	t.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return nil
	}
	return buf.Bytes()
}

// NewTransactionFromBytes decodes byte array into *Transaction.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	tx := &Transaction{}
	r := io.NewBinReaderFromBuf(b)
	tx.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return tx, nil
}
