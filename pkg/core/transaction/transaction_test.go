package transaction

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

var (
	sender    = util.Uint160{1, 2, 3}
	recipient = util.Uint160{4, 5, 6}
)

func TestNewContractCall(t *testing.T) {
	args := []stackitem.Item{stackitem.Make(1), stackitem.NewByteArray(recipient.BytesBE())}
	tx := NewContractCall("tickets-nft", "transfer", args, sender)
	tx.Nonce = 42

	actual, err := NewTransactionFromBytes(tx.Bytes())
	require.NoError(t, err)
	require.Equal(t, ContractCallType, actual.Type)
	require.Equal(t, "tickets-nft", actual.Contract)
	require.Equal(t, "transfer", actual.Method)
	require.Equal(t, sender, actual.Sender)
	require.EqualValues(t, 42, actual.Nonce)
	require.Equal(t, len(args), len(actual.Args))
	for i := range args {
		require.True(t, args[i].Equals(actual.Args[i]))
	}
	require.Equal(t, tx.Hash(), actual.Hash())
}

func TestNewSTXTransfer(t *testing.T) {
	tx := NewSTXTransfer(uint256.NewInt(100), recipient, sender)

	actual, err := NewTransactionFromBytes(tx.Bytes())
	require.NoError(t, err)
	require.Equal(t, STXTransferType, actual.Type)
	require.Equal(t, uint256.NewInt(100), actual.Amount)
	require.Equal(t, recipient, actual.Recipient)
	require.Equal(t, tx.Hash(), actual.Hash())
}

func TestHash(t *testing.T) {
	a := NewSTXTransfer(uint256.NewInt(100), recipient, sender)
	b := NewSTXTransfer(uint256.NewInt(100), recipient, sender)
	require.Equal(t, a.Hash(), b.Hash())

	c := NewSTXTransfer(uint256.NewInt(100), recipient, sender)
	c.Nonce = 1
	require.NotEqual(t, a.Hash(), c.Hash())

	d := NewContractCall("tickets-nft", "claim", nil, sender)
	e := NewContractCall("tickets-nft", "claim", []stackitem.Item{}, sender)
	require.Equal(t, d.Hash(), e.Hash())
}

func TestDecodeErrors(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		tx := &Transaction{Type: 0x7f}
		require.Nil(t, tx.Bytes())

		buf := io.NewBufBinWriter()
		buf.WriteU32LE(0)
		sender.EncodeBinary(buf.BinWriter)
		buf.WriteB(0x7f)
		_, err := NewTransactionFromBytes(buf.Bytes())
		require.ErrorIs(t, err, ErrInvalidType)
	})
	t.Run("too many args", func(t *testing.T) {
		args := make([]stackitem.Item, MaxArgs+1)
		for i := range args {
			args[i] = stackitem.Make(i)
		}
		tx := NewContractCall("tickets-nft", "claim", args, sender)
		_, err := NewTransactionFromBytes(tx.Bytes())
		require.Error(t, err)
	})
	t.Run("truncated", func(t *testing.T) {
		tx := NewSTXTransfer(uint256.NewInt(1), recipient, sender)
		b := tx.Bytes()
		_, err := NewTransactionFromBytes(b[:len(b)-1])
		require.Error(t, err)
	})
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "contract_call", ContractCallType.String())
	require.Equal(t, "stx_transfer", STXTransferType.String())
	require.Equal(t, "unknown(127)", Type(0x7f).String())
}
