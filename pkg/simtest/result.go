package simtest

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
	"github.com/stretchr/testify/require"
)

// Result is a transaction or read-only call result. Response is nil for
// faulted transactions.
type Result struct {
	*state.Response
	FaultException string
}

// Value is the payload of a response.
type Value struct {
	Item stackitem.Item
}

// Events are transaction events in emission order.
type Events []state.Event

// ExpectOk ensures the result is (ok ...) and returns its payload.
func (r Result) ExpectOk(t testing.TB) Value {
	require.NotNil(t, r.Response, "faulted: %s", r.FaultException)
	require.True(t, r.Ok, "expected (ok ...), got %s", r.Response)
	return Value{Item: r.Value}
}

// ExpectErr ensures the result is (err ...) and returns its payload.
func (r Result) ExpectErr(t testing.TB) Value {
	require.NotNil(t, r.Response, "faulted: %s", r.FaultException)
	require.False(t, r.Ok, "expected (err ...), got %s", r.Response)
	return Value{Item: r.Value}
}

// ExpectFault ensures the transaction has failed without a response.
func (r Result) ExpectFault(t testing.TB, substr string) {
	require.Nil(t, r.Response, "expected fault, got %s", r.Response)
	require.Contains(t, r.FaultException, substr)
}

// String implements fmt.Stringer.
func (v Value) String() string {
	return state.FormatValue(v.Item)
}

// ExpectBool ensures the value is the given boolean.
func (v Value) ExpectBool(t testing.TB, expected bool) {
	b, ok := v.Item.(stackitem.Bool)
	require.True(t, ok, "expected bool, got %s", v)
	require.Equal(t, expected, bool(b))
}

// ExpectUint ensures the value is the given unsigned integer.
func (v Value) ExpectUint(t testing.TB, expected uint64) {
	_, ok := v.Item.(*stackitem.BigInteger)
	require.True(t, ok, "expected uint, got %s", v)
	n, err := v.Item.TryInteger()
	require.NoError(t, err)
	require.Equal(t, 0, new(big.Int).SetUint64(expected).Cmp(n), "expected u%d, got %s", expected, v)
}

// ExpectPrincipal ensures the value is the given principal.
func (v Value) ExpectPrincipal(t testing.TB, expected util.Uint160) {
	require.Equal(t, state.PrincipalItem(expected), v.Item, "expected principal, got %s", v)
}

// ExpectASCII ensures the value is the given string.
func (v Value) ExpectASCII(t testing.TB, expected string) {
	_, ok := v.Item.(*stackitem.ByteArray)
	require.True(t, ok, "expected string, got %s", v)
	b, err := v.Item.TryBytes()
	require.NoError(t, err)
	require.Equal(t, expected, string(b))
}

// ExpectNone ensures the value is none.
func (v Value) ExpectNone(t testing.TB) {
	require.True(t, v.Item == nil || v.Item.Equals(stackitem.Null{}), "expected none, got %s", v)
}

// ExpectSTXTransferEvent ensures there is an STX transfer event with the
// given amount and endpoints among events.
func (es Events) ExpectSTXTransferEvent(t testing.TB, amount uint64, from, to util.Uint160) {
	a := uint256.NewInt(amount)
	for _, e := range es {
		if e.Type == state.STXTransferEventType && e.STXTransfer.Amount.Eq(a) &&
			e.STXTransfer.Sender.Equals(from) && e.STXTransfer.Recipient.Equals(to) {
			return
		}
	}
	require.Failf(t, "missing STX transfer event", "%d from %s to %s", amount, from.StringLE(), to.StringLE())
}

// ExpectNFTMintEvent ensures there is a mint event of the asset with the
// given value and recipient among events.
func (es Events) ExpectNFTMintEvent(t testing.TB, asset string, value stackitem.Item, recipient util.Uint160) {
	for _, e := range es {
		if e.Type == state.NFTMintEventType && e.NFTMint.AssetIdentifier == asset &&
			e.NFTMint.Value.Equals(value) && e.NFTMint.Recipient.Equals(recipient) {
			return
		}
	}
	require.Failf(t, "missing NFT mint event", "%s %s to %s", asset, state.FormatValue(value), recipient.StringLE())
}

// ExpectNFTTransferEvent ensures there is a transfer event of the asset with
// the given value and endpoints among events.
func (es Events) ExpectNFTTransferEvent(t testing.TB, asset string, value stackitem.Item, from, to util.Uint160) {
	for _, e := range es {
		if e.Type == state.NFTTransferEventType && e.NFTTransfer.AssetIdentifier == asset &&
			e.NFTTransfer.Value.Equals(value) && e.NFTTransfer.Sender.Equals(from) &&
			e.NFTTransfer.Recipient.Equals(to) {
			return
		}
	}
	require.Failf(t, "missing NFT transfer event", "%s %s from %s to %s", asset, state.FormatValue(value), from.StringLE(), to.StringLE())
}
