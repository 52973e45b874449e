package interop

import (
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/ticketsim/pkg/core/dao"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
	"github.com/nspcc-dev/ticketsim/pkg/core/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testAsset = "contract.tickets-nft::tickets"

var (
	alice    = util.Uint160{1}
	bob      = util.Uint160{2}
	contract = util.Uint160{3}
)

func newTestContext(t *testing.T) *Context {
	d := dao.NewSimple(storage.NewMemoryStore())
	d.PutSTXBalance(alice, uint256.NewInt(1000))
	ic := NewContext(d, 1, 1000, nil, alice, zaptest.NewLogger(t))
	ic.Contract = contract
	return ic
}

func checkBalance(t *testing.T, ic *Context, acc util.Uint160, expected uint64) {
	b, err := ic.GetSTXBalance(acc)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(expected), b)
}

func TestTransferSTX(t *testing.T) {
	testCases := []struct {
		name     string
		amount   uint64
		from, to util.Uint160
		err      *CodeError
	}{
		{"zero amount", 0, alice, alice, ErrSTXNonPositiveAmount},
		{"same principal", 10, alice, alice, ErrSTXSamePrincipal},
		{"not tx-sender", 10, bob, alice, ErrSTXSenderNotTxSender},
		{"insufficient balance", 1001, alice, bob, ErrSTXInsufficientBalance},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ic := newTestContext(t)
			err := ic.TransferSTX(uint256.NewInt(tc.amount), tc.from, tc.to)
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, 0, len(ic.Events))
			checkBalance(t, ic, alice, 1000)
		})
	}

	t.Run("good", func(t *testing.T) {
		ic := newTestContext(t)
		require.NoError(t, ic.TransferSTX(uint256.NewInt(1000), alice, bob))
		checkBalance(t, ic, alice, 0)
		checkBalance(t, ic, bob, 1000)
		require.Equal(t, []state.Event{state.NewSTXTransferEvent(uint256.NewInt(1000), alice, bob)}, ic.Events)
	})
}

func TestAsContract(t *testing.T) {
	ic := newTestContext(t)
	require.NoError(t, ic.TransferSTX(uint256.NewInt(100), alice, contract))

	// The contract can't spend its balance on behalf of the caller.
	require.ErrorIs(t, ic.TransferSTX(uint256.NewInt(100), contract, alice), ErrSTXSenderNotTxSender)

	err := ic.AsContract(func() error {
		require.Equal(t, contract, ic.TxSender)
		return ic.TransferSTX(uint256.NewInt(100), contract, bob)
	})
	require.NoError(t, err)
	require.Equal(t, alice, ic.TxSender)
	checkBalance(t, ic, contract, 0)
	checkBalance(t, ic, bob, 100)
	require.Equal(t, 2, len(ic.Events))
	require.Equal(t, contract, ic.Events[1].STXTransfer.Sender)
}

func TestNFT(t *testing.T) {
	ic := newTestContext(t)
	id := stackitem.Make(1)

	_, exists, err := ic.GetNFTOwner(testAsset, id)
	require.NoError(t, err)
	require.False(t, exists)

	require.ErrorIs(t, ic.TransferNFT(testAsset, id, alice, bob), ErrNFTNotFound)

	require.NoError(t, ic.MintNFT(testAsset, id, alice))
	require.ErrorIs(t, ic.MintNFT(testAsset, id, bob), ErrNFTAlreadyExists)

	owner, exists, err := ic.GetNFTOwner(testAsset, id)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, alice, owner)

	require.ErrorIs(t, ic.TransferNFT(testAsset, id, alice, alice), ErrNFTSamePrincipal)
	require.ErrorIs(t, ic.TransferNFT(testAsset, id, bob, alice), ErrNFTNotOwner)
	require.NoError(t, ic.TransferNFT(testAsset, id, alice, bob))

	owner, _, err = ic.GetNFTOwner(testAsset, id)
	require.NoError(t, err)
	require.Equal(t, bob, owner)

	require.Equal(t, []state.Event{
		state.NewNFTMintEvent(testAsset, id, alice),
		state.NewNFTTransferEvent(testAsset, id, alice, bob),
	}, ic.Events)
}

func TestCodeError(t *testing.T) {
	err := NewCodeError(102, "use-by block height reached")
	require.Equal(t, "err u102: use-by block height reached", err.Error())
	require.Equal(t, "(err u102)", err.Response().String())
}

func testMethod(_ *Context, _ []stackitem.Item) (stackitem.Item, error) {
	return stackitem.NewBool(true), nil
}

func TestContractMD(t *testing.T) {
	deployer := util.Uint160{9}
	md := NewContractMD("tickets-nft", deployer)
	require.Equal(t, CreateContractHash(deployer, "tickets-nft"), md.Hash)
	require.NotEqual(t, CreateContractHash(deployer, "other"), md.Hash)
	require.Equal(t, address.Uint160ToString(md.Hash)+".tickets-nft::tickets", md.AssetIdentifier("tickets"))

	md.AddMethod("transfer", testMethod, false,
		NewParameter("id", smartcontract.IntegerType),
		NewParameter("sender", smartcontract.Hash160Type))
	md.AddMethod("get-owner", testMethod, true, NewParameter("id", smartcontract.IntegerType))
	require.Equal(t, []string{"get-owner", "transfer"}, md.MethodNames())

	_, ok := md.GetMethod("claim")
	require.False(t, ok)
	m, ok := md.GetMethod("transfer")
	require.True(t, ok)
	require.False(t, m.ReadOnly)

	t.Run("CheckArgs", func(t *testing.T) {
		require.NoError(t, m.CheckArgs([]stackitem.Item{stackitem.Make(1), state.PrincipalItem(alice)}))
		require.ErrorIs(t, m.CheckArgs([]stackitem.Item{stackitem.Make(1)}), ErrInvalidArgCount)
		require.ErrorIs(t, m.CheckArgs([]stackitem.Item{stackitem.Make(-1), state.PrincipalItem(alice)}), ErrInvalidArgType)
		require.ErrorIs(t, m.CheckArgs([]stackitem.Item{stackitem.Make("1"), state.PrincipalItem(alice)}), ErrInvalidArgType)
		require.ErrorIs(t, m.CheckArgs([]stackitem.Item{stackitem.Make(1), stackitem.Make([]byte{1})}), ErrInvalidArgType)
		require.ErrorIs(t, m.CheckArgs([]stackitem.Item{nil, state.PrincipalItem(alice)}), ErrInvalidArgType)
	})

	t.Run("ParseParams", func(t *testing.T) {
		resolve := func(name string) (util.Uint160, bool) {
			if name == "alice" {
				return alice, true
			}
			return util.Uint160{}, false
		}
		items, err := m.ParseParams([]string{"u7", "alice"}, resolve)
		require.NoError(t, err)
		require.NoError(t, m.CheckArgs(items))
		require.Equal(t, "u7", state.FormatValue(items[0]))
		require.Equal(t, state.PrincipalItem(alice), items[1])

		items, err = m.ParseParams([]string{"7", "'" + address.Uint160ToString(bob)}, resolve)
		require.NoError(t, err)
		require.Equal(t, state.PrincipalItem(bob), items[1])

		_, err = m.ParseParams([]string{"u7"}, resolve)
		require.ErrorIs(t, err, ErrInvalidArgCount)
		_, err = m.ParseParams([]string{"-7", "alice"}, resolve)
		require.ErrorIs(t, err, ErrInvalidArgType)
		_, err = m.ParseParams([]string{"u7", "carol"}, resolve)
		require.ErrorIs(t, err, ErrInvalidArgType)
	})
}

func TestParseParam(t *testing.T) {
	item, err := ParseParam(smartcontract.BoolType, "true", nil)
	require.NoError(t, err)
	require.Equal(t, stackitem.NewBool(true), item)

	_, err = ParseParam(smartcontract.BoolType, "yes", nil)
	require.ErrorIs(t, err, ErrInvalidArgType)

	item, err = ParseParam(smartcontract.StringType, "ipfs://x", nil)
	require.NoError(t, err)
	require.Equal(t, `"ipfs://x"`, state.FormatValue(item))

	_, err = ParseParam(smartcontract.ArrayType, "[]", nil)
	require.ErrorIs(t, err, ErrInvalidArgType)

	t.Run("integer size", func(t *testing.T) {
		maxUint := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), stackitem.MaxBigIntegerSizeBits-1), big.NewInt(1))
		item, err := ParseParam(smartcontract.IntegerType, "u"+maxUint.String(), nil)
		require.NoError(t, err)
		require.Equal(t, "u"+maxUint.String(), state.FormatValue(item))

		require.NotPanics(t, func() {
			_, err = ParseParam(smartcontract.IntegerType, "u"+strings.Repeat("9", 100), nil)
		})
		require.ErrorIs(t, err, ErrInvalidArgType)
	})
}
