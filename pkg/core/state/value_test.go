package state

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	principal := util.Uint160{1, 2, 3}
	testCases := []struct {
		item     stackitem.Item
		expected string
	}{
		{nil, "none"},
		{stackitem.Null{}, "none"},
		{stackitem.NewBool(true), "true"},
		{stackitem.NewBool(false), "false"},
		{stackitem.Make(1), "u1"},
		{stackitem.NewBigInteger(big.NewInt(-5)), "-5"},
		{PrincipalItem(principal), "'" + address.Uint160ToString(principal)},
		{stackitem.NewByteArray([]byte("ipfs://tickets/1.json")), `"ipfs://tickets/1.json"`},
		{stackitem.NewByteArray([]byte{0xff, 0xfe}), "0xfffe"},
		{stackitem.NewArray([]stackitem.Item{stackitem.Make(1), stackitem.NewBool(true)}), "(list u1 true)"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			require.Equal(t, tc.expected, FormatValue(tc.item))
		})
	}
}

func TestResponseString(t *testing.T) {
	require.Equal(t, "(ok true)", NewOk(stackitem.NewBool(true)).String())
	require.Equal(t, "(err u102)", NewErrCode(102).String())
	require.Equal(t, "(err none)", NewErr(stackitem.Null{}).String())
}
