package state

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// PrincipalItem converts script hash into a stack item suitable for contract
// arguments and results.
func PrincipalItem(u util.Uint160) stackitem.Item {
	return stackitem.NewByteArray(u.BytesBE())
}

// FormatValue returns human-readable representation of a contract value:
// booleans as is, integers as unsigned literals (u1), principals prefixed with
// a quote, strings quoted and Null as none.
func FormatValue(item stackitem.Item) string {
	if item == nil {
		return "none"
	}
	switch it := item.(type) {
	case stackitem.Null:
		return "none"
	case stackitem.Bool:
		return strconv.FormatBool(bool(it))
	case *stackitem.BigInteger:
		n, _ := it.TryInteger()
		if n.Sign() < 0 {
			return n.String()
		}
		return "u" + n.String()
	case *stackitem.ByteArray:
		b, _ := it.TryBytes()
		if len(b) == util.Uint160Size {
			u, err := util.Uint160DecodeBytesBE(b)
			if err == nil {
				return "'" + address.Uint160ToString(u)
			}
		}
		if utf8.Valid(b) {
			return strconv.Quote(string(b))
		}
		return "0x" + hex.EncodeToString(b)
	case *stackitem.Array:
		elems := it.Value().([]stackitem.Item)
		parts := make([]string, 0, len(elems))
		for _, e := range elems {
			parts = append(parts, FormatValue(e))
		}
		return "(list " + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprint(item.Value())
	}
}
