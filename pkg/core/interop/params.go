package interop

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
)

// PrincipalResolver maps account names to principals.
type PrincipalResolver func(name string) (util.Uint160, bool)

// ParseParams converts textual arguments into stack items according to the
// method parameter types. Integers can be given as u1 or 1, principals as
// account names or addresses (optionally prefixed with a quote).
func (m *MethodMD) ParseParams(args []string, resolve PrincipalResolver) ([]stackitem.Item, error) {
	if len(args) != len(m.Params) {
		return nil, fmt.Errorf("%w: %s expects %d, got %d", ErrInvalidArgCount, m.Name, len(m.Params), len(args))
	}
	items := make([]stackitem.Item, len(args))
	for i, p := range m.Params {
		item, err := ParseParam(p.Type, args[i], resolve)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		items[i] = item
	}
	return items, nil
}

// ParseParam converts a single textual argument into a stack item of the
// given type.
func ParseParam(typ smartcontract.ParamType, s string, resolve PrincipalResolver) (stackitem.Item, error) {
	switch typ {
	case smartcontract.BoolType:
		switch s {
		case "true":
			return stackitem.NewBool(true), nil
		case "false":
			return stackitem.NewBool(false), nil
		}
		return nil, fmt.Errorf("%w: bad bool %q", ErrInvalidArgType, s)
	case smartcontract.IntegerType:
		n, ok := new(big.Int).SetString(strings.TrimPrefix(s, "u"), 10)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("%w: bad unsigned integer %q", ErrInvalidArgType, s)
		}
		if err := stackitem.CheckIntegerSize(n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgType, err)
		}
		return stackitem.NewBigInteger(n), nil
	case smartcontract.Hash160Type:
		u, err := ParsePrincipal(s, resolve)
		if err != nil {
			return nil, err
		}
		return state.PrincipalItem(u), nil
	case smartcontract.StringType:
		return stackitem.NewByteArray([]byte(s)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported parameter type %s", ErrInvalidArgType, typ)
	}
}

// ParsePrincipal converts account name or address into a principal.
func ParsePrincipal(s string, resolve PrincipalResolver) (util.Uint160, error) {
	s = strings.TrimPrefix(s, "'")
	if resolve != nil {
		if u, ok := resolve(s); ok {
			return u, nil
		}
	}
	u, err := address.StringToUint160(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%w: unknown principal %q", ErrInvalidArgType, s)
	}
	return u, nil
}
