package interop

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Various ABI errors.
var (
	ErrInvalidArgCount = errors.New("invalid number of arguments")
	ErrInvalidArgType  = errors.New("invalid argument type")
)

// Method is a signature for contract functions. A nil error commits
// (ok item), a *CodeError commits (err uN), any other error faults the
// transaction.
type Method = func(ic *Context, args []stackitem.Item) (stackitem.Item, error)

// Parameter is a named and typed function parameter.
type Parameter struct {
	Name string
	Type smartcontract.ParamType
}

// NewParameter returns new Parameter.
func NewParameter(name string, typ smartcontract.ParamType) Parameter {
	return Parameter{Name: name, Type: typ}
}

// MethodMD describes a contract function.
type MethodMD struct {
	Name     string
	Func     Method
	ReadOnly bool
	Params   []Parameter
}

// ContractMD represents contract metadata.
type ContractMD struct {
	Name    string
	Hash    util.Uint160
	Methods map[string]*MethodMD
}

// Contract is an interface for all contracts deployed on the chain.
type Contract interface {
	// Initialize is called once when the contract is deployed in the
	// genesis block.
	Initialize(*Context) error
	Metadata() *ContractMD
}

// CreateContractHash creates contract principal from the deployer and the
// contract name.
func CreateContractHash(deployer util.Uint160, name string) util.Uint160 {
	return hash.Hash160(append(deployer.BytesBE(), name...))
}

// NewContractMD returns Contract with the specified list of methods.
func NewContractMD(name string, deployer util.Uint160) *ContractMD {
	return &ContractMD{
		Name:    name,
		Hash:    CreateContractHash(deployer, name),
		Methods: make(map[string]*MethodMD),
	}
}

// AddMethod adds new function to the contract.
func (c *ContractMD) AddMethod(name string, f Method, readOnly bool, params ...Parameter) {
	c.Methods[name] = &MethodMD{
		Name:     name,
		Func:     f,
		ReadOnly: readOnly,
		Params:   params,
	}
}

// GetMethod returns function with the specified name.
func (c *ContractMD) GetMethod(name string) (*MethodMD, bool) {
	m, ok := c.Methods[name]
	return m, ok
}

// MethodNames returns sorted list of contract function names.
func (c *ContractMD) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for name := range c.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AssetIdentifier returns fully qualified name of the contract asset.
func (c *ContractMD) AssetIdentifier(asset string) string {
	return address.Uint160ToString(c.Hash) + "." + c.Name + "::" + asset
}

// CheckArgs verifies the number and types of arguments.
func (m *MethodMD) CheckArgs(args []stackitem.Item) error {
	if len(args) != len(m.Params) {
		return fmt.Errorf("%w: %s expects %d, got %d", ErrInvalidArgCount, m.Name, len(m.Params), len(args))
	}
	for i, p := range m.Params {
		if !isOfType(args[i], p.Type) {
			return fmt.Errorf("%w: %s expects %s for %s", ErrInvalidArgType, m.Name, p.Type, p.Name)
		}
	}
	return nil
}

func isOfType(item stackitem.Item, typ smartcontract.ParamType) bool {
	if item == nil {
		return false
	}
	switch typ {
	case smartcontract.AnyType:
		return true
	case smartcontract.BoolType:
		return item.Type() == stackitem.BooleanT
	case smartcontract.IntegerType:
		if item.Type() != stackitem.IntegerT {
			return false
		}
		n, err := item.TryInteger()
		return err == nil && n.Sign() >= 0
	case smartcontract.Hash160Type:
		b, err := item.TryBytes()
		return item.Type() == stackitem.ByteArrayT && err == nil && len(b) == util.Uint160Size
	case smartcontract.StringType:
		return item.Type() == stackitem.ByteArrayT
	default:
		return false
	}
}
