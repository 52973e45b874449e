package ticketsnft

import (
	"errors"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/ticketsim/pkg/config"
	"github.com/nspcc-dev/ticketsim/pkg/core/interop"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
)

// AssetName is the name of the non-fungible asset defined by the contract.
const AssetName = "tickets"

// Contract errors.
var (
	ErrNotTokenOwner     = interop.NewCodeError(101, "not token owner")
	ErrUseByBlockReached = interop.NewCodeError(102, "use-by block height reached")
	ErrOwnerOnly         = interop.NewCodeError(107, "owner only")
)

var errBadTokenID = errors.New("token identifier is not an unsigned integer")

var lastTokenIDKey = []byte("last-token-id")

// Tickets represents tickets-nft contract.
type Tickets struct {
	interop.ContractMD
	owner   util.Uint160
	price   *uint256.Int
	useBy   uint32
	baseURI string
	asset   string
}

var _ interop.Contract = (*Tickets)(nil)

// New returns tickets-nft contract deployed by owner.
func New(cfg config.TicketsNFT, owner util.Uint160) *Tickets {
	t := &Tickets{
		ContractMD: *interop.NewContractMD(cfg.Name, owner),
		owner:      owner,
		price:      uint256.NewInt(cfg.Price),
		useBy:      cfg.UseByHeight,
		baseURI:    cfg.BaseURI,
	}
	t.asset = t.AssetIdentifier(AssetName)

	id := interop.NewParameter("id", smartcontract.IntegerType)

	t.AddMethod("claim", t.claim, false)
	t.AddMethod("withdraw-stx", t.withdrawSTX, false)
	t.AddMethod("transfer", t.transfer, false, id,
		interop.NewParameter("sender", smartcontract.Hash160Type),
		interop.NewParameter("recipient", smartcontract.Hash160Type))

	t.AddMethod("get-last-token-id", t.getLastTokenID, true)
	t.AddMethod("get-token-uri", t.getTokenURI, true, id)
	t.AddMethod("get-owner", t.getOwner, true, id)
	t.AddMethod("get-price", t.getPrice, true)
	t.AddMethod("get-use-by-height", t.getUseByHeight, true)
	return t
}

// Metadata implements the interop.Contract interface.
func (t *Tickets) Metadata() *interop.ContractMD {
	return &t.ContractMD
}

// Initialize implements the interop.Contract interface.
func (t *Tickets) Initialize(ic *interop.Context) error {
	ic.DAO.PutUint(t.Hash, lastTokenIDKey, new(uint256.Int))
	return nil
}

// Asset returns fully qualified identifier of the ticket asset.
func (t *Tickets) Asset() string {
	return t.asset
}

func (t *Tickets) claim(ic *interop.Context, _ []stackitem.Item) (stackitem.Item, error) {
	if ic.BlockHeight >= t.useBy {
		return nil, ErrUseByBlockReached
	}
	if err := ic.TransferSTX(t.price, ic.TxSender, t.Hash); err != nil {
		return nil, err
	}
	id := new(uint256.Int).AddUint64(ic.DAO.GetUint(t.Hash, lastTokenIDKey), 1)
	if err := ic.MintNFT(t.asset, uintItem(id), ic.TxSender); err != nil {
		return nil, err
	}
	ic.DAO.PutUint(t.Hash, lastTokenIDKey, id)
	return stackitem.NewBool(true), nil
}

func (t *Tickets) withdrawSTX(ic *interop.Context, _ []stackitem.Item) (stackitem.Item, error) {
	if !ic.TxSender.Equals(t.owner) {
		return nil, ErrOwnerOnly
	}
	err := ic.AsContract(func() error {
		balance, err := ic.GetSTXBalance(t.Hash)
		if err != nil {
			return err
		}
		return ic.TransferSTX(balance, ic.TxSender, t.owner)
	})
	if err != nil {
		return nil, err
	}
	return stackitem.NewBool(true), nil
}

func (t *Tickets) transfer(ic *interop.Context, args []stackitem.Item) (stackitem.Item, error) {
	sender, err := toUint160(args[1])
	if err != nil {
		return nil, err
	}
	recipient, err := toUint160(args[2])
	if err != nil {
		return nil, err
	}
	if !ic.TxSender.Equals(sender) {
		return nil, ErrNotTokenOwner
	}
	if err := ic.TransferNFT(t.asset, args[0], sender, recipient); err != nil {
		return nil, err
	}
	return stackitem.NewBool(true), nil
}

func (t *Tickets) getLastTokenID(ic *interop.Context, _ []stackitem.Item) (stackitem.Item, error) {
	return uintItem(ic.DAO.GetUint(t.Hash, lastTokenIDKey)), nil
}

func (t *Tickets) getTokenURI(ic *interop.Context, args []stackitem.Item) (stackitem.Item, error) {
	id, err := toUint(args[0])
	if err != nil {
		return nil, err
	}
	last := ic.DAO.GetUint(t.Hash, lastTokenIDKey)
	if id.IsZero() || id.Gt(last) {
		return stackitem.Null{}, nil
	}
	return stackitem.NewByteArray([]byte(t.baseURI + id.ToBig().String() + ".json")), nil
}

func (t *Tickets) getOwner(ic *interop.Context, args []stackitem.Item) (stackitem.Item, error) {
	owner, exists, err := ic.GetNFTOwner(t.asset, args[0])
	if err != nil {
		return nil, err
	}
	if !exists {
		return stackitem.Null{}, nil
	}
	return state.PrincipalItem(owner), nil
}

func (t *Tickets) getPrice(_ *interop.Context, _ []stackitem.Item) (stackitem.Item, error) {
	return uintItem(t.price), nil
}

func (t *Tickets) getUseByHeight(_ *interop.Context, _ []stackitem.Item) (stackitem.Item, error) {
	return stackitem.Make(uint64(t.useBy)), nil
}

func uintItem(u *uint256.Int) stackitem.Item {
	return stackitem.NewBigInteger(u.ToBig())
}

func toUint(item stackitem.Item) (*uint256.Int, error) {
	n, err := item.TryInteger()
	if err != nil {
		return nil, err
	}
	u, overflow := uint256.FromBig(n)
	if overflow || n.Sign() < 0 {
		return nil, errBadTokenID
	}
	return u, nil
}

func toUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}

// TokenID returns stack item for the ticket with the given number.
func TokenID(n uint64) stackitem.Item {
	return stackitem.Make(n)
}

// URI returns the expected token URI for the given ticket number.
func (t *Tickets) URI(n uint64) string {
	return t.baseURI + strconv.FormatUint(n, 10) + ".json"
}
