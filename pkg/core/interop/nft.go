package interop

import (
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
	"github.com/nspcc-dev/ticketsim/pkg/core/storage"
)

// GetNFTOwner returns the owner of the token, false is returned for tokens
// that don't exist.
func (ic *Context) GetNFTOwner(asset string, id stackitem.Item) (util.Uint160, bool, error) {
	owner, err := ic.DAO.GetNFTOwner(asset, id)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return util.Uint160{}, false, nil
	}
	if err != nil {
		return util.Uint160{}, false, err
	}
	return owner, true, nil
}

// MintNFT creates a new token owned by recipient and emits NFT mint event.
func (ic *Context) MintNFT(asset string, id stackitem.Item, recipient util.Uint160) error {
	_, exists, err := ic.GetNFTOwner(asset, id)
	if err != nil {
		return err
	}
	if exists {
		return ErrNFTAlreadyExists
	}
	if err := ic.DAO.PutNFTOwner(asset, id, recipient); err != nil {
		return err
	}
	ic.AddEvent(state.NewNFTMintEvent(asset, id, recipient))
	return nil
}

// TransferNFT changes the owner of the token and emits NFT transfer event.
func (ic *Context) TransferNFT(asset string, id stackitem.Item, from, to util.Uint160) error {
	if from.Equals(to) {
		return ErrNFTSamePrincipal
	}
	owner, exists, err := ic.GetNFTOwner(asset, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNFTNotFound
	}
	if !owner.Equals(from) {
		return ErrNFTNotOwner
	}
	if err := ic.DAO.PutNFTOwner(asset, id, to); err != nil {
		return err
	}
	ic.AddEvent(state.NewNFTTransferEvent(asset, id, from, to))
	return nil
}
