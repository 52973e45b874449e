package dao

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/ticketsim/pkg/core/block"
	"github.com/nspcc-dev/ticketsim/pkg/core/state"
	"github.com/nspcc-dev/ticketsim/pkg/core/storage"
)

// ErrNoCurrentBlock is returned by GetCurrentBlock for an empty store.
var ErrNoCurrentBlock = errors.New("no current block in the store")

// Simple is memCached wrapper around DB, simple DAO implementation.
type Simple struct {
	Store *storage.MemCachedStore
}

// NewSimple creates new simple dao using provided backend store.
func NewSimple(backend storage.Store) *Simple {
	return &Simple{Store: storage.NewMemCachedStore(backend)}
}

// GetPrivate returns new DAO instance with another layer of wrapped
// MemCachedStore around the current DAO Store. Changes made to the private
// DAO are only visible to the parent after Persist.
func (dao *Simple) GetPrivate() *Simple {
	return NewSimple(dao.Store)
}

// Persist flushes all the changes made into the (supposedly) persistent
// underlying store.
func (dao *Simple) Persist() (int, error) {
	return dao.Store.Persist()
}

// GetAndDecode performs get operation and decoding with serializable structures.
func (dao *Simple) GetAndDecode(entity io.Serializable, key []byte) error {
	entityBytes, err := dao.Store.Get(key)
	if err != nil {
		return err
	}
	reader := io.NewBinReaderFromBuf(entityBytes)
	entity.DecodeBinary(reader)
	return reader.Err
}

// Put performs put operation with serializable structures.
func (dao *Simple) Put(entity io.Serializable, key []byte) error {
	buf := io.NewBufBinWriter()
	entity.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	dao.Store.Put(key, buf.Bytes())
	return nil
}

// -- start balances.

func makeBalanceKey(acc util.Uint160) []byte {
	k := make([]byte, util.Uint160Size+1)
	k[0] = byte(storage.STBalance)
	copy(k[1:], acc.BytesBE())
	return k
}

// GetSTXBalance returns STX balance of the principal, zero for unknown ones.
func (dao *Simple) GetSTXBalance(acc util.Uint160) (*uint256.Int, error) {
	b, err := dao.Store.Get(makeBalanceKey(acc))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

// PutSTXBalance saves STX balance of the principal, zero balances are removed.
func (dao *Simple) PutSTXBalance(acc util.Uint160, amount *uint256.Int) {
	key := makeBalanceKey(acc)
	if amount.IsZero() {
		dao.Store.Delete(key)
		return
	}
	dao.Store.Put(key, amount.Bytes())
}

// -- end balances.

// -- start contract storage.

func makeStorageItemKey(contract util.Uint160, key []byte) []byte {
	k := make([]byte, 1+util.Uint160Size+len(key))
	k[0] = byte(storage.STStorage)
	copy(k[1:], contract.BytesBE())
	copy(k[1+util.Uint160Size:], key)
	return k
}

// GetStorageItem returns contract storage value or nil if it's missing.
func (dao *Simple) GetStorageItem(contract util.Uint160, key []byte) []byte {
	b, err := dao.Store.Get(makeStorageItemKey(contract, key))
	if err != nil {
		return nil
	}
	return b
}

// PutStorageItem puts given value into contract storage.
func (dao *Simple) PutStorageItem(contract util.Uint160, key []byte, value []byte) {
	dao.Store.Put(makeStorageItemKey(contract, key), value)
}

// DeleteStorageItem drops contract storage item.
func (dao *Simple) DeleteStorageItem(contract util.Uint160, key []byte) {
	dao.Store.Delete(makeStorageItemKey(contract, key))
}

// GetUint returns unsigned integer stored by contract, zero if missing.
func (dao *Simple) GetUint(contract util.Uint160, key []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(dao.GetStorageItem(contract, key))
}

// PutUint stores unsigned integer in contract storage, zero values are
// removed.
func (dao *Simple) PutUint(contract util.Uint160, key []byte, v *uint256.Int) {
	if v.IsZero() {
		dao.DeleteStorageItem(contract, key)
		return
	}
	dao.PutStorageItem(contract, key, v.Bytes())
}

// -- end contract storage.

// -- start NFT ownership.

func makeNFTKey(asset string, id stackitem.Item) ([]byte, error) {
	idBytes, err := stackitem.Serialize(id)
	if err != nil {
		return nil, fmt.Errorf("bad token identifier: %w", err)
	}
	k := make([]byte, 0, 2+len(asset)+len(idBytes))
	k = append(k, byte(storage.STNFTOwner), byte(len(asset)))
	k = append(k, asset...)
	return append(k, idBytes...), nil
}

// GetNFTOwner returns the owner of the given token. storage.ErrKeyNotFound is
// returned for tokens that don't exist.
func (dao *Simple) GetNFTOwner(asset string, id stackitem.Item) (util.Uint160, error) {
	key, err := makeNFTKey(asset, id)
	if err != nil {
		return util.Uint160{}, err
	}
	b, err := dao.Store.Get(key)
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}

// PutNFTOwner sets the owner of the given token.
func (dao *Simple) PutNFTOwner(asset string, id stackitem.Item, owner util.Uint160) error {
	key, err := makeNFTKey(asset, id)
	if err != nil {
		return err
	}
	dao.Store.Put(key, owner.BytesBE())
	return nil
}

// -- end NFT ownership.

// -- start blocks and receipts.

func makeBlockKey(index uint32) []byte {
	k := make([]byte, 5)
	k[0] = byte(storage.DataBlock)
	binary.BigEndian.PutUint32(k[1:], index)
	return k
}

func makeReceiptKey(h util.Uint256) []byte {
	return append(storage.DataReceipt.Bytes(), h.BytesBE()...)
}

// GetBlock returns block by its index.
func (dao *Simple) GetBlock(index uint32) (*block.Block, error) {
	b := new(block.Block)
	if err := dao.GetAndDecode(b, makeBlockKey(index)); err != nil {
		return nil, err
	}
	return b, nil
}

// GetReceipt returns transaction receipt by transaction hash.
func (dao *Simple) GetReceipt(h util.Uint256) (*state.Receipt, error) {
	r := new(state.Receipt)
	if err := dao.GetAndDecode(r, makeReceiptKey(h)); err != nil {
		return nil, err
	}
	return r, nil
}

// StoreAsBlock stores given block with all of its transaction receipts.
func (dao *Simple) StoreAsBlock(b *block.Block, receipts []*state.Receipt) error {
	if err := dao.Put(b, makeBlockKey(b.Index)); err != nil {
		return fmt.Errorf("failed to store block %d: %w", b.Index, err)
	}
	for _, r := range receipts {
		if err := dao.Put(r, makeReceiptKey(r.TxHash)); err != nil {
			return fmt.Errorf("failed to store receipt %s: %w", r.TxHash.StringLE(), err)
		}
	}
	return nil
}

// StoreAsCurrentBlock stores the hash and index of the given block as the
// current chain tip.
func (dao *Simple) StoreAsCurrentBlock(b *block.Block) {
	buf := io.NewBufBinWriter()
	h := b.Hash()
	h.EncodeBinary(buf.BinWriter)
	buf.WriteU32LE(b.Index)
	dao.Store.Put(storage.SYSCurrentBlock.Bytes(), buf.Bytes())
}

// GetCurrentBlock returns the hash and index of the current chain tip.
func (dao *Simple) GetCurrentBlock() (util.Uint256, uint32, error) {
	b, err := dao.Store.Get(storage.SYSCurrentBlock.Bytes())
	if errors.Is(err, storage.ErrKeyNotFound) {
		return util.Uint256{}, 0, ErrNoCurrentBlock
	}
	if err != nil {
		return util.Uint256{}, 0, err
	}
	r := io.NewBinReaderFromBuf(b)
	var h util.Uint256
	h.DecodeBinary(r)
	index := r.ReadU32LE()
	return h, index, r.Err
}

// -- end blocks and receipts.

// GetVersion returns the version of the chain data format.
func (dao *Simple) GetVersion() (string, error) {
	b, err := dao.Store.Get(storage.SYSVersion.Bytes())
	return string(b), err
}

// PutVersion stores the version of the chain data format.
func (dao *Simple) PutVersion(v string) {
	dao.Store.Put(storage.SYSVersion.Bytes(), []byte(v))
}
