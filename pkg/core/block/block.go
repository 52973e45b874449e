package block

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/ticketsim/pkg/core/transaction"
)

// MaxTransactionsPerBlock is the upper bound for the number of transactions
// that can be decoded as a part of a single block.
const MaxTransactionsPerBlock = 0xffff

// ErrMaxContentsPerBlock is returned when too many transactions are in a block.
var ErrMaxContentsPerBlock = errors.New("too many transactions in block")

// Block represents one block in the chain.
type Block struct {
	// Index of the block, genesis is 0.
	Index uint32
	// Timestamp in milliseconds.
	Timestamp uint64
	// PrevHash is the hash of the previous block.
	PrevHash util.Uint256
	// MerkleRoot of the transaction hashes.
	MerkleRoot util.Uint256

	// Transaction list.
	Transactions []*transaction.Transaction

	hash   util.Uint256
	hashed bool
}

// New creates a block and computes its merkle root.
func New(index uint32, timestamp uint64, prev util.Uint256, txs []*transaction.Transaction) *Block {
	b := &Block{
		Index:        index,
		Timestamp:    timestamp,
		PrevHash:     prev,
		Transactions: txs,
	}
	b.RebuildMerkleRoot()
	return b
}

// RebuildMerkleRoot rebuilds the merkleroot of the block.
func (b *Block) RebuildMerkleRoot() {
	b.MerkleRoot = b.computeMerkleTree()
	b.hashed = false
}

func (b *Block) computeMerkleTree() util.Uint256 {
	if len(b.Transactions) == 0 {
		return util.Uint256{}
	}
	hashes := make([]util.Uint256, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash()
	}
	return hash.CalcMerkleRoot(hashes)
}

// Hash returns the hash of the block header.
func (b *Block) Hash() util.Uint256 {
	if !b.hashed {
		buf := io.NewBufBinWriter()
		b.encodeHeader(buf.BinWriter)
		b.hash = hash.Sha256(buf.Bytes())
		b.hashed = true
	}
	return b.hash
}

// Verify checks the integrity of the block.
func (b *Block) Verify() error {
	seen := make(map[util.Uint256]bool, len(b.Transactions))
	for _, tx := range b.Transactions {
		h := tx.Hash()
		if seen[h] {
			return fmt.Errorf("transaction %s is duplicated", h.StringLE())
		}
		seen[h] = true
	}
	if !b.MerkleRoot.Equals(b.computeMerkleTree()) {
		return errors.New("MerkleRoot mismatch")
	}
	return nil
}

func (b *Block) encodeHeader(w *io.BinWriter) {
	w.WriteU32LE(b.Index)
	w.WriteU64LE(b.Timestamp)
	b.PrevHash.EncodeBinary(w)
	b.MerkleRoot.EncodeBinary(w)
}

// EncodeBinary implements the io.Serializable interface.
func (b *Block) EncodeBinary(w *io.BinWriter) {
	b.encodeHeader(w)
	w.WriteVarUint(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		tx.EncodeBinary(w)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (b *Block) DecodeBinary(r *io.BinReader) {
	b.Index = r.ReadU32LE()
	b.Timestamp = r.ReadU64LE()
	b.PrevHash.DecodeBinary(r)
	b.MerkleRoot.DecodeBinary(r)
	n := r.ReadVarUint()
	if n > MaxTransactionsPerBlock {
		r.Err = ErrMaxContentsPerBlock
		return
	}
	b.Transactions = make([]*transaction.Transaction, 0, n)
	for i := uint64(0); i < n && r.Err == nil; i++ {
		tx := new(transaction.Transaction)
		tx.DecodeBinary(r)
		b.Transactions = append(b.Transactions, tx)
	}
	b.hashed = false
}
