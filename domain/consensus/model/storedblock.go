package model

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ulordnet/ulordd/util/difficulty"
	"github.com/ulordnet/ulordd/wire"
)

// StoredBlock is a block as kept by a BlockStore: the block itself, which
// may be header-only, its height and the total work of the chain ending in
// it.
type StoredBlock struct {
	Block     *wire.MsgBlock
	Height    int32
	ChainWork *big.Int
}

// NewStoredBlock returns a StoredBlock for the given block.
func NewStoredBlock(block *wire.MsgBlock, height int32, chainWork *big.Int) *StoredBlock {
	return &StoredBlock{Block: block, Height: height, ChainWork: chainWork}
}

// NewGenesisStoredBlock returns the stored form of a genesis block.
func NewGenesisStoredBlock(genesis *wire.MsgBlock) *StoredBlock {
	return NewStoredBlock(genesis, 0, difficulty.CalcWork(genesis.Header.Bits))
}

// Header returns the header of the stored block.
func (sb *StoredBlock) Header() *wire.BlockHeader {
	return &sb.Block.Header
}

// Hash returns the block hash.
func (sb *StoredBlock) Hash() *chainhash.Hash {
	hash := sb.Block.BlockHash()
	return &hash
}

// Build returns the StoredBlock of block, a child of sb. Its height is one
// more than sb's and its chain work adds the work of block's target.
func (sb *StoredBlock) Build(block *wire.MsgBlock) *StoredBlock {
	chainWork := new(big.Int).Add(sb.ChainWork, difficulty.CalcWork(block.Header.Bits))
	return NewStoredBlock(block, sb.Height+1, chainWork)
}

// MoreWorkThan reports whether the chain ending in sb has strictly more
// work than the one ending in other.
func (sb *StoredBlock) MoreWorkThan(other *StoredBlock) bool {
	return sb.ChainWork.Cmp(other.ChainWork) > 0
}

// Prev returns the parent of sb from store, or nil if the store does not
// have it.
func (sb *StoredBlock) Prev(store BlockStore) (*StoredBlock, error) {
	return store.Get(&sb.Block.Header.PrevBlock)
}

func (sb *StoredBlock) String() string {
	return fmt.Sprintf("block %s at height %d, chain work %s", sb.Hash(), sb.Height, sb.ChainWork)
}
