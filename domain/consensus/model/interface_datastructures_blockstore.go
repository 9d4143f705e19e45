package model

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ulordnet/ulordd/chaincfg"
)

// BlockStore represents a store of blocks keyed by hash, together with the
// head of the best chain
type BlockStore interface {
	// Get returns the block with the given hash, or nil and no error when
	// the store does not have it.
	Get(hash *chainhash.Hash) (*StoredBlock, error)
	Put(block *StoredBlock) error
	ChainHead() (*StoredBlock, error)
	SetChainHead(head *StoredBlock) error
	Params() *chaincfg.Params
	Close() error
}

// BatchBlockStore is a BlockStore able to write several blocks and a new
// head atomically
type BatchBlockStore interface {
	BlockStore
	PutBatch(blocks []*StoredBlock, head *StoredBlock) error
}
