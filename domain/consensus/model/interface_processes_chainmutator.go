package model

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ulordnet/ulordd/wire"
)

// ChainMutator decides how connected blocks reach the block store. Every
// mutation of the chain ends with exactly one call to either DoSetChainHead
// or NotSettingChainHead.
type ChainMutator interface {
	// AddToBlockStore builds the stored form of block on top of storedPrev
	// and records it.
	AddToBlockStore(storedPrev *StoredBlock, block *wire.MsgBlock) (*StoredBlock, error)

	// DoSetChainHead commits the pending writes and records head as the
	// head of the best chain.
	DoSetChainHead(head *StoredBlock) error

	// NotSettingChainHead abandons the pending writes.
	NotSettingChainHead() error

	// StoredBlockInCurrentScope returns the block with the given hash as
	// seen by the mutator, including pending writes.
	StoredBlockInCurrentScope(hash *chainhash.Hash) (*StoredBlock, error)

	// ShouldVerifyTransactions reports whether submitted blocks must
	// carry their transactions and have them checked.
	ShouldVerifyTransactions() bool

	// RollbackBlockStore moves the chain head back to the given height.
	RollbackBlockStore(height int32) error
}
