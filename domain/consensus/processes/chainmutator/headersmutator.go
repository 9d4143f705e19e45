package chainmutator

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/wire"
)

// headersMutator keeps headers only. Every write goes straight to the block
// store, so there is nothing to commit or discard.
type headersMutator struct {
	blockStore model.BlockStore
}

// NewHeadersMutator instantiates a ChainMutator for a headers-only chain.
func NewHeadersMutator(blockStore model.BlockStore) model.ChainMutator {
	return &headersMutator{blockStore: blockStore}
}

func (hm *headersMutator) AddToBlockStore(storedPrev *model.StoredBlock, block *wire.MsgBlock) (*model.StoredBlock, error) {
	stored := storedPrev.Build(block.CloneAsHeader())
	err := hm.blockStore.Put(stored)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (hm *headersMutator) DoSetChainHead(head *model.StoredBlock) error {
	return hm.blockStore.SetChainHead(head)
}

func (hm *headersMutator) NotSettingChainHead() error {
	return nil
}

func (hm *headersMutator) StoredBlockInCurrentScope(hash *chainhash.Hash) (*model.StoredBlock, error) {
	return hm.blockStore.Get(hash)
}

func (hm *headersMutator) ShouldVerifyTransactions() bool {
	return false
}

// RollbackBlockStore moves the chain head back to its ancestor at height.
// Blocks above height stay in the store.
func (hm *headersMutator) RollbackBlockStore(height int32) error {
	head, err := hm.blockStore.ChainHead()
	if err != nil {
		return err
	}
	if height > head.Height || height < 0 {
		return errors.Errorf("cannot roll back to height %d, the chain head is at height %d",
			height, head.Height)
	}

	log.Infof("Rolling back the chain head from height %d to %d", head.Height, height)
	cursor := head
	for cursor.Height > height {
		prev, err := cursor.Prev(hm.blockStore)
		if err != nil {
			return err
		}
		if prev == nil {
			return errors.Errorf("block %s at height %d has no parent in the block store",
				cursor.Hash(), cursor.Height)
		}
		cursor = prev
	}
	return hm.blockStore.SetChainHead(cursor)
}
