package chainmutator

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/wire"
)

// fullMutator keeps blocks with their transactions. Blocks added to it are
// staged in memory until the caller either commits them together with a
// chain head or discards them.
type fullMutator struct {
	blockStore model.BlockStore
	staging    map[chainhash.Hash]*model.StoredBlock
	stagedList []*model.StoredBlock
}

// NewFullMutator instantiates a ChainMutator that verifies transactions.
// When blockStore is a BatchBlockStore, staged blocks and the new head are
// written in a single batch.
func NewFullMutator(blockStore model.BlockStore) model.ChainMutator {
	return &fullMutator{
		blockStore: blockStore,
		staging:    make(map[chainhash.Hash]*model.StoredBlock),
	}
}

func (fm *fullMutator) AddToBlockStore(storedPrev *model.StoredBlock, block *wire.MsgBlock) (*model.StoredBlock, error) {
	stored := storedPrev.Build(block)
	hash := stored.Hash()
	if _, ok := fm.staging[*hash]; !ok {
		fm.stagedList = append(fm.stagedList, stored)
	}
	fm.staging[*hash] = stored
	return stored, nil
}

// DoSetChainHead writes every staged block and records head as the chain
// head.
func (fm *fullMutator) DoSetChainHead(head *model.StoredBlock) error {
	defer fm.discardStaging()

	log.Tracef("Committing %d staged blocks with head %s", len(fm.stagedList), head.Hash())
	if batchStore, ok := fm.blockStore.(model.BatchBlockStore); ok {
		return batchStore.PutBatch(fm.stagedList, head)
	}

	for _, stored := range fm.stagedList {
		err := fm.blockStore.Put(stored)
		if err != nil {
			return err
		}
	}
	return fm.blockStore.SetChainHead(head)
}

func (fm *fullMutator) NotSettingChainHead() error {
	if len(fm.stagedList) > 0 {
		log.Debugf("Discarding %d staged blocks", len(fm.stagedList))
	}
	fm.discardStaging()
	return nil
}

func (fm *fullMutator) discardStaging() {
	fm.staging = make(map[chainhash.Hash]*model.StoredBlock)
	fm.stagedList = nil
}

// StoredBlockInCurrentScope looks the block up among the staged blocks
// first, and then in the block store.
func (fm *fullMutator) StoredBlockInCurrentScope(hash *chainhash.Hash) (*model.StoredBlock, error) {
	if stored, ok := fm.staging[*hash]; ok {
		return stored, nil
	}
	return fm.blockStore.Get(hash)
}

func (fm *fullMutator) ShouldVerifyTransactions() bool {
	return true
}

func (fm *fullMutator) RollbackBlockStore(height int32) error {
	return errors.Errorf("rolling back to height %d is not supported for full blocks", height)
}
