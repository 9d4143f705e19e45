package chainstate

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/domain/consensus/model/pow"
	"github.com/ulordnet/ulordd/domain/consensus/ruleerrors"
	"github.com/ulordnet/ulordd/infrastructure/logger"
	"github.com/ulordnet/ulordd/wire"
)

// Submit tries to connect block to the chain. A block whose parent is
// unknown is kept as an orphan and reported as Deferred. A block that breaks
// a consensus rule is rejected with a RuleError, and a block store failure
// is returned as a StorageError.
func (cs *ChainState) Submit(block *wire.MsgBlock) (*AddResult, error) {
	return cs.submit(block, nil)
}

// SubmitFiltered is Submit for a block received as a filtered block. The
// block's transaction count feeds the false positive estimate once the
// block is accepted.
func (cs *ChainState) SubmitFiltered(filtered *wire.FilteredBlock) (*AddResult, error) {
	result, err := cs.submit(filtered.HeaderBlock(), filtered)
	if err != nil {
		return nil, err
	}
	if result.IsAccepted() {
		cs.trackFilteredTransactions(int(filtered.TotalTransactions))
	}
	return result, nil
}

func (cs *ChainState) submit(block *wire.MsgBlock, filtered *wire.FilteredBlock) (*AddResult, error) {
	cs.mutationLock.Lock()
	defer cs.mutationLock.Unlock()
	defer cs.publishChainHead()

	result, err := cs.add(block, filtered, true)
	if err != nil {
		cs.rollbackPendingChanges()
		if !ruleerrors.IsRuleError(err) {
			return nil, err
		}
		hash := block.BlockHash()
		cs.orphans.remove(&hash)
		return nil, errors.Wrapf(err, "could not verify block %s", hash)
	}
	return result, nil
}

// rollbackPendingChanges lets the mutator drop writes that will not be
// followed by a new chain head.
func (cs *ChainState) rollbackPendingChanges() {
	err := cs.mutator.NotSettingChainHead()
	if err != nil {
		log.Errorf("Failed to discard pending block store changes: %s", err)
	}
}

// add runs the submission contract for a single block. Orphans are only
// retried when tryConnecting is set, which keeps orphan connection from
// recursing.
func (cs *ChainState) add(block *wire.MsgBlock, filtered *wire.FilteredBlock, tryConnecting bool) (*AddResult, error) {
	hash := block.BlockHash()

	// Blocks are often resubmitted while orphans are connected. The head
	// check avoids an expensive split search for them.
	if hash.IsEqual(cs.workingHead.Hash()) {
		return accepted(), nil
	}
	if tryConnecting {
		if _, ok := cs.orphans.get(&hash); ok {
			// An orphan whose parent is known was left behind by a
			// failed orphan connection, and is connected now.
			storedPrev, err := cs.mutator.StoredBlockInCurrentScope(&block.Header.PrevBlock)
			if err != nil {
				return nil, ruleerrors.NewStorageError(err)
			}
			if storedPrev == nil {
				return deferred(), nil
			}
		}
	}

	if cs.mutator.ShouldVerifyTransactions() && !block.HasTransactions() {
		return nil, ruleerrors.Errorf(ruleerrors.ErrMalformedHeader,
			"got a block header while running in full-block mode")
	}

	existing, err := cs.blockStore.Get(&hash)
	if err != nil {
		return nil, ruleerrors.NewStorageError(err)
	}
	if existing != nil {
		cs.orphans.remove(&hash)
		return accepted(), nil
	}

	err = cs.checkBlockSanity(block)
	if err != nil {
		log.Errorf("Failed to verify block %s: %s", hash, err)
		return nil, err
	}

	storedPrev, err := cs.mutator.StoredBlockInCurrentScope(&block.Header.PrevBlock)
	if err != nil {
		return nil, ruleerrors.NewStorageError(err)
	}
	if storedPrev == nil {
		log.Warnf("Block does not connect: %s prev %s", hash, block.Header.PrevBlock)
		log.Tracef("Orphan header: %s", logger.NewLogClosure(func() string {
			return spew.Sdump(block.Header)
		}))
		cs.orphans.add(&hash, &orphanBlock{block: block, filtered: filtered})
		return deferred(), nil
	}

	err = cs.difficultyManager.Validate(storedPrev, &block.Header)
	if err != nil {
		return nil, storageErrorUnlessRuleError(err)
	}

	err = cs.connectBlock(block, filtered, storedPrev)
	if err != nil {
		return nil, err
	}
	cs.orphans.remove(&hash)

	result := accepted()
	if tryConnecting {
		cs.connectOrphans(result)
	}
	return result, nil
}

// checkBlockSanity checks what can be checked without the chain: the
// proof of work, the timestamp against the local clock and, for full
// blocks, the merkle root.
func (cs *ChainState) checkBlockSanity(block *wire.MsgBlock) error {
	header := &block.Header
	err := pow.CheckProofOfWork(header, cs.params.MaxTarget)
	if err != nil {
		return err
	}

	maxTimestamp := cs.timeSource.Now().Add(cs.params.MaxFutureBlockTime)
	if header.Timestamp.After(maxTimestamp) {
		return ruleerrors.Errorf(ruleerrors.ErrTimeTooNew,
			"block timestamp of %s is too far in the future, the maximum is %s",
			header.Timestamp, maxTimestamp)
	}

	if block.HasTransactions() {
		merkleRoot := block.CalcMerkleRoot()
		if !merkleRoot.IsEqual(&header.MerkleRoot) {
			return ruleerrors.Errorf(ruleerrors.ErrBadMerkleRoot,
				"block merkle root is invalid - block header indicates %s, but calculated value is %s",
				header.MerkleRoot, merkleRoot)
		}
	}
	return nil
}

func storageErrorUnlessRuleError(err error) error {
	if ruleerrors.IsRuleError(err) {
		return err
	}
	return ruleerrors.NewStorageError(err)
}
