package chainstate

import (
	"fmt"
	"strings"

	"github.com/ulordnet/ulordd/domain/consensus/datastructures/versiontally"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/domain/consensus/ruleerrors"
	"github.com/ulordnet/ulordd/infrastructure/logger"
	"github.com/ulordnet/ulordd/wire"
)

const (
	blockVersionBIP34 = 2
	blockVersionBIP66 = 3
)

// connectBlock adds block, whose parent storedPrev is known, either on top
// of the best chain, as the head of a new best chain, or to a side branch.
func (cs *ChainState) connectBlock(block *wire.MsgBlock, filtered *wire.FilteredBlock,
	storedPrev *model.StoredBlock) error {

	height := storedPrev.Height + 1
	hash := block.BlockHash()
	if !cs.params.PassesCheckpoint(height, &hash) {
		return ruleerrors.Errorf(ruleerrors.ErrCheckpointViolation,
			"block %s failed checkpoint lockin at %d", hash, height)
	}
	if cs.mutator.ShouldVerifyTransactions() {
		for _, tx := range block.Transactions {
			if !tx.IsFinal(height, block.Header.Timestamp.Unix()) {
				return ruleerrors.Errorf(ruleerrors.ErrNonFinalTransaction,
					"block %s contains unfinalized transaction %s", hash, tx.TxHash())
			}
		}
	}

	head := cs.workingHead
	if storedPrev.Hash().IsEqual(head.Hash()) {
		return cs.extendChainHead(block, filtered, storedPrev)
	}

	newBlock := storedPrev.Build(block)
	if newBlock.MoreWorkThan(head) {
		log.Infof("Block %s is causing a re-organize", hash)
		return cs.reorganize(block, storedPrev, newBlock, head)
	}
	return cs.addToSideBranch(block, storedPrev, newBlock, head)
}

func (cs *ChainState) extendChainHead(block *wire.MsgBlock, filtered *wire.FilteredBlock,
	storedPrev *model.StoredBlock) error {

	if filtered != nil && len(filtered.AssociatedTransactions) > 0 {
		log.Debugf("Block %s connects to top of best chain with %d transaction(s) of which we were sent %d",
			block.BlockHash(), len(filtered.MatchedHashes), len(filtered.AssociatedTransactions))
		for _, matched := range filtered.MatchedHashes {
			log.Tracef("  matched tx %s", matched)
		}
	}

	if cs.mutator.ShouldVerifyTransactions() {
		medianTime, err := cs.pastMedianTimeManager.PastMedianTime(storedPrev)
		if err != nil {
			return ruleerrors.NewStorageError(err)
		}
		if !block.Header.Timestamp.After(medianTime) {
			return ruleerrors.Errorf(ruleerrors.ErrTimeTooOld,
				"block timestamp of %s is not after expected %s", block.Header.Timestamp, medianTime)
		}
	}

	version := block.Header.Version
	if version == blockVersionBIP34 || version == blockVersionBIP66 {
		count, ok := cs.versionTally.CountAtOrAbove(version + 1)
		if ok && count >= cs.params.MajorityRejectBlockOutdated {
			return ruleerrors.Errorf(ruleerrors.ErrVersionOutdated,
				"block version %d is out of date: %d of the last %d blocks have a newer version",
				version, count, cs.params.MajorityWindow)
		}
	}

	newStored, err := cs.mutator.AddToBlockStore(storedPrev, block)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}
	err = cs.setChainHead(newStored)
	if err != nil {
		return err
	}
	cs.versionTally.Add(version)
	log.Debugf("Chain is now %d blocks high", newStored.Height)
	return nil
}

// reorganize makes newBlock, the stored form of block, the head of the
// best chain in place of head.
func (cs *ChainState) reorganize(block *wire.MsgBlock, storedPrev, newBlock, head *model.StoredBlock) error {
	splitPoint, err := FindSplit(newBlock, head, cs.blockStore)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}
	if splitPoint == nil {
		return ruleerrors.Errorf(ruleerrors.ErrForkPointNotFound,
			"block %s causes a re-organize but no split point was found", newBlock.Hash())
	}

	log.Infof("Re-organize after split at height %d", splitPoint.Height)
	log.Infof("Old chain head: %s", head.Hash())
	log.Infof("New chain head: %s", newBlock.Hash())
	log.Infof("Split at block: %s", splitPoint.Hash())

	oldBlocks, err := partialChain(head, splitPoint, cs.blockStore)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}
	newBlocks, err := partialChain(newBlock, splitPoint, cs.blockStore)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}
	log.Debugf("%s", logger.NewLogClosure(func() string {
		return fmt.Sprintf("Disconnecting %d blocks:\n%s\nConnecting %d blocks:\n%s",
			len(oldBlocks), describeBlocks(oldBlocks), len(newBlocks), describeBlocks(newBlocks))
	}))

	// Versions of the abandoned branch must not count towards the
	// majority rules.
	versionTally := versiontally.New(cs.params.MajorityWindow)
	err = versionTally.Initialize(cs.blockStore, storedPrev)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}

	newStored, err := cs.mutator.AddToBlockStore(storedPrev, block)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}
	err = cs.setChainHead(newStored)
	if err != nil {
		return err
	}
	versionTally.Add(block.Header.Version)
	cs.versionTally = versionTally
	return nil
}

// addToSideBranch stores block without moving the chain head.
func (cs *ChainState) addToSideBranch(block *wire.MsgBlock, storedPrev, newBlock, head *model.StoredBlock) error {
	splitPoint, err := FindSplit(newBlock, head, cs.blockStore)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}
	if splitPoint == nil {
		return ruleerrors.Errorf(ruleerrors.ErrForkPointNotFound,
			"block %s forks the chain but no split point was found", newBlock.Hash())
	}
	if splitPoint.Hash().IsEqual(newBlock.Hash()) {
		log.Warnf("Saw duplicated block in main chain at height %d: %s", newBlock.Height, newBlock.Hash())
		return nil
	}

	_, err = cs.mutator.AddToBlockStore(storedPrev, block)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}
	err = cs.mutator.DoSetChainHead(head)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}
	log.Infof("Block %s forks the chain at height %d/block %s, but it did not cause a reorganize",
		newBlock.Hash(), splitPoint.Height, splitPoint.Hash())
	return nil
}

func describeBlocks(blocks []*model.StoredBlock) string {
	descriptions := make([]string, len(blocks))
	for i, block := range blocks {
		descriptions[i] = "  " + block.String()
	}
	return strings.Join(descriptions, "\n")
}
