package chainstate

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ulordnet/ulordd/domain/consensus/ruleerrors"
	"github.com/ulordnet/ulordd/wire"
)

// DrainOrphans removes every orphan and returns their hashes in the order
// they were received.
func (cs *ChainState) DrainOrphans() []*chainhash.Hash {
	cs.mutationLock.Lock()
	defer cs.mutationLock.Unlock()

	hashes := cs.orphans.hashes()
	cs.orphans.clear()

	drained := make([]*chainhash.Hash, len(hashes))
	for i := range hashes {
		drained[i] = &hashes[i]
	}
	log.Debugf("Drained %d orphans", len(drained))
	return drained
}

// IsOrphan returns whether the block with the given hash is waiting for
// its parent.
func (cs *ChainState) IsOrphan(hash *chainhash.Hash) bool {
	cs.mutationLock.Lock()
	defer cs.mutationLock.Unlock()

	_, ok := cs.orphans.get(hash)
	return ok
}

// OrphanCount returns the number of orphans waiting for their parent.
func (cs *ChainState) OrphanCount() int {
	cs.mutationLock.Lock()
	defer cs.mutationLock.Unlock()

	return cs.orphans.len()
}

// OrphanRoot follows the parents of the orphan with the given hash through
// the orphan pool and returns the oldest orphan it reaches. It returns nil
// if hash is not an orphan.
func (cs *ChainState) OrphanRoot(hash *chainhash.Hash) *wire.MsgBlock {
	cs.mutationLock.Lock()
	defer cs.mutationLock.Unlock()

	cursor, ok := cs.orphans.get(hash)
	if !ok {
		return nil
	}
	for {
		parent, ok := cs.orphans.get(&cursor.block.Header.PrevBlock)
		if !ok {
			return cursor.block
		}
		cursor = parent
	}
}

// connectOrphans connects every orphan whose parent is now known, in
// rounds, until a round connects nothing. Orphans that break a rule are
// dropped. A block store failure stops the rounds and is reported in
// result. The orphan that hit it stays in the pool.
func (cs *ChainState) connectOrphans(result *AddResult) {
	for {
		connectedThisRound := 0
		for _, hash := range cs.orphans.hashes() {
			hash := hash
			orphan, ok := cs.orphans.get(&hash)
			if !ok {
				continue
			}
			storedPrev, err := cs.mutator.StoredBlockInCurrentScope(&orphan.block.Header.PrevBlock)
			if err != nil {
				cs.stopConnectingOrphans(result, &hash, ruleerrors.NewStorageError(err))
				return
			}
			if storedPrev == nil {
				log.Tracef("Orphan block %s is not connectable right now", hash)
				continue
			}

			_, err = cs.add(orphan.block, orphan.filtered, false)
			if err != nil {
				cs.rollbackPendingChanges()
				if !ruleerrors.IsRuleError(err) {
					cs.stopConnectingOrphans(result, &hash, err)
					return
				}
				log.Warnf("Dropping orphan block %s: %s", hash, err)
				cs.orphans.remove(&hash)
				continue
			}

			log.Debugf("Connected orphan %s", hash)
			result.ConnectedOrphans = append(result.ConnectedOrphans, orphan.block)
			if orphan.filtered != nil {
				result.ConnectedFilteredOrphans = append(result.ConnectedFilteredOrphans, orphan.filtered)
			}
			connectedThisRound++
		}
		if connectedThisRound == 0 {
			return
		}
		log.Infof("Connected %d orphan blocks", connectedThisRound)
	}
}

func (cs *ChainState) stopConnectingOrphans(result *AddResult, hash *chainhash.Hash, err error) {
	log.Errorf("Stopped connecting orphans at %s: %s", hash, err)
	result.OrphanStorageError = err
}
