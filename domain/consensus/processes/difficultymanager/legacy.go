package difficultymanager

import (
	"math/big"
	"time"

	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/domain/consensus/ruleerrors"
	"github.com/ulordnet/ulordd/infrastructure/logger"
	"github.com/ulordnet/ulordd/util/difficulty"
)

// legacy retargets once every Interval blocks, scaling the previous target
// by how long the last interval took.
func (dm *difficultyManager) legacy(storedPrev *model.StoredBlock, timestamp time.Time,
	declaredBits uint32) (*expectation, error) {

	prevHeader := storedPrev.Header()
	if !dm.params.IsTransitionPoint(storedPrev.Height + 1) {
		if dm.params.ReduceMinDifficulty {
			return dm.reducedMinDifficulty(storedPrev, timestamp, declaredBits)
		}
		return exactBits(prevHeader.Bits), nil
	}

	// The first retarget spans the Interval-1 blocks after genesis. Later
	// ones reach back a full Interval, into the previous period.
	blocksToGoBack := dm.params.Interval
	if storedPrev.Height+1 == dm.params.Interval {
		blocksToGoBack = dm.params.Interval - 1
	}

	onEnd := logger.LogAndMeasureExecutionTime(log, "legacy difficulty transition traversal")
	cursor := storedPrev
	for i := int32(0); i < blocksToGoBack; i++ {
		var err error
		cursor, err = cursor.Prev(dm.blockStore)
		if err != nil {
			return nil, err
		}
		if cursor == nil {
			break
		}
	}
	onEnd()
	if cursor == nil {
		return nil, ruleerrors.Errorf(ruleerrors.ErrDifficultyMismatch,
			"difficulty transition point at height %d but we did not find a way back "+
				"to the genesis block", storedPrev.Height+1)
	}

	timespan := prevHeader.Timestamp.Unix() - cursor.Header().Timestamp.Unix()
	targetTimespan := dm.params.TargetTimespan
	if timespan < targetTimespan/4 {
		timespan = targetTimespan / 4
	}
	if timespan > targetTimespan*4 {
		timespan = targetTimespan * 4
	}

	newTarget := difficulty.CompactToBig(prevHeader.Bits)
	newTarget.Mul(newTarget, big.NewInt(timespan))
	newTarget.Quo(newTarget, big.NewInt(targetTimespan))
	return calculatedTarget(newTarget), nil
}

// reducedMinDifficulty applies the test network exception: a block arriving
// more than twice the target spacing after its parent may declare the
// maximum target. Any other block must declare the target of the last
// block that isn't such a minimum difficulty block.
func (dm *difficultyManager) reducedMinDifficulty(storedPrev *model.StoredBlock, timestamp time.Time,
	declaredBits uint32) (*expectation, error) {

	maxTargetBits := difficulty.BigToCompact(dm.params.MaxTarget)
	timeDelta := timestamp.Unix() - storedPrev.Header().Timestamp.Unix()
	if timeDelta > dm.params.TargetSpacing*2 && declaredBits == maxTargetBits {
		return exactBits(maxTargetBits), nil
	}

	cursor := storedPrev
	for cursor.Height != 0 && !dm.params.IsTransitionPoint(cursor.Height) &&
		cursor.Header().Bits == maxTargetBits {

		prev, err := cursor.Prev(dm.blockStore)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			return nil, ruleerrors.Errorf(ruleerrors.ErrDifficultyMismatch,
				"block %s at height %d has no parent to take the difficulty from",
				cursor.Hash(), cursor.Height)
		}
		cursor = prev
	}
	return exactBits(cursor.Header().Bits), nil
}
