package difficultymanager

import (
	"math/big"

	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/util/difficulty"
)

// averagingWindow averages the targets of the last AveragingWindow blocks
// and scales the average by the damped span of their median times.
func (dm *difficultyManager) averagingWindow(storedPrev *model.StoredBlock) (*expectation, error) {
	windowSize := dm.params.AveragingWindow
	unchanged := exactBits(storedPrev.Header().Bits)
	if storedPrev.Height < windowSize {
		return unchanged, nil
	}

	targetSum := new(big.Int)
	cursor := storedPrev
	for i := int32(0); i < windowSize; i++ {
		if cursor == nil {
			return unchanged, nil
		}
		targetSum.Add(targetSum, difficulty.CompactToBig(cursor.Header().Bits))
		var err error
		cursor, err = cursor.Prev(dm.blockStore)
		if err != nil {
			return nil, err
		}
	}
	// cursor is now the last block before the window.
	if cursor == nil {
		return unchanged, nil
	}
	averageTarget := targetSum.Quo(targetSum, big.NewInt(int64(windowSize)))

	lastMedianTime, err := dm.pastMedianTimeManager.PastMedianTime(storedPrev)
	if err != nil {
		return nil, err
	}
	firstMedianTime, err := dm.pastMedianTimeManager.PastMedianTime(cursor)
	if err != nil {
		return nil, err
	}
	actualTimespan := lastMedianTime.Unix() - firstMedianTime.Unix()

	windowTimespan := dm.params.AveragingWindowTimespan()
	dampedTimespan := windowTimespan + (actualTimespan-windowTimespan)/4
	if dampedTimespan < dm.params.MinActualTimespan() {
		dampedTimespan = dm.params.MinActualTimespan()
	}
	if dampedTimespan > dm.params.MaxActualTimespan() {
		dampedTimespan = dm.params.MaxActualTimespan()
	}

	newTarget := new(big.Int).Mul(averageTarget, big.NewInt(dampedTimespan))
	newTarget.Quo(newTarget, big.NewInt(windowTimespan))
	return calculatedTarget(newTarget), nil
}
