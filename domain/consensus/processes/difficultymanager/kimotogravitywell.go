package difficultymanager

import (
	"math"
	"math/big"

	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/util/difficulty"
)

const (
	kgwPastSecondsMin = 24 * 60 * 60 / 40
	kgwPastSecondsMax = 24 * 60 * 60 * 7

	// Past this height the actual time span of the well is at least five
	// seconds, which slows down upward difficulty changes.
	kgwTimeFloorHeight  = 646120
	kgwTimeFloorSeconds = 5
)

// kimotoGravityWell averages past targets until the rate at which they were
// found leaves the event horizon, a band around the target rate that
// narrows as more blocks are taken into account.
func (dm *difficultyManager) kimotoGravityWell(storedPrev *model.StoredBlock) (*expectation, error) {
	spacing := dm.params.TargetSpacing
	pastBlocksMin := kgwPastSecondsMin / spacing
	pastBlocksMax := kgwPastSecondsMax / spacing

	// Short chains are held to the maximum target alone, the well is not
	// also run over them.
	if storedPrev.Height == 0 || int64(storedPrev.Height) < pastBlocksMin {
		return calculatedTarget(dm.params.MaxTarget), nil
	}

	lastSolvedTime := storedPrev.Header().Timestamp.Unix()
	var pastBlocksMass, pastRateActualSeconds, pastRateTargetSeconds int64
	pastDifficultyAverage := new(big.Int)
	pastDifficultyAveragePrev := new(big.Int)

	reading := storedPrev
	for i := int64(1); reading != nil && reading.Height > 0; i++ {
		if pastBlocksMax > 0 && i > pastBlocksMax {
			break
		}
		pastBlocksMass++

		readingTarget := difficulty.CompactToBig(reading.Header().Bits)
		if i == 1 {
			pastDifficultyAverage = readingTarget
		} else {
			pastDifficultyAverage = new(big.Int).Sub(readingTarget, pastDifficultyAveragePrev)
			pastDifficultyAverage.Quo(pastDifficultyAverage, big.NewInt(i))
			pastDifficultyAverage.Add(pastDifficultyAverage, pastDifficultyAveragePrev)
		}
		pastDifficultyAveragePrev = pastDifficultyAverage

		pastRateActualSeconds = lastSolvedTime - reading.Header().Timestamp.Unix()
		pastRateTargetSeconds = spacing * pastBlocksMass
		if reading.Height > kgwTimeFloorHeight {
			if pastRateActualSeconds < kgwTimeFloorSeconds {
				pastRateActualSeconds = kgwTimeFloorSeconds
			}
		} else if pastRateActualSeconds < 0 {
			pastRateActualSeconds = 0
		}

		pastRateAdjustmentRatio := 1.0
		if pastRateActualSeconds != 0 && pastRateTargetSeconds != 0 {
			pastRateAdjustmentRatio = float64(pastRateTargetSeconds) / float64(pastRateActualSeconds)
		}
		eventHorizonDeviation := 1 + 0.7084*math.Pow(float64(pastBlocksMass)/28.2, -1.228)
		eventHorizonDeviationFast := eventHorizonDeviation
		eventHorizonDeviationSlow := 1 / eventHorizonDeviation

		if pastBlocksMass >= pastBlocksMin &&
			(pastRateAdjustmentRatio <= eventHorizonDeviationSlow ||
				pastRateAdjustmentRatio >= eventHorizonDeviationFast) {
			break
		}

		prev, err := reading.Prev(dm.blockStore)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			// Stores started from a checkpoint don't have enough blocks
			// for the well yet.
			log.Debugf("Skipping difficulty check after %s: ancestor %s is missing",
				storedPrev.Hash(), reading.Header().PrevBlock)
			return anything(), nil
		}
		reading = prev
	}

	newTarget := new(big.Int).Set(pastDifficultyAverage)
	if pastRateActualSeconds != 0 && pastRateTargetSeconds != 0 {
		newTarget.Mul(newTarget, big.NewInt(pastRateActualSeconds))
		newTarget.Quo(newTarget, big.NewInt(pastRateTargetSeconds))
	}
	return calculatedTarget(newTarget), nil
}
