package difficultymanager

import (
	"math/big"

	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/util/difficulty"
)

const (
	dgw1PastBlocksMin = 14
	dgw1PastBlocksMax = 140
	dgw3PastBlocks    = 24
)

// darkGravityWaveV1 averages the targets of the last 14 blocks and scales
// the result by a blend of the recent and the long term block times.
func (dm *difficultyManager) darkGravityWaveV1(storedPrev *model.StoredBlock) (*expectation, error) {
	// Short chains are held to the maximum target alone, without also
	// averaging over them.
	if storedPrev.Height == 0 || storedPrev.Height < dgw1PastBlocksMin {
		return calculatedTarget(dm.params.MaxTarget), nil
	}

	var countBlocks, lastBlockTime int64
	var blockTimeAverage, blockTimeAveragePrev, blockTimeCount int64
	var blockTimeSum2, blockTimeCount2 int64
	pastDifficultyAverage := new(big.Int)
	pastDifficultyAveragePrev := new(big.Int)

	reading := storedPrev
	for i := 1; reading != nil && reading.Height > 0; i++ {
		if i > dgw1PastBlocksMax {
			break
		}
		countBlocks++

		if countBlocks <= dgw1PastBlocksMin {
			readingTarget := difficulty.CompactToBig(reading.Header().Bits)
			if countBlocks == 1 {
				pastDifficultyAverage = readingTarget
			} else {
				pastDifficultyAverage = new(big.Int).Sub(readingTarget, pastDifficultyAveragePrev)
				pastDifficultyAverage.Quo(pastDifficultyAverage, big.NewInt(countBlocks))
				pastDifficultyAverage.Add(pastDifficultyAverage, pastDifficultyAveragePrev)
			}
			pastDifficultyAveragePrev = pastDifficultyAverage
		}

		readingTime := reading.Header().Timestamp.Unix()
		if lastBlockTime > 0 {
			diff := lastBlockTime - readingTime
			if blockTimeCount <= dgw1PastBlocksMin {
				blockTimeCount++
				if blockTimeCount == 1 {
					blockTimeAverage = diff
				} else {
					blockTimeAverage = (diff-blockTimeAveragePrev)/blockTimeCount + blockTimeAveragePrev
				}
				blockTimeAveragePrev = blockTimeAverage
			}
			blockTimeCount2++
			blockTimeSum2 += diff
		}
		lastBlockTime = readingTime

		prev, err := reading.Prev(dm.blockStore)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			log.Debugf("Skipping difficulty check after %s: ancestor %s is missing",
				storedPrev.Hash(), reading.Header().PrevBlock)
			return anything(), nil
		}
		reading = prev
	}

	newTarget := new(big.Int).Set(pastDifficultyAverage)
	if blockTimeCount != 0 && blockTimeCount2 != 0 {
		spacing := float64(dm.params.TargetSpacing)
		smartAverage := float64(blockTimeAverage)*0.7 + (float64(blockTimeSum2)/float64(blockTimeCount2))*0.3
		if smartAverage < 1 {
			smartAverage = 1
		}
		shift := spacing / smartAverage

		actualTimespan := float64(countBlocks) * spacing / shift
		targetTimespan := float64(countBlocks) * spacing
		if actualTimespan < targetTimespan/3 {
			actualTimespan = targetTimespan / 3
		}
		if actualTimespan > targetTimespan*3 {
			actualTimespan = targetTimespan * 3
		}

		newTarget.Mul(newTarget, big.NewInt(int64(actualTimespan)))
		newTarget.Quo(newTarget, big.NewInt(int64(targetTimespan)))
	}
	return calculatedTarget(newTarget), nil
}

// darkGravityWaveV3 averages the targets of the last 24 blocks and scales
// the result by the time those blocks took, within a factor of three of the
// target.
func (dm *difficultyManager) darkGravityWaveV3(storedPrev *model.StoredBlock) (*expectation, error) {
	// Short chains are held to the maximum target alone, without also
	// averaging over them.
	if storedPrev.Height == 0 || storedPrev.Height < dgw3PastBlocks {
		return calculatedTarget(dm.params.MaxTarget), nil
	}

	var countBlocks, lastBlockTime, actualTimespan int64
	pastDifficultyAverage := new(big.Int)
	pastDifficultyAveragePrev := new(big.Int)

	reading := storedPrev
	for i := 1; reading != nil && reading.Height > 0; i++ {
		if i > dgw3PastBlocks {
			break
		}
		countBlocks++

		readingTarget := difficulty.CompactToBig(reading.Header().Bits)
		if countBlocks == 1 {
			pastDifficultyAverage = readingTarget
		} else {
			pastDifficultyAverage = new(big.Int).Mul(pastDifficultyAveragePrev, big.NewInt(countBlocks))
			pastDifficultyAverage.Add(pastDifficultyAverage, readingTarget)
			pastDifficultyAverage.Quo(pastDifficultyAverage, big.NewInt(countBlocks+1))
		}
		pastDifficultyAveragePrev = pastDifficultyAverage

		readingTime := reading.Header().Timestamp.Unix()
		if lastBlockTime > 0 {
			actualTimespan += lastBlockTime - readingTime
		}
		lastBlockTime = readingTime

		prev, err := reading.Prev(dm.blockStore)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			log.Debugf("Skipping difficulty check after %s: ancestor %s is missing",
				storedPrev.Hash(), reading.Header().PrevBlock)
			return anything(), nil
		}
		reading = prev
	}

	targetTimespan := countBlocks * dm.params.TargetSpacing
	if actualTimespan < targetTimespan/3 {
		actualTimespan = targetTimespan / 3
	}
	if actualTimespan > targetTimespan*3 {
		actualTimespan = targetTimespan * 3
	}

	newTarget := new(big.Int).Mul(pastDifficultyAverage, big.NewInt(actualTimespan))
	newTarget.Quo(newTarget, big.NewInt(targetTimespan))
	return calculatedTarget(newTarget), nil
}
