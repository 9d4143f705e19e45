package difficultymanager

import (
	"math"
	"math/big"
	"time"

	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/domain/consensus/ruleerrors"
	"github.com/ulordnet/ulordd/util/difficulty"
	"github.com/ulordnet/ulordd/wire"
)

type expectationKind int

const (
	// expectAnything accepts any declared bits.
	expectAnything expectationKind = iota

	// expectBits requires the declared bits to equal the expected bits.
	expectBits

	// expectTarget compares the declared bits with a calculated target
	// through verifyDifficulty.
	expectTarget
)

// expectation is what a difficulty algorithm requires from the bits of the
// block following storedPrev.
type expectation struct {
	kind   expectationKind
	bits   uint32
	target *big.Int
}

func anything() *expectation {
	return &expectation{kind: expectAnything}
}

func exactBits(bits uint32) *expectation {
	return &expectation{kind: expectBits, bits: bits}
}

func calculatedTarget(target *big.Int) *expectation {
	return &expectation{kind: expectTarget, target: target}
}

// difficultyManager checks the proof of work target of blocks with the
// algorithm the network schedules for their height
type difficultyManager struct {
	params                *chaincfg.Params
	blockStore            model.BlockStore
	pastMedianTimeManager model.PastMedianTimeManager
}

// New instantiates a new DifficultyManager
func New(params *chaincfg.Params, blockStore model.BlockStore,
	pastMedianTimeManager model.PastMedianTimeManager) model.DifficultyManager {

	return &difficultyManager{
		params:                params,
		blockStore:            blockStore,
		pastMedianTimeManager: pastMedianTimeManager,
	}
}

// Validate returns an ErrDifficultyMismatch rule error when the bits of next
// are not what the chain ending in storedPrev requires.
func (dm *difficultyManager) Validate(storedPrev *model.StoredBlock, next *wire.BlockHeader) error {
	required, err := dm.expectationFor(storedPrev, next.Timestamp, next.Bits)
	if err != nil {
		return err
	}

	switch required.kind {
	case expectAnything:
		return nil
	case expectBits:
		if next.Bits != required.bits {
			return ruleerrors.Errorf(ruleerrors.ErrDifficultyMismatch,
				"unexpected difficulty at height %d: %08x vs %08x",
				storedPrev.Height+1, next.Bits, required.bits)
		}
		return nil
	default:
		return dm.verifyDifficulty(required.target, storedPrev, next)
	}
}

// RequiredDifficulty returns the bits a block built on storedPrev with the
// given timestamp must declare.
func (dm *difficultyManager) RequiredDifficulty(storedPrev *model.StoredBlock, timestamp time.Time) (uint32, error) {
	maxTargetBits := difficulty.BigToCompact(dm.params.MaxTarget)
	required, err := dm.expectationFor(storedPrev, timestamp, maxTargetBits)
	if err != nil {
		return 0, err
	}

	switch required.kind {
	case expectAnything:
		return storedPrev.Header().Bits, nil
	case expectBits:
		return required.bits, nil
	default:
		return difficulty.BigToCompact(dm.clampToMaxTarget(required.target)), nil
	}
}

// expectationFor runs the algorithm active at the height following
// storedPrev. declaredBits only matters to the legacy minimum difficulty
// exception.
func (dm *difficultyManager) expectationFor(storedPrev *model.StoredBlock,
	timestamp time.Time, declaredBits uint32) (*expectation, error) {

	height := storedPrev.Height + 1
	algorithm := dm.params.AlgorithmAt(height)
	log.Tracef("Checking difficulty at height %d with %s", height, algorithm)

	switch algorithm {
	case chaincfg.AlgorithmLegacy:
		return dm.legacy(storedPrev, timestamp, declaredBits)
	case chaincfg.AlgorithmAveragingWindow:
		return dm.averagingWindow(storedPrev)
	case chaincfg.AlgorithmKimotoGravityWell:
		return dm.kimotoGravityWell(storedPrev)
	case chaincfg.AlgorithmDarkGravityWaveV1:
		return dm.darkGravityWaveV1(storedPrev)
	case chaincfg.AlgorithmDarkGravityWaveV3:
		return dm.darkGravityWaveV3(storedPrev)
	default:
		return anything(), nil
	}
}

func (dm *difficultyManager) clampToMaxTarget(target *big.Int) *big.Int {
	if target.Cmp(dm.params.MaxTarget) > 0 {
		log.Debugf("Difficulty hit proof of work limit: %064x", target)
		return dm.params.MaxTarget
	}
	return target
}

// verifyDifficulty compares a calculated target with the bits declared by
// next, after dropping the precision those bits can not express. How close
// they must be depends on the tolerance rule covering the height of next.
func (dm *difficultyManager) verifyDifficulty(calculated *big.Int, storedPrev *model.StoredBlock,
	next *wire.BlockHeader) error {

	calculated = difficulty.ReducePrecision(dm.clampToMaxTarget(calculated), next.Bits)
	height := storedPrev.Height + 1

	rule := dm.params.ToleranceAt(height)
	switch rule.Kind {
	case chaincfg.ToleranceUnchecked:
		return nil

	case chaincfg.ToleranceRatio:
		calculatedDifficulty := difficulty.ConvertBitsToDouble(difficulty.TruncateToCompact(calculated, next.Bits))
		declaredDifficulty := difficulty.ConvertBitsToDouble(next.Bits)
		if math.Abs(calculatedDifficulty-declaredDifficulty) > calculatedDifficulty*rule.Ratio {
			return ruleerrors.Errorf(ruleerrors.ErrDifficultyMismatch,
				"network provided difficulty bits do not match what was calculated "+
					"at height %d: %064x vs %064x (difficulty %f vs %f)", height,
				difficulty.CompactToBig(next.Bits), calculated, declaredDifficulty, calculatedDifficulty)
		}
		return nil

	default:
		declared := difficulty.CompactToBig(next.Bits)
		if calculated.Cmp(declared) != 0 {
			return ruleerrors.Errorf(ruleerrors.ErrDifficultyMismatch,
				"network provided difficulty bits do not match what was calculated "+
					"at height %d: %064x vs %064x", height, declared, calculated)
		}
		return nil
	}
}
