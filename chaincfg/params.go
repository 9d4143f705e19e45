// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/wire"
)

// These variables are the proof-of-work limit parameters for each default
// network.
var (
	mainMaxTarget, _     = new(big.Int).SetString("000009b173000000000000000000000000000000000000000000000000000000", 16)
	testNetMaxTarget, _  = new(big.Int).SetString("000fffffff000000000000000000000000000000000000000000000000000000", 16)
	regTestMaxTarget, _  = new(big.Int).SetString("0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f", 16)
	unitTestMaxTarget, _ = new(big.Int).SetString("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 16)
)

const (
	targetTimespan         = 24 * 60 * 60 // one day per difficulty cycle
	targetSpacing          = 150          // 2.5 minutes per block
	interval               = targetTimespan / targetSpacing
	powAveragingWindow     = 17
	powMaxAdjustDown       = 32
	powMaxAdjustUp         = 48
	maxFutureBlockTime     = 2 * time.Hour
	unitTestGenesisBits    = 0x207fffff
	unitTestTimespan       = 200000000
	unitTestInterval       = 10
	lastRatioToleranceMain = 68589
)

// Algorithm identifies a difficulty adjustment algorithm.
type Algorithm int

// Difficulty adjustment algorithms.
const (
	// AlgorithmLegacy is the bitcoin retarget every Interval blocks.
	AlgorithmLegacy Algorithm = iota

	// AlgorithmAveragingWindow averages the targets of the last
	// AveragingWindow blocks and damps the median time span.
	AlgorithmAveragingWindow

	// AlgorithmKimotoGravityWell is Kimoto Gravity Well.
	AlgorithmKimotoGravityWell

	// AlgorithmDarkGravityWaveV1 is the first Dark Gravity Wave.
	AlgorithmDarkGravityWaveV1

	// AlgorithmDarkGravityWaveV3 is Dark Gravity Wave v3.
	AlgorithmDarkGravityWaveV3

	// AlgorithmDisabled accepts any declared target.
	AlgorithmDisabled
)

var algorithmStrings = map[Algorithm]string{
	AlgorithmLegacy:            "Legacy",
	AlgorithmAveragingWindow:   "AveragingWindow",
	AlgorithmKimotoGravityWell: "KimotoGravityWell",
	AlgorithmDarkGravityWaveV1: "DarkGravityWaveV1",
	AlgorithmDarkGravityWaveV3: "DarkGravityWaveV3",
	AlgorithmDisabled:          "Disabled",
}

func (a Algorithm) String() string {
	if s, ok := algorithmStrings[a]; ok {
		return s
	}
	return "Unknown"
}

// ScheduleEntry activates Algorithm from ActivationHeight on, until the
// next entry of the schedule.
type ScheduleEntry struct {
	ActivationHeight int32
	Algorithm        Algorithm
}

// ToleranceKind selects how a calculated target is compared with the one a
// block declares.
type ToleranceKind int

// Tolerance kinds.
const (
	// ToleranceExact requires both targets to be equal.
	ToleranceExact ToleranceKind = iota

	// ToleranceRatio accepts a declared difficulty within Ratio of the
	// calculated one.
	ToleranceRatio

	// ToleranceUnchecked accepts any declared target.
	ToleranceUnchecked
)

// ToleranceRule applies Kind to blocks with heights in [FromHeight,
// ToHeight].
type ToleranceRule struct {
	FromHeight int32
	ToHeight   int32
	Kind       ToleranceKind
	Ratio      float64
}

// Checkpoint identifies a known good point in the block chain.
type Checkpoint struct {
	Height int32
	Hash   *chainhash.Hash
}

// Params defines a ulord network by its parameters. Values are built by the
// network constructors and never modified afterwards.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.UlordNet

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *wire.MsgBlock

	// GenesisHash is the starting block hash.
	GenesisHash *chainhash.Hash

	// MaxTarget defines the easiest target a block may declare.
	MaxTarget *big.Int

	// Interval is the number of blocks between legacy retargets.
	Interval int32

	// TargetTimespan is the desired time between legacy retargets, in
	// seconds.
	TargetTimespan int64

	// TargetSpacing is the desired time between blocks, in seconds.
	TargetSpacing int64

	// ReduceMinDifficulty allows blocks arriving long after their parent
	// to declare MaxTarget under the legacy algorithm.
	ReduceMinDifficulty bool

	// AveragingWindow is the number of blocks whose targets the averaging
	// window algorithm averages.
	AveragingWindow int32

	// MaxAdjustUp and MaxAdjustDown bound, in percent, how far the
	// averaging window timespan may move.
	MaxAdjustUp   int64
	MaxAdjustDown int64

	// MaxFutureBlockTime is how far ahead of the local clock a block
	// timestamp may be.
	MaxFutureBlockTime time.Duration

	// MajorityWindow is the number of recent block versions counted by the
	// version majority rules.
	MajorityWindow int

	// MajorityRejectBlockOutdated is the number of blocks of a newer
	// version within MajorityWindow above which older versions are
	// rejected.
	MajorityRejectBlockOutdated int

	// MajorityEnforceBlockUpgrade is the number of blocks of a newer
	// version within MajorityWindow above which the newer rules apply.
	MajorityEnforceBlockUpgrade int

	// Checkpoints ordered from oldest to newest.
	Checkpoints []Checkpoint

	// DifficultySchedule lists the difficulty algorithms ordered by
	// activation height. The first entry activates at height 0.
	DifficultySchedule []ScheduleEntry

	// DifficultyTolerances lists the comparison rules used when verifying
	// a declared target. Heights not covered by any rule are compared
	// exactly.
	DifficultyTolerances []ToleranceRule
}

// AlgorithmAt returns the difficulty algorithm active at the given height.
func (p *Params) AlgorithmAt(height int32) Algorithm {
	algorithm := AlgorithmLegacy
	for _, entry := range p.DifficultySchedule {
		if entry.ActivationHeight > height {
			break
		}
		algorithm = entry.Algorithm
	}
	return algorithm
}

// ToleranceAt returns the tolerance rule covering the given height.
func (p *Params) ToleranceAt(height int32) ToleranceRule {
	for _, rule := range p.DifficultyTolerances {
		if height >= rule.FromHeight && height <= rule.ToHeight {
			return rule
		}
	}
	return ToleranceRule{FromHeight: height, ToHeight: height, Kind: ToleranceExact}
}

// IsTransitionPoint reports whether a legacy retarget happens at height.
func (p *Params) IsTransitionPoint(height int32) bool {
	return height%p.Interval == 0
}

// AveragingWindowTimespan is the expected duration of an averaging window,
// in seconds.
func (p *Params) AveragingWindowTimespan() int64 {
	return int64(p.AveragingWindow) * p.TargetSpacing
}

// MinActualTimespan is the smallest damped timespan the averaging window
// algorithm uses.
func (p *Params) MinActualTimespan() int64 {
	return p.AveragingWindowTimespan() * (100 - p.MaxAdjustUp) / 100
}

// MaxActualTimespan is the largest damped timespan the averaging window
// algorithm uses.
func (p *Params) MaxActualTimespan() int64 {
	return p.AveragingWindowTimespan() * (100 + p.MaxAdjustDown) / 100
}

// CheckpointHash returns the checkpointed hash at height, if any.
func (p *Params) CheckpointHash(height int32) (*chainhash.Hash, bool) {
	for _, checkpoint := range p.Checkpoints {
		if checkpoint.Height == height {
			return checkpoint.Hash, true
		}
	}
	return nil, false
}

// PassesCheckpoint reports whether a block with the given hash may sit at
// height. Heights without a checkpoint always pass.
func (p *Params) PassesCheckpoint(height int32, hash *chainhash.Hash) bool {
	checkpointHash, ok := p.CheckpointHash(height)
	return !ok || checkpointHash.IsEqual(hash)
}

func newParams(name string, net wire.UlordNet, port string, genesis *wire.MsgBlock, maxTarget *big.Int) *Params {
	genesisHash := genesis.BlockHash()
	return &Params{
		Name:                        name,
		Net:                         net,
		DefaultPort:                 port,
		GenesisBlock:                genesis,
		GenesisHash:                 &genesisHash,
		MaxTarget:                   new(big.Int).Set(maxTarget),
		Interval:                    interval,
		TargetTimespan:              targetTimespan,
		TargetSpacing:               targetSpacing,
		AveragingWindow:             powAveragingWindow,
		MaxAdjustUp:                 powMaxAdjustUp,
		MaxAdjustDown:               powMaxAdjustDown,
		MaxFutureBlockTime:          maxFutureBlockTime,
		MajorityWindow:              100,
		MajorityRejectBlockOutdated: 75,
		MajorityEnforceBlockUpgrade: 51,
	}
}

// MainNetParams returns the parameters of the main network.
func MainNetParams() *Params {
	params := newParams("mainnet", wire.MainNet, "9888", mainGenesisBlock(), mainMaxTarget)
	params.MajorityWindow = 1000
	params.MajorityRejectBlockOutdated = 950
	params.MajorityEnforceBlockUpgrade = 750
	params.Checkpoints = []Checkpoint{
		{91722, newHashFromStr("00000000000271a2dc26e7667f8419f2e15416dc6955e5a6c6cdf3f2574dd08e")},
		{91812, newHashFromStr("00000000000af0aed4792b1acee3d966af36cf5def14935db8de83d6f9306f2f")},
		{91842, newHashFromStr("00000000000a4d0a398161ffc163c503763b1f4360639393e0e4c8e300e0caec")},
		{91880, newHashFromStr("00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721")},
		{200000, newHashFromStr("000000000000034a7dedef4a161fa058a2d67a173a90155f3a2fe6fc132e0ebf")},
	}
	params.DifficultySchedule = []ScheduleEntry{
		{0, AlgorithmLegacy},
		{15200, AlgorithmKimotoGravityWell},
		{34140, AlgorithmDarkGravityWaveV1},
		{68589, AlgorithmDarkGravityWaveV3},
	}
	params.DifficultyTolerances = []ToleranceRule{
		{FromHeight: 0, ToHeight: lastRatioToleranceMain, Kind: ToleranceRatio, Ratio: 0.2},
		{FromHeight: lastRatioToleranceMain + 1, ToHeight: math.MaxInt32, Kind: ToleranceExact},
	}
	return params
}

// TestNetParams returns the parameters of the test network.
func TestNetParams() *Params {
	params := newParams("testnet", wire.TestNet, "19888", testNetGenesisBlock(), testNetMaxTarget)
	params.ReduceMinDifficulty = true
	params.DifficultySchedule = []ScheduleEntry{
		{0, AlgorithmLegacy},
		{4001, AlgorithmDarkGravityWaveV3},
	}
	params.DifficultyTolerances = []ToleranceRule{
		{FromHeight: 0, ToHeight: 4000, Kind: ToleranceExact},
		{FromHeight: 4001, ToHeight: math.MaxInt32, Kind: ToleranceUnchecked},
	}
	return params
}

// RegressionNetParams returns the parameters of the regression test
// network. Difficulty is not verified there.
func RegressionNetParams() *Params {
	params := newParams("regtest", wire.RegTest, "29888", regTestGenesisBlock(), regTestMaxTarget)
	params.Interval = math.MaxInt32
	params.MaxAdjustUp = 0
	params.MaxAdjustDown = 0
	params.DifficultySchedule = []ScheduleEntry{{0, AlgorithmDisabled}}
	return params
}

// DevNetParams returns the parameters of the development network, which
// uses the averaging window algorithm from its genesis on.
func DevNetParams() *Params {
	params := newParams("devnet", wire.DevNet, "39888", testNetGenesisBlock(), testNetMaxTarget)
	params.ReduceMinDifficulty = true
	params.DifficultySchedule = []ScheduleEntry{{0, AlgorithmAveragingWindow}}
	return params
}

// UnitTestParams returns parameters meant for tests: an easy solved genesis
// block, a short retarget interval and small majority thresholds.
func UnitTestParams() *Params {
	params := newParams("unittest", wire.UnitTest, "19888", unitTestGenesisBlock(), unitTestMaxTarget)
	params.Interval = unitTestInterval
	params.TargetTimespan = unitTestTimespan
	params.MajorityWindow = 7
	params.MajorityRejectBlockOutdated = 4
	params.MajorityEnforceBlockUpgrade = 3
	params.DifficultySchedule = []ScheduleEntry{{0, AlgorithmLegacy}}
	return params
}

// ErrUnknownNetwork describes an error where the requested network name
// does not belong to any known network.
var ErrUnknownNetwork = errors.New("unknown network")

// ParamsForName returns the parameters of the network with the given name.
func ParamsForName(name string) (*Params, error) {
	switch name {
	case "mainnet":
		return MainNetParams(), nil
	case "testnet":
		return TestNetParams(), nil
	case "regtest":
		return RegressionNetParams(), nil
	case "devnet":
		return DevNetParams(), nil
	case "unittest":
		return UnitTestParams(), nil
	}
	return nil, errors.Wrapf(ErrUnknownNetwork, "network %q", name)
}
