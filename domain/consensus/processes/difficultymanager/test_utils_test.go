package difficultymanager

import (
	"math/big"
	"testing"
	"time"

	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/datastructures/blockstore"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/domain/consensus/processes/pastmediantimemanager"
	"github.com/ulordnet/ulordd/wire"
)

const testChainLength = 320

var testMaxTarget, _ = new(big.Int).SetString("000fffffff000000000000000000000000000000000000000000000000000000", 16)

// paramsWithAlgorithm returns unit test parameters running algorithm from
// genesis on, with a short legacy interval and the test network's maximum
// target.
func paramsWithAlgorithm(algorithm chaincfg.Algorithm) *chaincfg.Params {
	params := chaincfg.UnitTestParams()
	params.MaxTarget = testMaxTarget
	params.Interval = 10
	params.TargetTimespan = 1500
	params.DifficultySchedule = []chaincfg.ScheduleEntry{{ActivationHeight: 0, Algorithm: algorithm}}
	params.DifficultyTolerances = nil
	return params
}

func newTestDifficultyManager(params *chaincfg.Params, store model.BlockStore) *difficultyManager {
	return New(params, store, pastmediantimemanager.New(store)).(*difficultyManager)
}

// testChainBlock describes a block of a test chain by its offset in
// seconds from its parent and its bits.
type testChainBlock struct {
	timeDelta int64
	bits      uint32
}

// pseudoRandomChain returns a chain description with irregular block times,
// some of them going back in time, and bits varying within exponent 0x1e.
func pseudoRandomChain(length int) []testChainBlock {
	state := uint64(12345)
	next := func() uint64 {
		state = (state*1103515245 + 12345) % (1 << 31)
		return state
	}

	chain := make([]testChainBlock, length)
	for i := range chain {
		r := next()
		timeDelta := int64(20 + r%400)
		if r%17 == 0 {
			timeDelta = -40
		}
		mantissa := uint32(0x0a0000 + next()%0x40000)
		chain[i] = testChainBlock{timeDelta: timeDelta, bits: 0x1e<<24 | mantissa}
	}
	return chain
}

// buildTestChain stores the described blocks on top of the genesis of
// params and returns the whole chain, genesis included, indexed by height.
func buildTestChain(t *testing.T, params *chaincfg.Params, description []testChainBlock) (
	model.BatchBlockStore, []*model.StoredBlock) {

	store := blockstore.NewMemoryStore(params)
	genesis, err := store.ChainHead()
	if err != nil {
		t.Fatalf("ChainHead: %s", err)
	}

	chain := []*model.StoredBlock{genesis}
	for i, blockDescription := range description {
		parent := chain[len(chain)-1]
		block := &wire.MsgBlock{Header: wire.BlockHeader{
			Version:   1,
			PrevBlock: *parent.Hash(),
			Timestamp: parent.Header().Timestamp.Add(time.Duration(blockDescription.timeDelta) * time.Second),
			Bits:      blockDescription.bits,
			Nonce:     wire.Uint256FromUint64(uint64(i)),
		}}
		stored := parent.Build(block)
		err = store.Put(stored)
		if err != nil {
			t.Fatalf("Put: %s", err)
		}
		chain = append(chain, stored)
	}
	return store, chain
}

// nextHeader returns a header following storedPrev by the target spacing
// with the given bits.
func nextHeader(params *chaincfg.Params, storedPrev *model.StoredBlock, bits uint32) *wire.BlockHeader {
	return &wire.BlockHeader{
		Version:   1,
		PrevBlock: *storedPrev.Hash(),
		Timestamp: storedPrev.Header().Timestamp.Add(time.Duration(params.TargetSpacing) * time.Second),
		Bits:      bits,
	}
}

// regularChain describes length blocks found timeDelta seconds apart, all
// declaring bits.
func regularChain(length int, timeDelta int64, bits uint32) []testChainBlock {
	chain := make([]testChainBlock, length)
	for i := range chain {
		chain[i] = testChainBlock{timeDelta: timeDelta, bits: bits}
	}
	return chain
}
