package chainstate

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/datastructures/blockstore"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/domain/consensus/processes/chainmutator"
	"github.com/ulordnet/ulordd/wire"
)

type fixedTimeSource struct {
	now time.Time
}

func (f fixedTimeSource) Now() time.Time {
	return f.now
}

// recordingMutator counts the calls to NotSettingChainHead.
type recordingMutator struct {
	model.ChainMutator
	notSettingChainHeadCalls int
}

func (rm *recordingMutator) NotSettingChainHead() error {
	rm.notSettingChainHeadCalls++
	return rm.ChainMutator.NotSettingChainHead()
}

// failingStore fails every write of the block with hash failHash.
type failingStore struct {
	model.BatchBlockStore
	failHash *chainhash.Hash
}

var errWriteFailed = errors.New("write failed")

func (fs *failingStore) Put(block *model.StoredBlock) error {
	if fs.failHash != nil && block.Hash().IsEqual(fs.failHash) {
		return errWriteFailed
	}
	return fs.BatchBlockStore.Put(block)
}

func (fs *failingStore) PutBatch(blocks []*model.StoredBlock, head *model.StoredBlock) error {
	for _, block := range blocks {
		if fs.failHash != nil && block.Hash().IsEqual(fs.failHash) {
			return errWriteFailed
		}
	}
	return fs.BatchBlockStore.PutBatch(blocks, head)
}

type testChain struct {
	t       *testing.T
	params  *chaincfg.Params
	store   model.BatchBlockStore
	mutator *recordingMutator
	cs      *ChainState
}

// newTestChain returns a chain state over an in-memory store holding the
// unit test genesis, with a clock one day after the genesis.
func newTestChain(t *testing.T, params *chaincfg.Params, fullBlocks bool) *testChain {
	return newTestChainOver(t, params, blockstore.NewMemoryStore(params), fullBlocks)
}

func newTestChainOver(t *testing.T, params *chaincfg.Params, store model.BatchBlockStore, fullBlocks bool) *testChain {
	var mutator model.ChainMutator
	if fullBlocks {
		mutator = chainmutator.NewFullMutator(store)
	} else {
		mutator = chainmutator.NewHeadersMutator(store)
	}
	recording := &recordingMutator{ChainMutator: mutator}

	timeSource := fixedTimeSource{now: params.GenesisBlock.Header.Timestamp.Add(24 * time.Hour)}
	cs, err := New(params, store, recording, timeSource)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	return &testChain{t: t, params: params, store: store, mutator: recording, cs: cs}
}

// coinbase returns a transaction whose hash depends on tag, so that blocks
// built on the same parent differ.
func coinbase(tag byte) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex), []byte{0x51, tag}))
	tx.AddTxOut(wire.NewTxOut(100000000, []byte{0x51}))
	return tx
}

// blockTemplate returns an unsolved child of parent carrying a coinbase
// with the given tag, 150 seconds after the parent and with the bits the
// chain requires.
func (tc *testChain) blockTemplate(parent *model.StoredBlock, version int32, tag byte) *wire.MsgBlock {
	timestamp := parent.Header().Timestamp.Add(150 * time.Second)
	bits, err := tc.cs.RequiredDifficulty(parent, timestamp)
	if err != nil {
		tc.t.Fatalf("RequiredDifficulty: %s", err)
	}

	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:   version,
		PrevBlock: *parent.Hash(),
		Timestamp: timestamp,
		Bits:      bits,
	})
	block.AddTransaction(coinbase(tag))
	block.Header.MerkleRoot = block.CalcMerkleRoot()
	return block
}

// buildBlock returns a solved child of parent together with its stored
// form.
func (tc *testChain) buildBlock(parent *model.StoredBlock, version int32, tag byte) (*wire.MsgBlock, *model.StoredBlock) {
	block := tc.blockTemplate(parent, version, tag)
	chaincfg.Solve(&block.Header)
	return block, parent.Build(block)
}

// submitChain builds count blocks on top of parent, submits them and
// returns their stored forms.
func (tc *testChain) submitChain(parent *model.StoredBlock, count int, version int32, tag byte) []*model.StoredBlock {
	var chain []*model.StoredBlock
	for i := 0; i < count; i++ {
		block, stored := tc.buildBlock(parent, version, tag)
		result, err := tc.cs.Submit(block)
		if err != nil {
			tc.t.Fatalf("Submit: %+v", err)
		}
		if result.Outcome != Accepted {
			tc.t.Fatalf("Submit: got outcome %s, want Accepted", result.Outcome)
		}
		chain = append(chain, stored)
		parent = stored
	}
	return chain
}

func (tc *testChain) genesis() *model.StoredBlock {
	return model.NewGenesisStoredBlock(tc.params.GenesisBlock)
}

func (tc *testChain) requireHead(testName string, expected *model.StoredBlock) {
	head := tc.cs.ChainHead()
	if !head.Hash().IsEqual(expected.Hash()) {
		tc.t.Fatalf("%s: got head %s, want %s", testName, head, expected)
	}
	if head.Height != expected.Height {
		tc.t.Fatalf("%s: got head height %d, want %d", testName, head.Height, expected.Height)
	}
}

// requireStoredHead checks that the store and the chain state agree on
// the head.
func (tc *testChain) requireStoredHead(testName string, expected *model.StoredBlock) {
	tc.requireHead(testName, expected)
	storedHead, err := tc.store.ChainHead()
	if err != nil {
		tc.t.Fatalf("%s: ChainHead: %s", testName, err)
	}
	if !storedHead.Hash().IsEqual(expected.Hash()) {
		tc.t.Fatalf("%s: got stored head %s, want %s", testName, storedHead, expected)
	}
}
