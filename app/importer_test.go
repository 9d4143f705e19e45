package app

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/datastructures/blockstore"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/domain/consensus/processes/chainmutator"
	"github.com/ulordnet/ulordd/domain/consensus/processes/chainstate"
	"github.com/ulordnet/ulordd/wire"
)

func newTestChainState(t *testing.T, params *chaincfg.Params, headersOnly bool) *chainstate.ChainState {
	store := blockstore.NewMemoryStore(params)
	var mutator model.ChainMutator
	if headersOnly {
		mutator = chainmutator.NewHeadersMutator(store)
	} else {
		mutator = chainmutator.NewFullMutator(store)
	}
	cs, err := chainstate.New(params, store, mutator, nil)
	if err != nil {
		t.Fatalf("chainstate.New: %s", err)
	}
	return cs
}

func TestImport(t *testing.T) {
	params := chaincfg.UnitTestParams()
	blocks := mineTestBlocks(t, params, 6)

	badHeader := blocks[4].Header
	badHeader.Bits--
	bad := wire.NewMsgBlock(&badHeader)
	bad.AddTransaction(coinbase(0xff))
	bad.Header.MerkleRoot = bad.CalcMerkleRoot()
	chaincfg.Solve(&bad.Header)

	var buf bytes.Buffer
	writeMessages(t, &buf, params.Net, blocks[0], blocks[1], blocks[3], blocks[2])
	writeMessages(t, &buf, wire.MainNet, blocks[4])
	writeMessages(t, &buf, params.Net, headersMessage(t, blocks[4], blocks[5]), bad, blocks[4], blocks[5])

	cs := newTestChainState(t, params, false)
	stats, err := NewImporter(cs, params.Net).Import(context.Background(), &buf)
	if err != nil {
		t.Fatalf("TestImport: Import: %+v", err)
	}

	expected := ImportStats{
		Messages:  8,
		Skipped:   1,
		Accepted:  5,
		Deferred:  1,
		Rejected:  3,
		Connected: 1,
	}
	if *stats != expected {
		t.Fatalf("TestImport: got stats %+v, want %+v", *stats, expected)
	}

	head := cs.ChainHead()
	expectedHash := blocks[5].BlockHash()
	if !head.Hash().IsEqual(&expectedHash) || head.Height != 6 {
		t.Fatalf("TestImport: got head %s, want %s at height 6", head, expectedHash)
	}
	if cs.OrphanCount() != 0 {
		t.Fatalf("TestImport: got %d orphans, want none", cs.OrphanCount())
	}
}

func TestImportHeaders(t *testing.T) {
	params := chaincfg.UnitTestParams()
	blocks := mineTestBlocks(t, params, 4)

	var buf bytes.Buffer
	writeMessages(t, &buf, params.Net, headersMessage(t, blocks[0], blocks[1], blocks[2]), blocks[3])

	cs := newTestChainState(t, params, true)
	stats, err := NewImporter(cs, params.Net).Import(context.Background(), &buf)
	if err != nil {
		t.Fatalf("TestImportHeaders: Import: %+v", err)
	}
	if stats.Messages != 2 || stats.Accepted != 4 || stats.Rejected != 0 {
		t.Fatalf("TestImportHeaders: unexpected stats %+v", *stats)
	}
	if cs.BestChainHeight() != 4 {
		t.Fatalf("TestImportHeaders: got height %d, want 4", cs.BestChainHeight())
	}
}

func TestImportTruncated(t *testing.T) {
	params := chaincfg.UnitTestParams()
	blocks := mineTestBlocks(t, params, 2)

	var buf bytes.Buffer
	writeMessages(t, &buf, params.Net, blocks[0], blocks[1])
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-10])

	cs := newTestChainState(t, params, false)
	_, err := NewImporter(cs, params.Net).Import(context.Background(), truncated)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("TestImportTruncated: got error %v, want %v", err, io.ErrUnexpectedEOF)
	}
}

func TestImportCancelled(t *testing.T) {
	params := chaincfg.UnitTestParams()
	blocks := mineTestBlocks(t, params, 1)

	var buf bytes.Buffer
	writeMessages(t, &buf, params.Net, blocks[0])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cs := newTestChainState(t, params, false)
	stats, err := NewImporter(cs, params.Net).Import(ctx, &buf)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("TestImportCancelled: got error %v, want %v", err, context.Canceled)
	}
	if stats.Accepted != 0 {
		t.Fatalf("TestImportCancelled: a block was submitted after cancellation")
	}
}

type failingSubmitter struct {
	err error
}

func (fs failingSubmitter) Submit(*wire.MsgBlock) (*chainstate.AddResult, error) {
	return nil, fs.err
}

func TestImportStopsOnStorageError(t *testing.T) {
	params := chaincfg.UnitTestParams()
	blocks := mineTestBlocks(t, params, 3)

	var buf bytes.Buffer
	writeMessages(t, &buf, params.Net, blocks[0], blocks[1], blocks[2])

	storageErr := errors.New("disk is full")
	stats, err := NewImporter(failingSubmitter{err: storageErr}, params.Net).Import(context.Background(), &buf)
	if !errors.Is(err, storageErr) {
		t.Fatalf("TestImportStopsOnStorageError: got error %v, want %v", err, storageErr)
	}
	if stats.Rejected != 0 {
		t.Fatalf("TestImportStopsOnStorageError: a storage error was counted as a rejection")
	}
}

// orphanFailingSubmitter accepts every block, but reports that connecting
// orphans failed.
type orphanFailingSubmitter struct {
	err error
}

func (ofs orphanFailingSubmitter) Submit(*wire.MsgBlock) (*chainstate.AddResult, error) {
	return &chainstate.AddResult{Outcome: chainstate.Accepted, OrphanStorageError: ofs.err}, nil
}

func TestImportStopsOnOrphanStorageError(t *testing.T) {
	params := chaincfg.UnitTestParams()
	blocks := mineTestBlocks(t, params, 3)

	var buf bytes.Buffer
	writeMessages(t, &buf, params.Net, blocks[0], blocks[1], blocks[2])

	storageErr := errors.New("disk is full")
	stats, err := NewImporter(orphanFailingSubmitter{err: storageErr}, params.Net).Import(context.Background(), &buf)
	if !errors.Is(err, storageErr) {
		t.Fatalf("TestImportStopsOnOrphanStorageError: got error %v, want %v", err, storageErr)
	}
	if stats.Accepted != 1 {
		t.Fatalf("TestImportStopsOnOrphanStorageError: got %d accepted blocks, want 1", stats.Accepted)
	}
}
