package versiontally

import (
	"testing"
	"time"

	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/datastructures/blockstore"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/wire"
)

func TestVersionTally(t *testing.T) {
	tally := New(4)
	for i := 0; i < 3; i++ {
		tally.Add(2)
		if _, ok := tally.CountAtOrAbove(2); ok {
			t.Fatalf("TestVersionTally: count available with %d of 4 versions", i+1)
		}
	}
	tally.Add(3)

	tests := []struct {
		version       int32
		expectedCount int
	}{
		{version: 1, expectedCount: 4},
		{version: 2, expectedCount: 4},
		{version: 3, expectedCount: 1},
		{version: 4, expectedCount: 0},
	}
	for _, test := range tests {
		count, ok := tally.CountAtOrAbove(test.version)
		if !ok || count != test.expectedCount {
			t.Fatalf("TestVersionTally: CountAtOrAbove(%d) got (%d, %t), want (%d, true)",
				test.version, count, ok, test.expectedCount)
		}
	}

	// The window slides: three more version 4 blocks evict all but the
	// version 3 one.
	for i := 0; i < 3; i++ {
		tally.Add(4)
	}
	count, _ := tally.CountAtOrAbove(3)
	if count != 4 {
		t.Fatalf("TestVersionTally: after sliding got %d blocks at or above 3, want 4", count)
	}
	count, _ = tally.CountAtOrAbove(4)
	if count != 3 {
		t.Fatalf("TestVersionTally: after sliding got %d blocks at or above 4, want 3", count)
	}

	tally.Reset()
	if _, ok := tally.CountAtOrAbove(1); ok {
		t.Fatalf("TestVersionTally: count available after Reset")
	}
}

func TestInitialize(t *testing.T) {
	params := chaincfg.UnitTestParams()
	store := blockstore.NewMemoryStore(params)
	head, err := store.ChainHead()
	if err != nil {
		t.Fatalf("TestInitialize: ChainHead: %s", err)
	}

	// Genesis has version 1, followed by 2, 3, 4, 5, 6.
	for version := int32(2); version <= 6; version++ {
		block := &wire.MsgBlock{Header: wire.BlockHeader{
			Version:   version,
			PrevBlock: *head.Hash(),
			Timestamp: head.Header().Timestamp.Add(time.Minute),
			Bits:      head.Header().Bits,
		}}
		head = head.Build(block)
		err = store.Put(head)
		if err != nil {
			t.Fatalf("TestInitialize: Put: %s", err)
		}
	}

	tally := New(3)
	err = tally.Initialize(store, head)
	if err != nil {
		t.Fatalf("TestInitialize: Initialize: %s", err)
	}
	count, ok := tally.CountAtOrAbove(4)
	if !ok || count != 3 {
		t.Fatalf("TestInitialize: got (%d, %t) blocks at or above 4, want (3, true)", count, ok)
	}

	// The oldest version must be the next one evicted.
	tally.Add(7)
	count, _ = tally.CountAtOrAbove(5)
	if count != 3 {
		t.Fatalf("TestInitialize: got %d blocks at or above 5 after Add, want 3", count)
	}

	// A chain shorter than the window leaves the tally incomplete.
	short := New(10)
	err = short.Initialize(store, head)
	if err != nil {
		t.Fatalf("TestInitialize: Initialize: %s", err)
	}
	if _, ok := short.CountAtOrAbove(1); ok {
		t.Fatalf("TestInitialize: a 6 block chain filled a window of 10")
	}

	genesis := model.NewGenesisStoredBlock(params.GenesisBlock)
	one := New(1)
	err = one.Initialize(store, genesis)
	if err != nil {
		t.Fatalf("TestInitialize: Initialize: %s", err)
	}
	count, ok = one.CountAtOrAbove(1)
	if !ok || count != 1 {
		t.Fatalf("TestInitialize: genesis window got (%d, %t), want (1, true)", count, ok)
	}
}
