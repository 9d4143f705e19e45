package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/datastructures/blockstore"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/domain/consensus/processes/chainmutator"
	"github.com/ulordnet/ulordd/domain/consensus/processes/chainstate"
	"github.com/ulordnet/ulordd/wire"
)

func coinbase(tag byte) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex), []byte{0x51, tag}))
	tx.AddTxOut(wire.NewTxOut(100000000, []byte{0x51}))
	return tx
}

// mineTestBlocks returns count solved blocks extending the unit test
// genesis, 150 seconds apart. A private chain state provides the required
// difficulty of each block.
func mineTestBlocks(t *testing.T, params *chaincfg.Params, count int) []*wire.MsgBlock {
	store := blockstore.NewMemoryStore(params)
	miner, err := chainstate.New(params, store, chainmutator.NewFullMutator(store), nil)
	if err != nil {
		t.Fatalf("mineTestBlocks: chainstate.New: %s", err)
	}

	parent := model.NewGenesisStoredBlock(params.GenesisBlock)
	blocks := make([]*wire.MsgBlock, 0, count)
	for i := 0; i < count; i++ {
		block := solvedChild(t, miner, parent, byte(i))
		_, err := miner.Submit(block)
		if err != nil {
			t.Fatalf("mineTestBlocks: Submit: %+v", err)
		}
		blocks = append(blocks, block)
		parent = parent.Build(block)
	}
	return blocks
}

func solvedChild(t *testing.T, miner *chainstate.ChainState, parent *model.StoredBlock, tag byte) *wire.MsgBlock {
	timestamp := parent.Header().Timestamp.Add(150 * time.Second)
	bits, err := miner.RequiredDifficulty(parent, timestamp)
	if err != nil {
		t.Fatalf("solvedChild: RequiredDifficulty: %s", err)
	}
	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:   1,
		PrevBlock: *parent.Hash(),
		Timestamp: timestamp,
		Bits:      bits,
	})
	block.AddTransaction(coinbase(tag))
	block.Header.MerkleRoot = block.CalcMerkleRoot()
	chaincfg.Solve(&block.Header)
	return block
}

func writeMessages(t *testing.T, buf *bytes.Buffer, net wire.UlordNet, msgs ...wire.Message) {
	for _, msg := range msgs {
		_, err := wire.WriteMessage(buf, msg, net)
		if err != nil {
			t.Fatalf("writeMessages: WriteMessage: %s", err)
		}
	}
}

func headersMessage(t *testing.T, blocks ...*wire.MsgBlock) *wire.MsgHeaders {
	msg := wire.NewMsgHeaders()
	for _, block := range blocks {
		header := block.Header
		err := msg.AddBlockHeader(&header)
		if err != nil {
			t.Fatalf("headersMessage: AddBlockHeader: %s", err)
		}
	}
	return msg
}
