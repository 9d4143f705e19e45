package wire

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

func TestFilteredBlockProvideTransaction(t *testing.T) {
	raw := mustDecodeHex(t, testnetBlock11215Hex)
	var block MsgBlock
	if err := block.Deserialize(bytes.NewReader(raw)); err != nil {
		t.Fatalf("TestFilteredBlockProvideTransaction: Deserialize: %s", err)
	}
	spend := block.Transactions[1]
	filtered := NewFilteredBlock(&block.Header, uint32(len(block.Transactions)),
		[]chainhash.Hash{spend.TxHash()})

	if filtered.BlockHash() != block.BlockHash() {
		t.Fatalf("TestFilteredBlockProvideTransaction: filtered block hash differs from the block's")
	}
	if filtered.ProvideTransaction(block.Transactions[0]) {
		t.Fatalf("TestFilteredBlockProvideTransaction: unmatched coinbase was accepted")
	}
	if !filtered.ProvideTransaction(spend) {
		t.Fatalf("TestFilteredBlockProvideTransaction: matched transaction was rejected")
	}
	if len(filtered.AssociatedTransactions) != 1 || filtered.AssociatedTransactions[spend.TxHash()] != spend {
		t.Fatalf("TestFilteredBlockProvideTransaction: wrong associated transactions")
	}
	if filtered.HeaderBlock().HasTransactions() {
		t.Fatalf("TestFilteredBlockProvideTransaction: header block carries transactions")
	}
}
