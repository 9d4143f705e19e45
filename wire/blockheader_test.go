// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
)

// TestBlockHeaderDecode decodes a real mainnet header and checks every
// field against the values reported by the network.
func TestBlockHeaderDecode(t *testing.T) {
	raw := mustDecodeHex(t, mainnetHeader12978Hex)

	var header BlockHeader
	err := header.Deserialize(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("TestBlockHeaderDecode: Deserialize: %s", err)
	}

	if header.Version != 0x20000000 {
		t.Errorf("TestBlockHeaderDecode: wrong version - got %x", header.Version)
	}
	if header.Timestamp.Unix() != 1526024080 {
		t.Errorf("TestBlockHeaderDecode: wrong timestamp - got %d", header.Timestamp.Unix())
	}
	if header.Bits != 0x1e017975 {
		t.Errorf("TestBlockHeaderDecode: wrong bits - got %08x", header.Bits)
	}
	expectedPrev := "0000014032544c89655f8b5dc7a9daa9837290fd1848d33e67153f4412bd0f05"
	if header.PrevBlock.String() != expectedPrev {
		t.Errorf("TestBlockHeaderDecode: wrong prev block - got %s", header.PrevBlock)
	}
	expectedMerkle := "259bb52783287969f7b8eed7714d4bacb5097677719ff75a362ea93cec35ae6c"
	if header.MerkleRoot.String() != expectedMerkle {
		t.Errorf("TestBlockHeaderDecode: wrong merkle root - got %s", header.MerkleRoot)
	}
	if header.ClaimTrieRoot != (chainhash.Hash{}) {
		t.Errorf("TestBlockHeaderDecode: wrong claim trie root - got %s", header.ClaimTrieRoot)
	}
	expectedNonce := "e2a667979f7a3182638fca2f8b9780f2cd78e36ecb0828360abe4bc72df2ea45"
	if header.Nonce.String() != expectedNonce {
		t.Errorf("TestBlockHeaderDecode: wrong nonce - got %s", header.Nonce)
	}

	var buf bytes.Buffer
	err = header.Serialize(&buf)
	if err != nil {
		t.Fatalf("TestBlockHeaderDecode: Serialize: %s", err)
	}
	if !bytes.Equal(buf.Bytes(), raw) {
		t.Fatalf("TestBlockHeaderDecode: re-encoding mismatch\ngot: %s\nwant: %s",
			spew.Sdump(buf.Bytes()), spew.Sdump(raw))
	}
	if header.SerializeSize() != len(raw) {
		t.Errorf("TestBlockHeaderDecode: SerializeSize got %d want %d", header.SerializeSize(), len(raw))
	}

	expectedHash := "b1557eca119b18951201231de18c45d64de2d5ac0a7d293064bb39808b91caca"
	if hash := header.BlockHash(); hash.String() != expectedHash {
		t.Errorf("TestBlockHeaderDecode: wrong block hash - got %s want %s", hash, expectedHash)
	}
}

// TestBlockHeaderHashCoversAllFields ensures that each header field takes
// part in the block identity.
func TestBlockHeaderHashCoversAllFields(t *testing.T) {
	base := BlockHeader{
		Version:   1,
		Timestamp: time.Unix(1524045652, 0),
		Bits:      0x1e1d1459,
		Nonce:     Uint256FromUint64(7),
	}
	baseHash := base.BlockHash()

	mutations := []func(h *BlockHeader){
		func(h *BlockHeader) { h.Version = 2 },
		func(h *BlockHeader) { h.PrevBlock[0] = 1 },
		func(h *BlockHeader) { h.MerkleRoot[31] = 1 },
		func(h *BlockHeader) { h.ClaimTrieRoot[5] = 1 },
		func(h *BlockHeader) { h.Timestamp = h.Timestamp.Add(time.Second) },
		func(h *BlockHeader) { h.Bits++ },
		func(h *BlockHeader) { h.Nonce[31] = 1 },
	}
	for i, mutate := range mutations {
		header := base
		mutate(&header)
		if header.BlockHash() == baseHash {
			t.Errorf("TestBlockHeaderHashCoversAllFields: mutation #%d did not change the hash", i)
		}
	}
}

func TestBlockHeaderShortRead(t *testing.T) {
	raw := mustDecodeHex(t, mainnetHeader12978Hex)
	var header BlockHeader
	err := header.Deserialize(bytes.NewReader(raw[:BlockHeaderPayload-1]))
	if err == nil {
		t.Fatalf("TestBlockHeaderShortRead: decoding a truncated header unexpectedly succeeded")
	}
}
