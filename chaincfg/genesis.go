// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"encoding/hex"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ulordnet/ulordd/util/difficulty"
	"github.com/ulordnet/ulordd/wire"
)

const (
	// genesisVersion is the block version of every genesis block.
	genesisVersion = 1

	// oneCoin is the value of the genesis coinbase output.
	oneCoin = 100000000

	// opCheckSig is the script opcode closing the genesis output script.
	opCheckSig = 0xac
)

var (
	// mainGenesisSigScript carries the difficulty bits and the message
	// "Change the World with Us. 22/May/2018, 00:00:00, GMT".
	mainGenesisSigScript = mustDecodeHex("04ffff001d0104344368616e67652074686520576f726c" +
		"6420776974682055732e2032322f4d61792f323031382c2030303a30303a30302c20474d54")

	// mainGenesisPubKey is the uncompressed key paid by the main and
	// regression test genesis coinbase.
	mainGenesisPubKey = mustDecodeHex("041c508f27e982c369486c0f1a42779208b3f5dc96c21a2af6004cb18d" +
		"1529f42182425db1e1632dc6e73ff687592e148569022cee52b4b4eb10e8bb11bd927ec0")

	// testGenesisSigScript carries the difficulty bits and the message
	// "ulord hold value testnet.".
	testGenesisSigScript = mustDecodeHex("04ffff001d010419756c6f726420686f6c642076616c756520746573746e65742e")

	// testGenesisPubKey is the compressed key paid by the test network
	// genesis coinbase.
	testGenesisPubKey = mustDecodeHex("034c73d75f59061a08032b68369e5034390abc5215b3df79be01fb4319173a88f8")
)

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func mustParseNonce(s string) wire.Uint256 {
	nonce, err := wire.NewUint256FromStr(s)
	if err != nil {
		panic(err)
	}
	return nonce
}

func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return hash
}

// payToPubKeyScript builds a script pushing pubKey followed by
// OP_CHECKSIG. Keys are always shorter than 76 bytes, so a single length
// byte is the push opcode.
func payToPubKeyScript(pubKey []byte) []byte {
	script := make([]byte, 0, len(pubKey)+2)
	script = append(script, byte(len(pubKey)))
	script = append(script, pubKey...)
	return append(script, opCheckSig)
}

// genesisCoinbaseTx returns the single transaction of a genesis block.
func genesisCoinbaseTx(sigScript, pubKey []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: wire.MaxPrevOutIndex}, sigScript))
	tx.AddTxOut(wire.NewTxOut(oneCoin, payToPubKeyScript(pubKey)))
	return tx
}

// newGenesisBlock assembles a genesis block around its coinbase.
func newGenesisBlock(coinbase *wire.MsgTx, timestamp int64, bits uint32, nonce wire.Uint256) *wire.MsgBlock {
	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   genesisVersion,
			Timestamp: time.Unix(timestamp, 0),
			Bits:      bits,
			Nonce:     nonce,
		},
		Transactions: []*wire.MsgTx{coinbase},
	}
	block.Header.MerkleRoot = block.CalcMerkleRoot()
	return block
}

// mainGenesisBlock defines the genesis block of the main network.
func mainGenesisBlock() *wire.MsgBlock {
	return newGenesisBlock(genesisCoinbaseTx(mainGenesisSigScript, mainGenesisPubKey),
		1524045652, 0x1e1d1459,
		mustParseNonce("0000be7245a98c700f01293501a062837cb465afd70da22ee812b69a0c131f8c"))
}

// testNetGenesisBlock defines the genesis block of the test network. The
// development network shares it.
func testNetGenesisBlock() *wire.MsgBlock {
	return newGenesisBlock(genesisCoinbaseTx(testGenesisSigScript, testGenesisPubKey),
		1524057440, 0x1f0fffff,
		mustParseNonce("000020f00dd1af082323e02e1f5b1d866d777abbcf63ba720d35dcf585840073"))
}

// regTestGenesisBlock defines the genesis block of the regression test
// network.
func regTestGenesisBlock() *wire.MsgBlock {
	return newGenesisBlock(genesisCoinbaseTx(mainGenesisSigScript, mainGenesisPubKey),
		1526946000, 0x200f0f0f,
		mustParseNonce("0000ec7bfb02cb74cc021bbc03773834a65f8a16655212b5abc8841efbea0000"))
}

// unitTestGenesisBlock defines the genesis block of the unit test network.
// Its nonce is searched at construction so that the block satisfies its own
// proof of work.
func unitTestGenesisBlock() *wire.MsgBlock {
	block := newGenesisBlock(genesisCoinbaseTx(mainGenesisSigScript, mainGenesisPubKey),
		1524045652, unitTestGenesisBits, wire.Uint256{})
	Solve(&block.Header)
	return block
}

// Solve increments the nonce of header until its hash meets the target
// declared by its bits.
func Solve(header *wire.BlockHeader) {
	target := difficulty.CompactToBig(header.Bits)
	for {
		hash := header.BlockHash()
		if difficulty.HashToBig(&hash).Cmp(target) <= 0 {
			return
		}
		header.Nonce.Increment()
	}
}
