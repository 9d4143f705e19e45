package blockstore

import (
	"bytes"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/util/binaryserializer"
	"github.com/ulordnet/ulordd/wire"
)

const chainWorkSize = 32

var (
	blocksPrefix = []byte("blocks/")
	chainHeadKey = []byte("chainhead")
)

func blockKey(hash *chainhash.Hash) []byte {
	key := make([]byte, 0, len(blocksPrefix)+chainhash.HashSize)
	key = append(key, blocksPrefix...)
	return append(key, hash[:]...)
}

// serializeStoredBlock encodes a stored block as its header, the height as
// a little endian uint32, the chain work as 32 big endian bytes and finally
// the transaction count and transactions.
func serializeStoredBlock(block *model.StoredBlock) ([]byte, error) {
	if block.ChainWork.Sign() < 0 || block.ChainWork.BitLen() > chainWorkSize*8 {
		return nil, errors.Errorf("chain work %s of block %s can not be stored",
			block.ChainWork, block.Hash())
	}

	buf := bytes.NewBuffer(make([]byte, 0, block.Block.SerializeSize()+4+chainWorkSize))
	err := block.Header().Serialize(buf)
	if err != nil {
		return nil, err
	}
	err = binaryserializer.PutUint32(buf, uint32(block.Height))
	if err != nil {
		return nil, err
	}
	buf.Write(block.ChainWork.FillBytes(make([]byte, chainWorkSize)))

	err = wire.WriteVarInt(buf, uint64(len(block.Block.Transactions)))
	if err != nil {
		return nil, err
	}
	for _, tx := range block.Block.Transactions {
		err = tx.Serialize(buf)
		if err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func deserializeStoredBlock(serialized []byte) (*model.StoredBlock, error) {
	r := bytes.NewReader(serialized)
	block := &wire.MsgBlock{}
	err := block.Header.Deserialize(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode stored header")
	}
	height, err := binaryserializer.Uint32(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode stored height")
	}
	var workBytes [chainWorkSize]byte
	_, err = io.ReadFull(r, workBytes[:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode stored chain work")
	}

	txCount, err := wire.ReadVarInt(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode stored transaction count")
	}
	// Every transaction takes more than one byte, so a larger count can
	// only come from a corrupted record.
	if txCount > uint64(r.Len()) {
		return nil, errors.Errorf("stored transaction count %d exceeds the "+
			"%d remaining bytes", txCount, r.Len())
	}
	if txCount > 0 {
		block.Transactions = make([]*wire.MsgTx, 0, txCount)
	}
	for i := uint64(0); i < txCount; i++ {
		tx := &wire.MsgTx{}
		err = tx.Deserialize(r)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode stored transaction %d", i)
		}
		block.Transactions = append(block.Transactions, tx)
	}
	if r.Len() != 0 {
		return nil, errors.Errorf("%d unexpected trailing bytes in stored block", r.Len())
	}

	return model.NewStoredBlock(block, int32(height), new(big.Int).SetBytes(workBytes[:])), nil
}

func deserializeHeadHash(serialized []byte) (*chainhash.Hash, error) {
	hash, err := chainhash.NewHash(serialized)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode chain head hash")
	}
	return hash, nil
}
