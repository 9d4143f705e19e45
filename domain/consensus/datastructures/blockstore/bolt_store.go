package blockstore

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketBlocks = []byte("blocks")
	bucketMeta   = []byte("meta")
)

type boltStore struct {
	params *chaincfg.Params
	db     *bolt.DB

	headLock sync.RWMutex
	head     *model.StoredBlock
}

// NewBoltStore opens, or creates, a bbolt backed BatchBlockStore in the
// file at path. A new store is initialized with the genesis block of
// params.
func NewBoltStore(path string, params *chaincfg.Params) (model.BatchBlockStore, error) {
	err := os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create directory for %s", path)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open block store at %s", path)
	}
	store := &boltStore{params: params, db: db}

	err = store.initialize()
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			log.Errorf("Failed closing block store at %s: %s", path, closeErr)
		}
		return nil, err
	}
	return store, nil
}

func (bs *boltStore) initialize() error {
	var headHashBytes []byte
	err := bs.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketBlocks, bucketMeta} {
			_, err := tx.CreateBucketIfNotExists(bucket)
			if err != nil {
				return errors.Wrapf(err, "failed to create bucket %s", bucket)
			}
		}
		value := tx.Bucket(bucketMeta).Get(chainHeadKey)
		if value != nil {
			headHashBytes = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if headHashBytes == nil {
		genesis := model.NewGenesisStoredBlock(bs.params.GenesisBlock)
		log.Infof("Creating a new %s block store with genesis %s", bs.params.Name, genesis.Hash())
		return bs.PutBatch([]*model.StoredBlock{genesis}, genesis)
	}

	headHash, err := deserializeHeadHash(headHashBytes)
	if err != nil {
		return err
	}
	head, err := bs.Get(headHash)
	if err != nil {
		return err
	}
	if head == nil {
		return errors.Errorf("chain head %s is missing from the block store", headHash)
	}
	log.Infof("Loaded %s block store with head %s at height %d", bs.params.Name, headHash, head.Height)
	bs.head = head
	return nil
}

func (bs *boltStore) Get(hash *chainhash.Hash) (*model.StoredBlock, error) {
	var block *model.StoredBlock
	err := bs.db.View(func(tx *bolt.Tx) error {
		serialized := tx.Bucket(bucketBlocks).Get(hash[:])
		if serialized == nil {
			return nil
		}
		// The value is only valid while the transaction is open, and
		// deserialization copies everything it keeps.
		var err error
		block, err = deserializeStoredBlock(serialized)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read block %s", hash)
	}
	return block, nil
}

func putBlock(tx *bolt.Tx, block *model.StoredBlock) error {
	serialized, err := serializeStoredBlock(block)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketBlocks).Put(block.Hash()[:], serialized)
}

func (bs *boltStore) Put(block *model.StoredBlock) error {
	err := bs.db.Update(func(tx *bolt.Tx) error {
		return putBlock(tx, block)
	})
	return errors.Wrapf(err, "failed to write block %s", block.Hash())
}

func (bs *boltStore) PutBatch(blocks []*model.StoredBlock, head *model.StoredBlock) error {
	err := bs.db.Update(func(tx *bolt.Tx) error {
		for _, block := range blocks {
			err := putBlock(tx, block)
			if err != nil {
				return err
			}
		}
		return tx.Bucket(bucketMeta).Put(chainHeadKey, head.Hash()[:])
	})
	if err != nil {
		return errors.Wrap(err, "failed to write block batch")
	}

	bs.headLock.Lock()
	defer bs.headLock.Unlock()
	bs.head = head
	return nil
}

func (bs *boltStore) ChainHead() (*model.StoredBlock, error) {
	bs.headLock.RLock()
	defer bs.headLock.RUnlock()
	return bs.head, nil
}

func (bs *boltStore) SetChainHead(head *model.StoredBlock) error {
	err := bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(chainHeadKey, head.Hash()[:])
	})
	if err != nil {
		return errors.Wrap(err, "failed to write chain head")
	}

	bs.headLock.Lock()
	defer bs.headLock.Unlock()
	bs.head = head
	return nil
}

func (bs *boltStore) Params() *chaincfg.Params {
	return bs.params
}

func (bs *boltStore) Close() error {
	return errors.WithStack(bs.db.Close())
}
