package blockstore

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/infrastructure/db/database"
	"github.com/ulordnet/ulordd/infrastructure/db/database/ldb"
)

type levelDBStore struct {
	params *chaincfg.Params
	db     *ldb.LevelDB

	headLock sync.RWMutex
	head     *model.StoredBlock
}

// NewLevelDBStore opens, or creates, a LevelDB backed BatchBlockStore at
// path. A new store is initialized with the genesis block of params.
func NewLevelDBStore(path string, params *chaincfg.Params) (model.BatchBlockStore, error) {
	db, err := ldb.NewLevelDB(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open block store at %s", path)
	}
	store := &levelDBStore{params: params, db: db}

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

func (ls *levelDBStore) initialize() error {
	headHashBytes, err := ls.db.Get(chainHeadKey)
	if database.IsNotFoundError(err) {
		genesis := model.NewGenesisStoredBlock(ls.params.GenesisBlock)
		log.Infof("Creating a new %s block store with genesis %s", ls.params.Name, genesis.Hash())
		return ls.PutBatch([]*model.StoredBlock{genesis}, genesis)
	}
	if err != nil {
		return errors.Wrap(err, "failed to read chain head")
	}

	headHash, err := deserializeHeadHash(headHashBytes)
	if err != nil {
		return err
	}
	head, err := ls.Get(headHash)
	if err != nil {
		return err
	}
	if head == nil {
		return errors.Errorf("chain head %s is missing from the block store", headHash)
	}
	log.Infof("Loaded %s block store with head %s at height %d", ls.params.Name, headHash, head.Height)
	ls.head = head
	return nil
}

func (ls *levelDBStore) Get(hash *chainhash.Hash) (*model.StoredBlock, error) {
	serialized, err := ls.db.Get(blockKey(hash))
	if database.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read block %s", hash)
	}
	block, err := deserializeStoredBlock(serialized)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode block %s", hash)
	}
	return block, nil
}

func (ls *levelDBStore) Put(block *model.StoredBlock) error {
	serialized, err := serializeStoredBlock(block)
	if err != nil {
		return err
	}
	err = ls.db.Put(blockKey(block.Hash()), serialized)
	return errors.Wrapf(err, "failed to write block %s", block.Hash())
}

func (ls *levelDBStore) PutBatch(blocks []*model.StoredBlock, head *model.StoredBlock) (err error) {
	dbTx, err := ls.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin block store transaction")
	}
	defer func() {
		rollbackErr := dbTx.RollbackUnlessClosed()
		if err == nil && rollbackErr != nil {
			err = rollbackErr
		}
	}()

	for _, block := range blocks {
		serialized, err := serializeStoredBlock(block)
		if err != nil {
			return err
		}
		err = dbTx.Put(blockKey(block.Hash()), serialized)
		if err != nil {
			return err
		}
	}
	err = dbTx.Put(chainHeadKey, head.Hash()[:])
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return errors.Wrap(err, "failed to commit block store transaction")
	}

	ls.headLock.Lock()
	defer ls.headLock.Unlock()
	ls.head = head
	return nil
}

func (ls *levelDBStore) ChainHead() (*model.StoredBlock, error) {
	ls.headLock.RLock()
	defer ls.headLock.RUnlock()
	return ls.head, nil
}

func (ls *levelDBStore) SetChainHead(head *model.StoredBlock) error {
	err := ls.db.Put(chainHeadKey, head.Hash()[:])
	if err != nil {
		return errors.Wrap(err, "failed to write chain head")
	}

	ls.headLock.Lock()
	defer ls.headLock.Unlock()
	ls.head = head
	return nil
}

func (ls *levelDBStore) Params() *chaincfg.Params {
	return ls.params
}

func (ls *levelDBStore) Close() error {
	return ls.db.Close()
}
