package blockstore

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/model"
)

// cachedStore is a read-through LRU cache in front of another BlockStore.
// Difficulty calculations walk the same recent blocks over and over, so
// those reads never reach the database.
type cachedStore struct {
	inner model.BlockStore
	cache *lru.Cache[chainhash.Hash, *model.StoredBlock]
}

// NewCachedStore wraps inner with an LRU cache of up to size blocks.
func NewCachedStore(inner model.BlockStore, size int) (model.BatchBlockStore, error) {
	cache, err := lru.New[chainhash.Hash, *model.StoredBlock](size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create a block cache of size %d", size)
	}
	return &cachedStore{inner: inner, cache: cache}, nil
}

func (cs *cachedStore) Get(hash *chainhash.Hash) (*model.StoredBlock, error) {
	if block, ok := cs.cache.Get(*hash); ok {
		return block, nil
	}
	block, err := cs.inner.Get(hash)
	if err != nil || block == nil {
		return block, err
	}
	cs.cache.Add(*hash, block)
	return block, nil
}

func (cs *cachedStore) Put(block *model.StoredBlock) error {
	err := cs.inner.Put(block)
	if err != nil {
		return err
	}
	cs.cache.Add(*block.Hash(), block)
	return nil
}

// PutBatch uses the batch support of the inner store when it has one, and
// falls back to writing the blocks and then the head one by one.
func (cs *cachedStore) PutBatch(blocks []*model.StoredBlock, head *model.StoredBlock) error {
	if batchStore, ok := cs.inner.(model.BatchBlockStore); ok {
		err := batchStore.PutBatch(blocks, head)
		if err != nil {
			return err
		}
	} else {
		for _, block := range blocks {
			err := cs.inner.Put(block)
			if err != nil {
				return err
			}
		}
		err := cs.inner.SetChainHead(head)
		if err != nil {
			return err
		}
	}
	for _, block := range blocks {
		cs.cache.Add(*block.Hash(), block)
	}
	return nil
}

func (cs *cachedStore) ChainHead() (*model.StoredBlock, error) {
	return cs.inner.ChainHead()
}

func (cs *cachedStore) SetChainHead(head *model.StoredBlock) error {
	return cs.inner.SetChainHead(head)
}

func (cs *cachedStore) Params() *chaincfg.Params {
	return cs.inner.Params()
}

func (cs *cachedStore) Close() error {
	cs.cache.Purge()
	return cs.inner.Close()
}
