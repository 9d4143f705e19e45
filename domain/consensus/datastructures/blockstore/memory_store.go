package blockstore

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/model"
)

// memoryStore keeps every block in a map. It is used by tests and by
// headers-only imports that do not need to survive a restart.
type memoryStore struct {
	params *chaincfg.Params

	lock   sync.RWMutex
	blocks map[chainhash.Hash]*model.StoredBlock
	head   *model.StoredBlock
	closed bool
}

// NewMemoryStore returns an in-memory BatchBlockStore holding only the
// genesis block of params.
func NewMemoryStore(params *chaincfg.Params) model.BatchBlockStore {
	genesis := model.NewGenesisStoredBlock(params.GenesisBlock)
	return &memoryStore{
		params: params,
		blocks: map[chainhash.Hash]*model.StoredBlock{*genesis.Hash(): genesis},
		head:   genesis,
	}
}

var errStoreClosed = errors.New("block store is closed")

func (ms *memoryStore) Get(hash *chainhash.Hash) (*model.StoredBlock, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	if ms.closed {
		return nil, errors.WithStack(errStoreClosed)
	}
	return ms.blocks[*hash], nil
}

func (ms *memoryStore) Put(block *model.StoredBlock) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if ms.closed {
		return errors.WithStack(errStoreClosed)
	}
	ms.blocks[*block.Hash()] = block
	return nil
}

func (ms *memoryStore) PutBatch(blocks []*model.StoredBlock, head *model.StoredBlock) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if ms.closed {
		return errors.WithStack(errStoreClosed)
	}
	for _, block := range blocks {
		ms.blocks[*block.Hash()] = block
	}
	ms.head = head
	return nil
}

func (ms *memoryStore) ChainHead() (*model.StoredBlock, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	if ms.closed {
		return nil, errors.WithStack(errStoreClosed)
	}
	return ms.head, nil
}

func (ms *memoryStore) SetChainHead(head *model.StoredBlock) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if ms.closed {
		return errors.WithStack(errStoreClosed)
	}
	ms.head = head
	return nil
}

func (ms *memoryStore) Params() *chaincfg.Params {
	return ms.params
}

func (ms *memoryStore) Close() error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	ms.closed = true
	ms.blocks = nil
	return nil
}
