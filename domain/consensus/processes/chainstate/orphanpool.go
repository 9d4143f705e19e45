package chainstate

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ulordnet/ulordd/wire"
)

// orphanBlock is a block whose parent is unknown, kept with the filtered
// block it came from, if any.
type orphanBlock struct {
	block    *wire.MsgBlock
	filtered *wire.FilteredBlock
}

// orphanPool keeps orphans in the order they were added. It has no size
// limit.
type orphanPool struct {
	orphans map[chainhash.Hash]*orphanBlock
	order   []chainhash.Hash
}

func newOrphanPool() *orphanPool {
	return &orphanPool{orphans: make(map[chainhash.Hash]*orphanBlock)}
}

func (op *orphanPool) add(hash *chainhash.Hash, orphan *orphanBlock) {
	if _, ok := op.orphans[*hash]; ok {
		return
	}
	op.orphans[*hash] = orphan
	op.order = append(op.order, *hash)
}

func (op *orphanPool) get(hash *chainhash.Hash) (*orphanBlock, bool) {
	orphan, ok := op.orphans[*hash]
	return orphan, ok
}

func (op *orphanPool) remove(hash *chainhash.Hash) {
	if _, ok := op.orphans[*hash]; !ok {
		return
	}
	delete(op.orphans, *hash)
	for i := range op.order {
		if op.order[i] == *hash {
			op.order = append(op.order[:i], op.order[i+1:]...)
			break
		}
	}
}

// hashes returns the hashes of the orphans in insertion order.
func (op *orphanPool) hashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(op.order))
	copy(hashes, op.order)
	return hashes
}

func (op *orphanPool) len() int {
	return len(op.order)
}

func (op *orphanPool) clear() {
	op.orphans = make(map[chainhash.Hash]*orphanBlock)
	op.order = nil
}
