package chainstate

import (
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/domain/consensus/model"
)

// FindSplit returns the most recent block that the chains ending in newHead
// and oldHead have in common. If one head is an ancestor of the other, that
// head is returned. It returns nil when a chain runs out of known parents
// before the split point is reached.
func FindSplit(newHead, oldHead *model.StoredBlock, store model.BlockStore) (*model.StoredBlock, error) {
	oldCursor := oldHead
	newCursor := newHead
	for !oldCursor.Hash().IsEqual(newCursor.Hash()) {
		var err error
		if oldCursor.Height > newCursor.Height {
			oldCursor, err = oldCursor.Prev(store)
		} else {
			newCursor, err = newCursor.Prev(store)
		}
		if err != nil {
			return nil, err
		}
		if oldCursor == nil || newCursor == nil {
			return nil, nil
		}
	}
	return oldCursor, nil
}

// partialChain returns the blocks from higher down to, but excluding,
// lower.
func partialChain(higher, lower *model.StoredBlock, store model.BlockStore) ([]*model.StoredBlock, error) {
	if higher.Height < lower.Height {
		return nil, errors.Errorf("block at height %d is not above the block at height %d",
			higher.Height, lower.Height)
	}

	var blocks []*model.StoredBlock
	for cursor := higher; !cursor.Hash().IsEqual(lower.Hash()); {
		blocks = append(blocks, cursor)
		var err error
		cursor, err = cursor.Prev(store)
		if err != nil {
			return nil, err
		}
		if cursor == nil {
			return nil, errors.Errorf("ran off the end of the chain before reaching %s", lower.Hash())
		}
	}
	return blocks, nil
}
