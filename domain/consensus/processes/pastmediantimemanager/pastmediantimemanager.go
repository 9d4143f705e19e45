package pastmediantimemanager

import (
	"sort"
	"time"

	"github.com/ulordnet/ulordd/domain/consensus/model"
)

// medianTimeBlocks is the number of blocks, the given one included, whose
// timestamps take part in the past median time.
const medianTimeBlocks = 11

// pastMedianTimeManager provides a method to resolve the
// past median time of a block
type pastMedianTimeManager struct {
	blockStore model.BlockStore
}

// New instantiates a new PastMedianTimeManager
func New(blockStore model.BlockStore) model.PastMedianTimeManager {
	return &pastMedianTimeManager{
		blockStore: blockStore,
	}
}

// PastMedianTime returns the median of the timestamps of block and its up
// to ten closest ancestors. With an even number of timestamps, which only
// happens near genesis, the lower middle one is used.
func (pmtm *pastMedianTimeManager) PastMedianTime(block *model.StoredBlock) (time.Time, error) {
	timestamps := make([]int64, 0, medianTimeBlocks)
	for cursor := block; cursor != nil && len(timestamps) < medianTimeBlocks; {
		timestamps = append(timestamps, cursor.Header().Timestamp.Unix())
		var err error
		cursor, err = cursor.Prev(pmtm.blockStore)
		if err != nil {
			return time.Time{}, err
		}
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return time.Unix(timestamps[(len(timestamps)-1)/2], 0), nil
}
