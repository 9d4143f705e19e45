package versiontally

import (
	"github.com/ulordnet/ulordd/domain/consensus/model"
)

// VersionTally keeps the versions of the last blocks of the best chain in a
// fixed size window, for the version majority rules.
type VersionTally struct {
	window     []int32
	writeHead  int
	storedSize int
}

// New returns an empty tally over windowSize blocks.
func New(windowSize int) *VersionTally {
	return &VersionTally{window: make([]int32, windowSize)}
}

// Add records the version of a block that was just added to the best chain,
// evicting the oldest one once the window is full.
func (vt *VersionTally) Add(version int32) {
	if len(vt.window) == 0 {
		return
	}
	vt.window[vt.writeHead] = version
	vt.writeHead = (vt.writeHead + 1) % len(vt.window)
	if vt.storedSize < len(vt.window) {
		vt.storedSize++
	}
}

// CountAtOrAbove returns the number of blocks in the window with a version
// of at least version. The second return value is false, and the count
// meaningless, until the window is full.
func (vt *VersionTally) CountAtOrAbove(version int32) (int, bool) {
	if len(vt.window) == 0 || vt.storedSize < len(vt.window) {
		return 0, false
	}
	count := 0
	for _, windowVersion := range vt.window {
		if windowVersion >= version {
			count++
		}
	}
	return count, true
}

// Initialize refills the tally with the versions of the blocks ending at
// head, oldest first. Chains shorter than the window leave it partially
// filled.
func (vt *VersionTally) Initialize(store model.BlockStore, head *model.StoredBlock) error {
	vt.Reset()

	versions := make([]int32, 0, len(vt.window))
	for block := head; block != nil && len(versions) < len(vt.window); {
		versions = append(versions, block.Header().Version)
		var err error
		block, err = block.Prev(store)
		if err != nil {
			return err
		}
	}
	for i := len(versions) - 1; i >= 0; i-- {
		vt.Add(versions[i])
	}
	return nil
}

// Reset empties the tally.
func (vt *VersionTally) Reset() {
	for i := range vt.window {
		vt.window[i] = 0
	}
	vt.writeHead = 0
	vt.storedSize = 0
}
