package model

import "time"

// PastMedianTimeManager provides a method to resolve the
// past median time of a block
type PastMedianTimeManager interface {
	PastMedianTime(block *StoredBlock) (time.Time, error)
}
