package model

import (
	"time"

	"github.com/ulordnet/ulordd/wire"
)

// DifficultyManager checks the target a block declares against the one
// its chain requires
type DifficultyManager interface {
	Validate(storedPrev *StoredBlock, next *wire.BlockHeader) error
	RequiredDifficulty(storedPrev *StoredBlock, timestamp time.Time) (uint32, error)
}
