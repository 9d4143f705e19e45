package chainstate

import (
	"github.com/ulordnet/ulordd/wire"
)

// Outcome tells what became of a submitted block that was not rejected.
type Outcome int

const (
	// Accepted means the block is part of the block store, either because
	// it was connected by this submission or because it already was.
	Accepted Outcome = iota

	// Deferred means the parent of the block is unknown. The block was
	// kept as an orphan and will be connected once its parent is.
	Deferred
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "Accepted"
	case Deferred:
		return "Deferred"
	default:
		return "Unknown"
	}
}

// AddResult is the result of a successful Submit or SubmitFiltered call.
type AddResult struct {
	Outcome Outcome

	// ConnectedOrphans lists the orphans connected as a consequence of
	// the submission, in the order they were connected.
	ConnectedOrphans []*wire.MsgBlock

	// ConnectedFilteredOrphans lists those of ConnectedOrphans that were
	// submitted as filtered blocks.
	ConnectedFilteredOrphans []*wire.FilteredBlock

	// OrphanStorageError is set when connecting orphans stopped on a
	// block store failure. The submitted block was connected regardless,
	// and the orphans that were not are still in the pool.
	OrphanStorageError error
}

// IsAccepted returns whether the outcome is Accepted.
func (r *AddResult) IsAccepted() bool {
	return r.Outcome == Accepted
}

func accepted() *AddResult {
	return &AddResult{Outcome: Accepted}
}

func deferred() *AddResult {
	return &AddResult{Outcome: Deferred}
}
