package chainstate

import (
	"sync"
	"time"

	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/domain/consensus/datastructures/versiontally"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/domain/consensus/processes/difficultymanager"
	"github.com/ulordnet/ulordd/domain/consensus/processes/pastmediantimemanager"
	"github.com/ulordnet/ulordd/domain/consensus/ruleerrors"
)

// estimatedBlockInterval is the block interval EstimateBlockTime assumes.
const estimatedBlockInterval = 10 * time.Minute

// ChainState extends the best chain with submitted blocks. It keeps blocks
// whose parent is unknown as orphans, follows the chain with the most work
// across reorganizations, and tracks the versions of recent blocks.
//
// Submissions are serialized by mutationLock. During a submission the head
// recorded through the mutator is tracked in workingHead. It is published
// under headLock once the submission ends, so that readers of ChainHead
// never wait for a submission nor see a head it later fails past.
type ChainState struct {
	params     *chaincfg.Params
	blockStore model.BlockStore
	mutator    model.ChainMutator
	timeSource model.TimeSource

	difficultyManager     model.DifficultyManager
	pastMedianTimeManager model.PastMedianTimeManager

	mutationLock sync.Mutex
	orphans      *orphanPool
	versionTally *versiontally.VersionTally
	workingHead  *model.StoredBlock

	headLock sync.RWMutex
	head     *model.StoredBlock

	falsePositives falsePositiveEstimator
}

type systemTimeSource struct{}

func (systemTimeSource) Now() time.Time {
	return time.Now()
}

// New instantiates a ChainState over blockStore, writing through mutator.
// The chain head is read from blockStore. A nil timeSource means the system
// clock.
func New(params *chaincfg.Params, blockStore model.BlockStore, mutator model.ChainMutator,
	timeSource model.TimeSource) (*ChainState, error) {

	if timeSource == nil {
		timeSource = systemTimeSource{}
	}

	head, err := blockStore.ChainHead()
	if err != nil {
		return nil, ruleerrors.NewStorageError(err)
	}

	versionTally := versiontally.New(params.MajorityWindow)
	err = versionTally.Initialize(blockStore, head)
	if err != nil {
		return nil, ruleerrors.NewStorageError(err)
	}

	pastMedianTimeManager := pastmediantimemanager.New(blockStore)
	log.Infof("Chain state loaded with head %s", head)

	return &ChainState{
		params:                params,
		blockStore:            blockStore,
		mutator:               mutator,
		timeSource:            timeSource,
		difficultyManager:     difficultymanager.New(params, blockStore, pastMedianTimeManager),
		pastMedianTimeManager: pastMedianTimeManager,
		orphans:               newOrphanPool(),
		versionTally:          versionTally,
		workingHead:           head,
		head:                  head,
	}, nil
}

// ChainHead returns the block at the head of the best chain, the chain
// with the most cumulative work.
func (cs *ChainState) ChainHead() *model.StoredBlock {
	cs.headLock.RLock()
	defer cs.headLock.RUnlock()
	return cs.head
}

// BestChainHeight returns the height of the chain head.
func (cs *ChainState) BestChainHeight() int32 {
	return cs.ChainHead().Height
}

// Params returns the network parameters of the chain.
func (cs *ChainState) Params() *chaincfg.Params {
	return cs.params
}

// RequiredDifficulty returns the bits a block built on storedPrev with the
// given timestamp must declare.
func (cs *ChainState) RequiredDifficulty(storedPrev *model.StoredBlock, timestamp time.Time) (uint32, error) {
	return cs.difficultyManager.RequiredDifficulty(storedPrev, timestamp)
}

// EstimateBlockTime estimates when the block at height was or will be
// mined, assuming a block every ten minutes from the chain head on. Heights
// below the head are estimated the same way rather than looked up.
func (cs *ChainState) EstimateBlockTime(height int32) time.Time {
	head := cs.ChainHead()
	offset := time.Duration(height - head.Height)
	return head.Header().Timestamp.Add(offset * estimatedBlockInterval)
}

// setChainHead records head through the mutator. The head becomes visible
// to ChainHead when the submission ends.
func (cs *ChainState) setChainHead(head *model.StoredBlock) error {
	err := cs.mutator.DoSetChainHead(head)
	if err != nil {
		return ruleerrors.NewStorageError(err)
	}
	cs.workingHead = head
	return nil
}

// publishChainHead makes the last recorded head visible to ChainHead.
func (cs *ChainState) publishChainHead() {
	cs.headLock.Lock()
	defer cs.headLock.Unlock()
	cs.head = cs.workingHead
}
