package app

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/domain/consensus/datastructures/blockstore"
	"github.com/ulordnet/ulordd/domain/consensus/model"
	"github.com/ulordnet/ulordd/domain/consensus/processes/chainmutator"
	"github.com/ulordnet/ulordd/domain/consensus/processes/chainstate"
	"github.com/ulordnet/ulordd/infrastructure/config"
)

const (
	levelDBDirname = "blocks_leveldb"
	boltFilename   = "blocks.bolt"
)

// ComponentManager is a wrapper for all the ulordd services
type ComponentManager struct {
	cfg        *config.Config
	blockStore model.BlockStore
	chainState *chainstate.ChainState
	importer   *Importer

	shutdown int32
}

// NewComponentManager returns a new ComponentManager instance.
// Use Run() to import the configured file.
func NewComponentManager(cfg *config.Config) (*ComponentManager, error) {
	blockStore, err := openBlockStore(cfg)
	if err != nil {
		return nil, err
	}

	var mutator model.ChainMutator
	if cfg.HeadersOnly {
		mutator = chainmutator.NewHeadersMutator(blockStore)
	} else {
		mutator = chainmutator.NewFullMutator(blockStore)
	}

	chainState, err := chainstate.New(cfg.NetParams(), blockStore, mutator, nil)
	if err != nil {
		closeErr := blockStore.Close()
		if closeErr != nil {
			log.Errorf("Error closing the block store: %s", closeErr)
		}
		return nil, err
	}

	return &ComponentManager{
		cfg:        cfg,
		blockStore: blockStore,
		chainState: chainState,
		importer:   NewImporter(chainState, cfg.NetParams().Net),
	}, nil
}

// ChainState returns the chain state the imported blocks are submitted to.
func (a *ComponentManager) ChainState() *chainstate.ChainState {
	return a.chainState
}

// Run imports the configured file. An import stopped by cancelling ctx is
// not an error.
func (a *ComponentManager) Run(ctx context.Context) error {
	file, err := os.Open(a.cfg.ImportFile)
	if err != nil {
		return errors.Wrapf(err, "failed to open import file %s", a.cfg.ImportFile)
	}
	defer file.Close()

	startHead := a.chainState.ChainHead()
	log.Infof("Importing %s on top of %s", a.cfg.ImportFile, startHead)

	stats, err := a.importer.Import(ctx, file)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		log.Warnf("Import interrupted")
	}

	log.Infof("Read %d messages (%d skipped). Blocks: %d accepted, %d deferred, %d rejected, "+
		"%d orphans connected", stats.Messages, stats.Skipped, stats.Accepted, stats.Deferred,
		stats.Rejected, stats.Connected)
	log.Infof("Chain head is %s, %d orphans left in the pool",
		a.chainState.ChainHead(), a.chainState.OrphanCount())
	return nil
}

// Stop closes the block store.
func (a *ComponentManager) Stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&a.shutdown, 1) != 1 {
		log.Infof("ulordd is already in the process of shutting down")
		return
	}

	log.Warnf("ulordd shutting down")

	err := a.blockStore.Close()
	if err != nil {
		log.Errorf("Error closing the block store: %+v", err)
	}
}

func openBlockStore(cfg *config.Config) (model.BlockStore, error) {
	params := cfg.NetParams()

	var store model.BatchBlockStore
	switch cfg.DbType {
	case "memory":
		store = blockstore.NewMemoryStore(params)
	case "leveldb", "bolt":
		err := prepareDataDir(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		if cfg.DbType == "leveldb" {
			store, err = blockstore.NewLevelDBStore(filepath.Join(cfg.DataDir, levelDBDirname), params)
		} else {
			store, err = blockstore.NewBoltStore(filepath.Join(cfg.DataDir, boltFilename), params)
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unknown database type %s", cfg.DbType)
	}
	log.Infof("Opened the %s block store", cfg.DbType)

	if cfg.CacheSize == 0 {
		return store, nil
	}
	cachedStore, err := blockstore.NewCachedStore(store, cfg.CacheSize)
	if err != nil {
		closeErr := store.Close()
		if closeErr != nil {
			log.Errorf("Error closing the block store: %s", closeErr)
		}
		return nil, err
	}
	return cachedStore, nil
}

func prepareDataDir(dataDir string) error {
	err := os.MkdirAll(dataDir, 0700)
	if err != nil {
		return errors.WithStack(err)
	}

	versionFileExists, err := checkDatabaseVersion(dataDir)
	if err != nil {
		return err
	}
	if !versionFileExists {
		return createDatabaseVersionFile(dataDir)
	}
	return nil
}
