package app

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/domain/consensus/processes/chainstate"
	"github.com/ulordnet/ulordd/domain/consensus/ruleerrors"
	"github.com/ulordnet/ulordd/infrastructure/logger"
	"github.com/ulordnet/ulordd/util/panics"
	"github.com/ulordnet/ulordd/wire"
	"golang.org/x/sync/errgroup"
)

const (
	importQueueSize     = 256
	progressLogInterval = 1000
)

// BlockSubmitter is the part of the chain state the importer feeds.
type BlockSubmitter interface {
	Submit(block *wire.MsgBlock) (*chainstate.AddResult, error)
}

// ImportStats counts what became of the blocks of an import.
type ImportStats struct {
	Messages  int
	Skipped   int
	Accepted  int
	Deferred  int
	Rejected  int
	Connected int
}

// Importer reads framed block and headers messages and submits the blocks
// they carry in file order.
type Importer struct {
	submitter BlockSubmitter
	net       wire.UlordNet
}

// NewImporter returns an Importer submitting to submitter the messages of
// the given network.
func NewImporter(submitter BlockSubmitter, net wire.UlordNet) *Importer {
	return &Importer{submitter: submitter, net: net}
}

// Import decodes r in one goroutine and submits the decoded blocks in
// another. It returns once r is exhausted, on the first decoding or storage
// error, or when ctx is cancelled. Blocks that break a consensus rule are
// counted as rejected and do not stop the import.
func (imp *Importer) Import(ctx context.Context, r io.Reader) (*ImportStats, error) {
	defer logger.LogAndMeasureExecutionTime(log, "Import")()

	group, groupCtx := errgroup.WithContext(ctx)
	spawnInGroup := panics.GroupWrapperFunc(log, group)

	stats := &ImportStats{}
	blocks := make(chan *wire.MsgBlock, importQueueSize)
	spawnInGroup(func() error {
		defer close(blocks)
		return imp.decode(groupCtx, r, blocks, stats)
	})
	spawnInGroup(func() error {
		return imp.submitAll(groupCtx, blocks, stats)
	})

	err := group.Wait()
	return stats, err
}

// decode only writes the Messages and Skipped counters.
func (imp *Importer) decode(ctx context.Context, r io.Reader, blocks chan<- *wire.MsgBlock, stats *ImportStats) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, msg, _, err := wire.ReadMessage(r, imp.net)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var messageErr *wire.MessageError
			if errors.As(err, &messageErr) {
				stats.Skipped++
				log.Warnf("Skipping message %d: %s", stats.Messages+stats.Skipped, messageErr)
				continue
			}
			return errors.Wrapf(err, "failed to read message %d", stats.Messages+stats.Skipped+1)
		}
		stats.Messages++

		var batch []*wire.MsgBlock
		switch msg := msg.(type) {
		case *wire.MsgBlock:
			batch = []*wire.MsgBlock{msg}
		case *wire.MsgHeaders:
			batch = msg.Blocks()
		default:
			log.Debugf("Ignoring %s message", msg.Command())
			continue
		}

		for _, block := range batch {
			select {
			case blocks <- block:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// submitAll writes every counter but Messages and Skipped.
func (imp *Importer) submitAll(ctx context.Context, blocks <-chan *wire.MsgBlock, stats *ImportStats) error {
	for block := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := imp.submitter.Submit(block)
		if err != nil {
			if !ruleerrors.IsRuleError(err) {
				return err
			}
			stats.Rejected++
			log.Warnf("Rejected block %s: %s", block.BlockHash(), err)
			continue
		}

		if result.IsAccepted() {
			stats.Accepted++
		} else {
			stats.Deferred++
		}
		stats.Connected += len(result.ConnectedOrphans)
		if result.OrphanStorageError != nil {
			return result.OrphanStorageError
		}

		submitted := stats.Accepted + stats.Deferred + stats.Rejected
		if submitted%progressLogInterval == 0 {
			log.Infof("Submitted %d blocks (%d accepted, %d deferred, %d rejected)",
				submitted, stats.Accepted, stats.Deferred, stats.Rejected)
		}
	}
	return nil
}
