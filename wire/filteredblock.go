package wire

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// FilteredBlock is a block header as delivered after filtering, together
// with the total number of transactions of the full block, the hashes of
// the transactions that matched the filter, and those matching
// transactions that were sent along.
type FilteredBlock struct {
	Header            BlockHeader
	TotalTransactions uint32
	MatchedHashes     []chainhash.Hash

	// AssociatedTransactions is keyed by transaction hash. Its keys are a
	// subset of MatchedHashes.
	AssociatedTransactions map[chainhash.Hash]*MsgTx
}

// NewFilteredBlock returns a filtered block with no associated
// transactions.
func NewFilteredBlock(header *BlockHeader, totalTransactions uint32, matchedHashes []chainhash.Hash) *FilteredBlock {
	return &FilteredBlock{
		Header:                 *header,
		TotalTransactions:      totalTransactions,
		MatchedHashes:          matchedHashes,
		AssociatedTransactions: make(map[chainhash.Hash]*MsgTx),
	}
}

// BlockHash returns the hash of the filtered block's header.
func (fb *FilteredBlock) BlockHash() chainhash.Hash {
	return fb.Header.BlockHash()
}

// ProvideTransaction associates tx with the block. It returns false when
// the transaction's hash did not match the filter.
func (fb *FilteredBlock) ProvideTransaction(tx *MsgTx) bool {
	hash := tx.TxHash()
	for i := range fb.MatchedHashes {
		if fb.MatchedHashes[i] == hash {
			if fb.AssociatedTransactions == nil {
				fb.AssociatedTransactions = make(map[chainhash.Hash]*MsgTx)
			}
			fb.AssociatedTransactions[hash] = tx
			return true
		}
	}
	return false
}

// HeaderBlock returns the header of the filtered block as a header-only
// block.
func (fb *FilteredBlock) HeaderBlock() *MsgBlock {
	return &MsgBlock{Header: fb.Header}
}
