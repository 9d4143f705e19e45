package pow

import (
	"math/big"

	"github.com/ulordnet/ulordd/domain/consensus/ruleerrors"
	"github.com/ulordnet/ulordd/util/difficulty"
	"github.com/ulordnet/ulordd/wire"
)

// CheckProofOfWorkWithTarget checks if the block hash is at most the provided target.
// It does not check if the target itself is valid for the appropriate network
func CheckProofOfWorkWithTarget(header *wire.BlockHeader, target *big.Int) bool {
	hash := header.BlockHash()
	return difficulty.HashToBig(&hash).Cmp(target) <= 0
}

// CheckProofOfWork checks that the target the header declares lies in
// (0, maxTarget] and that the header hash does not exceed it.
func CheckProofOfWork(header *wire.BlockHeader, maxTarget *big.Int) error {
	target := difficulty.CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		return ruleerrors.Errorf(ruleerrors.ErrProofOfWorkInvalid,
			"block target difficulty of %064x is too low", target)
	}
	if target.Cmp(maxTarget) > 0 {
		return ruleerrors.Errorf(ruleerrors.ErrProofOfWorkInvalid,
			"block target difficulty of %064x is higher than max of %064x", target, maxTarget)
	}
	if !CheckProofOfWorkWithTarget(header, target) {
		hash := header.BlockHash()
		return ruleerrors.Errorf(ruleerrors.ErrProofOfWorkInvalid,
			"block hash of %s is higher than expected max of %064x", hash, target)
	}
	return nil
}
