// Package difficulty converts between 256-bit proof-of-work targets and
// their compact representation, and measures the work a target stands for.
package difficulty

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	// bigOne is 1 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// oneLsh256 is 1 shifted left 256 bits.
	oneLsh256 = new(big.Int).Lsh(bigOne, 256)
)

// HashToBig converts a chainhash.Hash into a big.Int that can be used to
// perform math comparisons. Hashes are stored little-endian, so the bytes
// are reversed before conversion.
func HashToBig(hash *chainhash.Hash) *big.Int {
	buf := *hash
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// CompactToBig converts a compact representation of a whole number N to an
// unsigned 32-bit number. The representation is similar to IEEE754 floating
// point numbers.
//
// Like IEEE754 floating point, there are three basic components: the sign,
// the exponent, and the mantissa. They are broken out as follows:
//
//   - the most significant 8 bits represent the unsigned base 256 exponent
//
//   - bit 23 (the 24th bit) represents the sign bit
//
//   - the least significant 23 bits represent the mantissa
//
//     -------------------------------------------------
//     |   Exponent     |    Sign    |    Mantissa     |
//     -------------------------------------------------
//     | 8 bits [31-24] | 1 bit [23] | 23 bits [22-00] |
//     -------------------------------------------------
//
// The formula to calculate N is:
//
//	N = (-1^sign) * mantissa * 256^(exponent-3)
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	// Since the base for the exponent is 256, the exponent can be treated
	// as the number of bytes to represent the full 256-bit number.
	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact converts a whole number N to a compact representation using
// an unsigned 32-bit number. The compact representation only provides 23
// bits of precision, so values larger than (2^23 - 1) only encode the most
// significant digits of the number. See CompactToBig for details.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	abs := new(big.Int).Abs(n)
	exponent := uint(len(abs.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(abs.Uint64())
		mantissa <<= 8 * (3 - exponent)
	} else {
		mantissa = uint32(abs.Rsh(abs, 8*(exponent-3)).Uint64())
	}

	// When the mantissa already has the sign bit set, the number is too
	// large to fit into the available 23-bits, so divide the number by 256
	// and increment the exponent accordingly.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// CalcWork calculates a work value from difficulty bits. The work of a
// block is the expected number of hashes needed to solve it, which is
// 2^256 / (target+1). A non-positive target yields zero work.
func CalcWork(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	denominator := new(big.Int).Add(target, bigOne)
	return new(big.Int).Div(oneLsh256, denominator)
}

// AccuracyBytes returns the number of low-order bytes below the mantissa of
// bits. It is negative for exponents smaller than 3.
func AccuracyBytes(bits uint32) int {
	return int(bits>>24) - 3
}

// ReducePrecision drops the bits of target that the compact form bits can
// not carry, so that a freshly computed target can be compared with a
// declared one.
func ReducePrecision(target *big.Int, bits uint32) *big.Int {
	mask := big.NewInt(0xffffff)
	accuracyBytes := AccuracyBytes(bits)
	if accuracyBytes >= 0 {
		mask.Lsh(mask, uint(accuracyBytes*8))
	} else {
		mask.Rsh(mask, uint(-accuracyBytes*8))
	}
	return new(big.Int).And(target, mask)
}

// TruncateToCompact packs the mantissa bytes of target selected by the
// exponent of bits into a compact value with that same exponent. Unlike
// BigToCompact it never renormalizes, which is what the tolerance based
// difficulty comparison expects.
func TruncateToCompact(target *big.Int, bits uint32) uint32 {
	accuracyBytes := AccuracyBytes(bits)
	shifted := new(big.Int)
	if accuracyBytes >= 0 {
		shifted.Rsh(target, uint(accuracyBytes*8))
	} else {
		shifted.Lsh(target, uint(-accuracyBytes*8))
	}
	return uint32(accuracyBytes+3)<<24 | uint32(shifted.Uint64())
}

// ConvertBitsToDouble returns the difficulty of bits relative to the
// 0x1d00ffff reference target, as a floating point number.
func ConvertBitsToDouble(bits uint32) float64 {
	shift := (bits >> 24) & 0xff
	diff := float64(0x0000ffff) / float64(bits&0x00ffffff)
	for ; shift < 29; shift++ {
		diff *= 256.0
	}
	for ; shift > 29; shift-- {
		diff /= 256.0
	}
	return diff
}
