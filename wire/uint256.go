package wire

import (
	"encoding/hex"
	"math/big"

	"github.com/pkg/errors"
)

// Uint256Size is the number of bytes of a Uint256.
const Uint256Size = 32

// Uint256 is an unsigned 256-bit integer stored in little-endian byte
// order, as it appears on the wire. Ulord block nonces are Uint256 values.
type Uint256 [Uint256Size]byte

// Uint256FromUint64 returns v as a Uint256.
func Uint256FromUint64(v uint64) Uint256 {
	var u Uint256
	for i := 0; i < 8; i++ {
		u[i] = byte(v >> (8 * i))
	}
	return u
}

// NewUint256FromStr parses a big-endian hex string of at most 64 digits.
func NewUint256FromStr(s string) (Uint256, error) {
	var u Uint256
	if len(s) > Uint256Size*2 {
		return u, errors.Errorf("max uint256 string length is %d, got %d", Uint256Size*2, len(s))
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return u, errors.WithStack(err)
	}
	for i, b := range decoded {
		u[len(decoded)-1-i] = b
	}
	return u, nil
}

// Increment adds one to u, wrapping around on overflow.
func (u *Uint256) Increment() {
	for i := range u {
		u[i]++
		if u[i] != 0 {
			return
		}
	}
}

// Big returns u as a big.Int.
func (u Uint256) Big() *big.Int {
	var be [Uint256Size]byte
	for i, b := range u {
		be[Uint256Size-1-i] = b
	}
	return new(big.Int).SetBytes(be[:])
}

// String returns u as a 64 digit big-endian hex string.
func (u Uint256) String() string {
	var be [Uint256Size]byte
	for i, b := range u {
		be[Uint256Size-1-i] = b
	}
	return hex.EncodeToString(be[:])
}
