// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/util/binaryserializer"
)

// pver is the protocol version handed to the btcd varint codecs. Ulord
// encodings do not depend on it.
const pver = 0

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

// uint32Time represents a unix timestamp encoded with a uint32. It is used
// as a way to signal the readElement function how to decode a timestamp into
// a Go time.Time since it is otherwise ambiguous.
type uint32Time time.Time

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		rv, err := binaryserializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = int32(rv)
		return nil

	case *uint32:
		rv, err := binaryserializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil

	case *int64:
		rv, err := binaryserializer.Uint64(r)
		if err != nil {
			return err
		}
		*e = int64(rv)
		return nil

	case *uint32Time:
		rv, err := binaryserializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = uint32Time(time.Unix(int64(rv), 0))
		return nil

	case *[4]byte:
		_, err := io.ReadFull(r, e[:])
		return errors.WithStack(err)

	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return errors.WithStack(err)

	case *Uint256:
		_, err := io.ReadFull(r, e[:])
		return errors.WithStack(err)

	case *UlordNet:
		rv, err := binaryserializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = UlordNet(rv)
		return nil
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
}

// readElements reads multiple items from r. It is equivalent to multiple
// calls to readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := readElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		return binaryserializer.PutUint32(w, uint32(e))

	case uint32:
		return binaryserializer.PutUint32(w, e)

	case int64:
		return binaryserializer.PutUint64(w, uint64(e))

	case uint32Time:
		return binaryserializer.PutUint32(w, uint32(time.Time(e).Unix()))

	case [4]byte:
		_, err := w.Write(e[:])
		return errors.WithStack(err)

	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return errors.WithStack(err)

	case *Uint256:
		_, err := w.Write(e[:])
		return errors.WithStack(err)

	case UlordNet:
		return binaryserializer.PutUint32(w, uint32(e))
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
}

// writeElements writes multiple items to w. It is equivalent to multiple
// calls to writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := writeElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadVarInt reads a variable length integer from r.
func ReadVarInt(r io.Reader) (uint64, error) {
	count, err := btcwire.ReadVarInt(r, pver)
	return count, errors.WithStack(err)
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value.
func WriteVarInt(w io.Writer, val uint64) error {
	return errors.WithStack(btcwire.WriteVarInt(w, pver, val))
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	return btcwire.VarIntSerializeSize(val)
}

// readVarBytes reads a variable length byte array of at most maxAllowed
// bytes.
func readVarBytes(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	b, err := btcwire.ReadVarBytes(r, pver, maxAllowed, fieldName)
	return b, errors.WithStack(err)
}

func writeVarBytes(w io.Writer, bytes []byte) error {
	return errors.WithStack(btcwire.WriteVarBytes(w, pver, bytes))
}
