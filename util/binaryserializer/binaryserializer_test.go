package binaryserializer

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
)

func TestRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := PutUint8(buf, 0xab); err != nil {
		t.Fatalf("TestRoundTrip: PutUint8: %s", err)
	}
	if err := PutUint32(buf, 0xb3016fb1); err != nil {
		t.Fatalf("TestRoundTrip: PutUint32: %s", err)
	}
	if err := PutUint64(buf, 100000000); err != nil {
		t.Fatalf("TestRoundTrip: PutUint64: %s", err)
	}
	want := []byte{0xab, 0xb1, 0x6f, 0x01, 0xb3, 0x00, 0xe1, 0xf5, 0x05, 0, 0, 0, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("TestRoundTrip: got %x want %x", buf.Bytes(), want)
	}

	u8, err := Uint8(buf)
	if err != nil || u8 != 0xab {
		t.Fatalf("TestRoundTrip: Uint8: got %x, %v", u8, err)
	}
	u32, err := Uint32(buf)
	if err != nil || u32 != 0xb3016fb1 {
		t.Fatalf("TestRoundTrip: Uint32: got %x, %v", u32, err)
	}
	u64, err := Uint64(buf)
	if err != nil || u64 != 100000000 {
		t.Fatalf("TestRoundTrip: Uint64: got %d, %v", u64, err)
	}

	_, err = Uint32(bytes.NewReader([]byte{1, 2}))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("TestRoundTrip: short read: got %v want %v", err, io.ErrUnexpectedEOF)
	}
}
