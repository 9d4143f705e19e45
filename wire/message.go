// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// MessageHeaderSize is the number of bytes in a ulord message header.
// Ulord network (magic) 4 bytes + command 12 bytes + payload length 4 bytes +
// checksum 4 bytes.
const MessageHeaderSize = 24

// CommandSize is the fixed size of all commands in the common ulord message
// header. Shorter commands must be zero padded.
const CommandSize = 12

// MaxMessagePayload is the maximum bytes a message can be regardless of other
// individual limits imposed by messages themselves.
const MaxMessagePayload = 1024 * 1024 * 32 // 32MB

// Commands used in ulord message headers which describe the type of message.
const (
	CmdBlock   = "block"
	CmdHeaders = "headers"
)

// UlordNet represents which ulord network a message belongs to.
type UlordNet uint32

// Constants used to indicate the message ulord network. They can also be
// used to seek to the next message when a stream's state is unknown.
const (
	MainNet  UlordNet = 0xb3016fb1
	TestNet  UlordNet = 0xc2e6cef3
	RegTest  UlordNet = 0xf0c5bbd0
	DevNet   UlordNet = 0xe2caffce
	UnitTest UlordNet = TestNet
)

var ulordNetStrings = map[UlordNet]string{
	MainNet: "MainNet",
	TestNet: "TestNet",
	RegTest: "RegTest",
	DevNet:  "DevNet",
}

// String returns the UlordNet in human-readable form.
func (n UlordNet) String() string {
	if s, ok := ulordNetStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown UlordNet (%d)", uint32(n))
}

// Message is an interface that describes a ulord message. A type that
// implements Message has complete control over the representation of its
// data and may therefore contain additional or fewer fields than those which
// are used directly in the protocol encoded message.
type Message interface {
	BtcDecode(io.Reader) error
	BtcEncode(io.Writer) error
	Command() string
	MaxPayloadLength() uint32
}

// makeEmptyMessage creates a message of the appropriate concrete type based
// on the command.
func makeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdBlock:
		return &MsgBlock{}, nil
	case CmdHeaders:
		return &MsgHeaders{}, nil
	}
	return nil, errors.Errorf("unhandled command [%s]", command)
}

// messageHeader defines the header structure for all ulord protocol
// messages.
type messageHeader struct {
	magic    UlordNet
	command  string
	length   uint32
	checksum [4]byte
}

// readMessageHeader reads a ulord message header from r.
func readMessageHeader(r io.Reader) (int, *messageHeader, error) {
	var headerBytes [MessageHeaderSize]byte
	n, err := io.ReadFull(r, headerBytes[:])
	if err != nil {
		return n, nil, errors.WithStack(err)
	}
	hr := bytes.NewReader(headerBytes[:])

	hdr := messageHeader{}
	var command [CommandSize]byte
	err = readElement(hr, &hdr.magic)
	if err != nil {
		return n, nil, err
	}
	_, _ = io.ReadFull(hr, command[:])
	err = readElements(hr, &hdr.length, &hdr.checksum)
	if err != nil {
		return n, nil, err
	}

	// Strip trailing zeros from command string.
	hdr.command = string(bytes.TrimRight(command[:], "\x00"))
	return n, &hdr, nil
}

// discardInput reads n bytes from reader r in chunks and discards the read
// bytes. This is used to skip payloads when various errors occur and helps
// prevent rogue nodes from causing massive memory allocation through forging
// header length.
func discardInput(r io.Reader, n uint32) {
	_, _ = io.CopyN(io.Discard, r, int64(n))
}

// WriteMessage writes a ulord Message to w including the necessary header
// information and returns the number of bytes written.
func WriteMessage(w io.Writer, msg Message, net UlordNet) (int, error) {
	cmd := msg.Command()
	if len(cmd) > CommandSize {
		str := fmt.Sprintf("command [%s] is too long [max %v]", cmd, CommandSize)
		return 0, messageError("WriteMessage", str)
	}
	var command [CommandSize]byte
	copy(command[:], cmd)

	var bw bytes.Buffer
	err := msg.BtcEncode(&bw)
	if err != nil {
		return 0, err
	}
	payload := bw.Bytes()
	lenp := len(payload)

	// Enforce maximum overall message payload.
	if lenp > MaxMessagePayload {
		str := fmt.Sprintf("message payload is too large - encoded "+
			"%d bytes, but maximum message payload is %d bytes",
			lenp, MaxMessagePayload)
		return 0, messageError("WriteMessage", str)
	}

	// Enforce maximum message payload based on the message type.
	mpl := msg.MaxPayloadLength()
	if uint32(lenp) > mpl {
		str := fmt.Sprintf("message payload is too large - encoded "+
			"%d bytes, but maximum message payload size for "+
			"messages of type [%s] is %d.", lenp, cmd, mpl)
		return 0, messageError("WriteMessage", str)
	}

	hdr := messageHeader{magic: net, length: uint32(lenp)}
	copy(hdr.checksum[:], chainhash.DoubleHashB(payload)[0:4])

	hw := bytes.NewBuffer(make([]byte, 0, MessageHeaderSize+lenp))
	_ = writeElement(hw, hdr.magic)
	hw.Write(command[:])
	_ = writeElements(hw, hdr.length, hdr.checksum)
	hw.Write(payload)

	n, err := w.Write(hw.Bytes())
	return n, errors.WithStack(err)
}

// ReadMessage reads, validates, and parses the next ulord Message from r for
// the provided ulord network. It returns the number of bytes read in
// addition to the parsed Message and raw bytes which comprise the message.
func ReadMessage(r io.Reader, net UlordNet) (int, Message, []byte, error) {
	totalBytes := 0
	n, hdr, err := readMessageHeader(r)
	totalBytes += n
	if err != nil {
		return totalBytes, nil, nil, err
	}

	// Enforce maximum message payload.
	if hdr.length > MaxMessagePayload {
		str := fmt.Sprintf("message payload is too large - header "+
			"indicates %d bytes, but max message payload is %d "+
			"bytes.", hdr.length, MaxMessagePayload)
		return totalBytes, nil, nil, messageError("ReadMessage", str)
	}

	// Check for messages from the wrong ulord network.
	if hdr.magic != net {
		discardInput(r, hdr.length)
		str := fmt.Sprintf("message from other network [%v]", hdr.magic)
		return totalBytes, nil, nil, messageError("ReadMessage", str)
	}

	// Check for malformed commands.
	command := hdr.command
	if !utf8.ValidString(command) {
		discardInput(r, hdr.length)
		str := fmt.Sprintf("invalid command %v", []byte(command))
		return totalBytes, nil, nil, messageError("ReadMessage", str)
	}

	// Create struct of appropriate message type based on the command.
	msg, err := makeEmptyMessage(command)
	if err != nil {
		discardInput(r, hdr.length)
		return totalBytes, nil, nil, messageError("ReadMessage", err.Error())
	}

	// Check for maximum length based on the message type as a malicious
	// client could otherwise create a well-formed header and set the length
	// to max numbers in order to exhaust the machine's memory.
	mpl := msg.MaxPayloadLength()
	if hdr.length > mpl {
		discardInput(r, hdr.length)
		str := fmt.Sprintf("payload exceeds max length - header "+
			"indicates %v bytes, but max payload size for "+
			"messages of type [%v] is %v.", hdr.length, command, mpl)
		return totalBytes, nil, nil, messageError("ReadMessage", str)
	}

	// Read payload.
	payload := make([]byte, hdr.length)
	n, err = io.ReadFull(r, payload)
	totalBytes += n
	if err != nil {
		return totalBytes, nil, nil, errors.WithStack(err)
	}

	// Test checksum.
	checksum := chainhash.DoubleHashB(payload)[0:4]
	if !bytes.Equal(checksum, hdr.checksum[:]) {
		str := fmt.Sprintf("payload checksum failed - header "+
			"indicates %x, but actual checksum is %x.",
			hdr.checksum, checksum)
		return totalBytes, nil, nil, messageError("ReadMessage", str)
	}

	pr := bytes.NewBuffer(payload)
	err = msg.BtcDecode(pr)
	if err != nil {
		return totalBytes, nil, nil, err
	}

	return totalBytes, msg, payload, nil
}
