// File: protocol/frame_codec.go
// Package protocol implements the rhubarb frame codec with payload size
// enforcement.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pure, stateless translation between Frame and its wire bytes. Extended
// payload lengths travel in network byte order, masking is XOR with the
// repeating 4-byte key, and every malformed or short input decodes to a
// typed error instead of a panic.

package protocol

import (
	"encoding/binary"
	"errors"
)

// MaxFramePayload caps the payload size a single frame may declare.
// Protects against attacker-declared lengths exhausting memory before a
// single payload byte has arrived.
const MaxFramePayload = 1 << 20 // 1 MiB

var (
	// ErrFrameTruncated reports fewer input bytes than the frame header
	// declares, at any stage of decoding.
	ErrFrameTruncated = errors.New("frame: truncated input")

	// ErrFrameTooLarge reports a declared payload above MaxFramePayload.
	ErrFrameTooLarge = errors.New("frame: payload exceeds maximum allowed size")
)

// EncodeFrame serializes f into wire bytes.
//
// The length field always uses the minimal encoding: a literal for
// payloads up to 125 bytes, the 16-bit extension up to 65535, the 64-bit
// extension beyond. Extended lengths are written most-significant byte
// first. When f.Masked is set, the 4 key bytes follow the length and the
// payload is XORed with the key on its way out; f.Payload itself is
// never modified.
func EncodeFrame(f *Frame) ([]byte, error) {
	plen := len(f.Payload)
	if uint64(plen) > MaxFramePayload {
		return nil, ErrFrameTooLarge
	}

	buf := make([]byte, 0, MaxFrameHeaderLen+plen)

	b0 := byte(f.Opcode) & 0x0F
	if f.Fin {
		b0 |= FinBit
	}
	buf = append(buf, b0)

	var maskBit byte
	if f.Masked {
		maskBit = MaskBit
	}

	switch {
	case plen <= 125:
		buf = append(buf, byte(plen)|maskBit)
	case plen <= 0xFFFF:
		buf = append(buf, Len16Bit|maskBit)
		var ext [2]byte
		binary.BigEndian.PutUint16(ext[:], uint16(plen))
		buf = append(buf, ext[:]...)
	default:
		buf = append(buf, Len64Bit|maskBit)
		var ext [8]byte
		binary.BigEndian.PutUint64(ext[:], uint64(plen))
		buf = append(buf, ext[:]...)
	}

	if f.Masked {
		buf = append(buf, f.MaskKey[:]...)
		start := len(buf)
		buf = append(buf, f.Payload...)
		maskInPlace(buf[start:], f.MaskKey)
		return buf, nil
	}

	buf = append(buf, f.Payload...)
	return buf, nil
}

// DecodeFrame parses one frame from the front of raw.
//
// Returns the frame, the number of bytes consumed, and an error. All
// three length encodings are accepted; extended lengths are read most-
// significant byte first. A masked frame's payload is unmasked before it
// reaches the returned Frame. If raw holds fewer bytes than the header
// declares at any stage, the result is ErrFrameTruncated — never a panic
// or an out-of-bounds read.
func DecodeFrame(raw []byte) (*Frame, int, error) {
	if len(raw) < 2 {
		return nil, 0, ErrFrameTruncated
	}

	f := &Frame{
		Fin:    raw[0]&FinBit != 0,
		Opcode: normalizeOpcode(raw[0]),
		Masked: raw[1]&MaskBit != 0,
	}
	length := uint64(raw[1] & 0x7F)
	offset := 2

	switch length {
	case Len16Bit:
		if len(raw) < offset+2 {
			return nil, 0, ErrFrameTruncated
		}
		length = uint64(binary.BigEndian.Uint16(raw[offset:]))
		offset += 2
	case Len64Bit:
		if len(raw) < offset+8 {
			return nil, 0, ErrFrameTruncated
		}
		length = binary.BigEndian.Uint64(raw[offset:])
		offset += 8
	}

	if length > MaxFramePayload {
		return nil, 0, ErrFrameTooLarge
	}

	if f.Masked {
		if len(raw) < offset+4 {
			return nil, 0, ErrFrameTruncated
		}
		copy(f.MaskKey[:], raw[offset:offset+4])
		offset += 4
	}

	total := offset + int(length)
	if len(raw) < total {
		return nil, 0, ErrFrameTruncated
	}

	f.PayloadLen = length
	f.Payload = make([]byte, length)
	copy(f.Payload, raw[offset:total])
	if f.Masked {
		maskInPlace(f.Payload, f.MaskKey)
	}

	return f, total, nil
}

// maskInPlace XORs buf with the repeating key. Masking and unmasking are
// the same operation.
func maskInPlace(buf []byte, key [4]byte) {
	for i := range buf {
		buf[i] ^= key[i%4]
	}
}
