// File: protocol/frame.go
// Package protocol implements the rhubarb binary frame model.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

// Opcode is the 4-bit frame type tag. The full 4-bit space maps onto
// seven variants: the ranges 0x3–0x7 and 0xB–0xF collapse to
// OpcodeReserved during decode, so an Opcode held by a Frame is always
// one of the named values below.
type Opcode byte

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA

	// OpcodeReserved is the canonical value for every unassigned nibble.
	OpcodeReserved Opcode = 0xF
)

// normalizeOpcode maps a raw 4-bit nibble onto the closed variant set.
func normalizeOpcode(nibble byte) Opcode {
	switch Opcode(nibble & 0x0F) {
	case OpcodeContinuation, OpcodeText, OpcodeBinary,
		OpcodeClose, OpcodePing, OpcodePong:
		return Opcode(nibble & 0x0F)
	default:
		return OpcodeReserved
	}
}

func (op Opcode) String() string {
	switch op {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return "reserved"
	}
}

// Frame is one decoded rhubarb frame. It is constructed transiently per
// send or receive event and has no identity beyond that.
//
// Payload always holds the logical, unmasked bytes; masking is applied
// on the wire only. PayloadLen counts bytes. MaskKey is meaningful only
// when Masked is true.
type Frame struct {
	Fin        bool
	Opcode     Opcode
	Masked     bool
	PayloadLen uint64
	MaskKey    [4]byte
	Payload    []byte
}

// NewTextFrame builds a final text frame. A non-nil maskKey marks the
// frame as masked, as required for client-originated traffic.
func NewTextFrame(text string, maskKey *[4]byte) *Frame {
	return newFrame(OpcodeText, []byte(text), maskKey)
}

// NewBinaryFrame builds a final binary frame.
func NewBinaryFrame(data []byte, maskKey *[4]byte) *Frame {
	return newFrame(OpcodeBinary, data, maskKey)
}

func newFrame(op Opcode, data []byte, maskKey *[4]byte) *Frame {
	f := &Frame{
		Fin:        true,
		Opcode:     op,
		PayloadLen: uint64(len(data)),
		Payload:    data,
	}
	if maskKey != nil {
		f.Masked = true
		f.MaskKey = *maskKey
	}
	return f
}
