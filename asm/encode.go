// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// A Packet is a single encoded instruction.
type Packet struct {
	Mnemonic string // all-caps mnemonic
	Mode     Mode   // effective addressing mode, after context rules
	Opcode   byte   // opcode byte
	Size     int    // combined size of opcode and operand, in bytes
	Value    uint16 // operand value: address, immediate, or displacement
	Target   uint16 // branch target address, for relative modes
	Label    string // referenced label, for label modes
	Relative bool   // Value holds a two's-complement displacement
	resolved bool
}

// Encode classifies the operand of an instruction and selects its opcode.
// For numeric operands the returned packet is complete. For label operands
// only the size is final; the packet's Value must be supplied with Resolve
// once the label's address is known.
func Encode(mnemonic, operand string) (Packet, error) {
	name := strings.ToUpper(mnemonic)
	c, ok := capabilities[name]
	if !ok {
		return Packet{}, newEncodeError(IllegalCombination, "unknown instruction '%s'", mnemonic)
	}

	mode, text := classify(operand)
	if mode != Implied && accumulatorOps[name] && strings.EqualFold(operand, "a") {
		mode, text = Implied, ""
	}

	switch {
	case mode == Invalid:
		return Packet{}, newEncodeError(IllegalCombination,
			"illegal combination of opcode and operands: invalid operand '%s'", operand)
	case mode == Implied && !c.implied:
		return Packet{}, newEncodeError(IllegalCombination,
			"illegal combination of opcode and operands: %s requires an operand", name)
	case mode != Implied && !c.operands:
		return Packet{}, newEncodeError(IllegalCombination,
			"illegal combination of opcode and operands: %s takes no operand", name)
	}

	mode, op, ok := Resolve(name, mode)
	if !ok {
		return Packet{}, newEncodeError(IllegalCombination,
			"illegal combination of opcode and operands: %s %s", name, operand)
	}

	p := Packet{
		Mnemonic: name,
		Mode:     mode,
		Opcode:   op.Byte,
		Size:     op.Size,
		Relative: mode.IsRelative(),
	}

	switch {
	case mode == Implied:
		p.resolved = true
	case mode.IsLabel():
		p.Label = text
	default:
		v, err := parseHex(text)
		if err != nil {
			return Packet{}, newEncodeError(InternalError,
				"internal error: operand '%s' matched %s but did not parse: %v", operand, mode, err)
		}
		p.Value = v
		p.resolved = true
	}

	return p, nil
}

// IsResolved returns true once the packet's operand value is known.
func (p *Packet) IsResolved() bool {
	return p.resolved
}

// Resolve supplies the address of the packet's label. pc is the address
// of the instruction itself. Relative modes store the displacement from
// the following instruction and fail if it does not fit in a signed byte.
func (p *Packet) Resolve(target, pc uint16) error {
	if !p.Relative {
		p.Value = target
		p.resolved = true
		return nil
	}

	p.Target = target
	next := pc + uint16(p.Size)
	d, err := relOffset(target, next)
	if err != nil {
		return newEncodeError(BranchOutOfRange,
			"branch out of range: %s is %d bytes from the next instruction",
			p.Label, int16(target-next))
	}
	p.Value = uint16(d)
	p.resolved = true
	return nil
}

// Bytes returns the machine code for the packet, with any 16-bit operand
// in little-endian order.
func (p *Packet) Bytes() []byte {
	switch p.Size {
	case 1:
		return []byte{p.Opcode}
	case 2:
		return []byte{p.Opcode, lowByte(p.Value)}
	default:
		return []byte{p.Opcode, lowByte(p.Value), highByte(p.Value)}
	}
}

// PageBoundaryBug returns true for an indirect JMP whose pointer sits on
// the last byte of a page. The 6502 fetches the pointer's high byte from
// the start of the same page instead of the next one.
func (p *Packet) PageBoundaryBug() bool {
	if p.Mode != Indirect && p.Mode != LabelIndirect {
		return false
	}
	return p.resolved && lowByte(p.Value) == 0xff
}

// Format an operand string based on the instruction's addressing mode.
func (p *Packet) operandString() string {
	switch {
	case p.Mode == Implied:
		return ""
	case p.Relative:
		return fmt.Sprintf(modeFormat[p.Mode], fmt.Sprintf("%04X", p.Target))
	case p.Size == 2:
		return fmt.Sprintf(modeFormat[p.Mode], fmt.Sprintf("%02X", p.Value))
	default:
		return fmt.Sprintf(modeFormat[p.Mode], fmt.Sprintf("%04X", p.Value))
	}
}

// Parse the hex digits captured by an operand grammar.
func parseHex(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	return uint16(v), err
}

// Compute the relative offset of two addresses as a
// two's-complement byte value. Addresses wrap at 64K.
// If the offset can't fit into a byte, return an error.
func relOffset(addr1, addr2 uint16) (byte, error) {
	diff := int(int16(addr1 - addr2))
	switch {
	case diff < -128 || diff > 127:
		return 0, ErrBranchOutOfRange
	case diff >= 0:
		return byte(diff), nil
	default:
		return byte(256 + diff), nil
	}
}
