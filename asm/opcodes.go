// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"sort"
	"strings"
)

// An Opcode describes one legal (mnemonic, addressing mode) combination and
// its machine encoding.
type Opcode struct {
	Mnemonic string // all-caps mnemonic
	Mode     Mode   // addressing mode of the table row
	Byte     byte   // opcode byte value
	Size     int    // combined size of opcode and operand, in bytes
}

// Opcode data for a (mnemonic, mode) pair
type opcodeData struct {
	name   string
	mode   Mode
	opcode byte
}

// All legal NMOS 6502 (mnemonic, mode) pairs. Branch instructions use the
// LabelRelative mode; accumulator forms use Implied.
var data = []opcodeData{
	{"LDA", Immediate, 0xa9},
	{"LDA", ZeroPage, 0xa5},
	{"LDA", ZeroPageX, 0xb5},
	{"LDA", Absolute, 0xad},
	{"LDA", AbsoluteX, 0xbd},
	{"LDA", AbsoluteY, 0xb9},
	{"LDA", IndirectX, 0xa1},
	{"LDA", IndirectY, 0xb1},

	{"LDX", Immediate, 0xa2},
	{"LDX", ZeroPage, 0xa6},
	{"LDX", ZeroPageY, 0xb6},
	{"LDX", Absolute, 0xae},
	{"LDX", AbsoluteY, 0xbe},

	{"LDY", Immediate, 0xa0},
	{"LDY", ZeroPage, 0xa4},
	{"LDY", ZeroPageX, 0xb4},
	{"LDY", Absolute, 0xac},
	{"LDY", AbsoluteX, 0xbc},

	{"STA", ZeroPage, 0x85},
	{"STA", ZeroPageX, 0x95},
	{"STA", Absolute, 0x8d},
	{"STA", AbsoluteX, 0x9d},
	{"STA", AbsoluteY, 0x99},
	{"STA", IndirectX, 0x81},
	{"STA", IndirectY, 0x91},

	{"STX", ZeroPage, 0x86},
	{"STX", ZeroPageY, 0x96},
	{"STX", Absolute, 0x8e},

	{"STY", ZeroPage, 0x84},
	{"STY", ZeroPageX, 0x94},
	{"STY", Absolute, 0x8c},

	{"ADC", Immediate, 0x69},
	{"ADC", ZeroPage, 0x65},
	{"ADC", ZeroPageX, 0x75},
	{"ADC", Absolute, 0x6d},
	{"ADC", AbsoluteX, 0x7d},
	{"ADC", AbsoluteY, 0x79},
	{"ADC", IndirectX, 0x61},
	{"ADC", IndirectY, 0x71},

	{"SBC", Immediate, 0xe9},
	{"SBC", ZeroPage, 0xe5},
	{"SBC", ZeroPageX, 0xf5},
	{"SBC", Absolute, 0xed},
	{"SBC", AbsoluteX, 0xfd},
	{"SBC", AbsoluteY, 0xf9},
	{"SBC", IndirectX, 0xe1},
	{"SBC", IndirectY, 0xf1},

	{"CMP", Immediate, 0xc9},
	{"CMP", ZeroPage, 0xc5},
	{"CMP", ZeroPageX, 0xd5},
	{"CMP", Absolute, 0xcd},
	{"CMP", AbsoluteX, 0xdd},
	{"CMP", AbsoluteY, 0xd9},
	{"CMP", IndirectX, 0xc1},
	{"CMP", IndirectY, 0xd1},

	{"CPX", Immediate, 0xe0},
	{"CPX", ZeroPage, 0xe4},
	{"CPX", Absolute, 0xec},

	{"CPY", Immediate, 0xc0},
	{"CPY", ZeroPage, 0xc4},
	{"CPY", Absolute, 0xcc},

	{"BIT", ZeroPage, 0x24},
	{"BIT", Absolute, 0x2c},

	{"CLC", Implied, 0x18},
	{"SEC", Implied, 0x38},
	{"CLI", Implied, 0x58},
	{"SEI", Implied, 0x78},
	{"CLD", Implied, 0xd8},
	{"SED", Implied, 0xf8},
	{"CLV", Implied, 0xb8},

	{"BCC", LabelRelative, 0x90},
	{"BCS", LabelRelative, 0xb0},
	{"BEQ", LabelRelative, 0xf0},
	{"BNE", LabelRelative, 0xd0},
	{"BMI", LabelRelative, 0x30},
	{"BPL", LabelRelative, 0x10},
	{"BVC", LabelRelative, 0x50},
	{"BVS", LabelRelative, 0x70},

	{"BRK", Implied, 0x00},

	{"AND", Immediate, 0x29},
	{"AND", ZeroPage, 0x25},
	{"AND", ZeroPageX, 0x35},
	{"AND", Absolute, 0x2d},
	{"AND", AbsoluteX, 0x3d},
	{"AND", AbsoluteY, 0x39},
	{"AND", IndirectX, 0x21},
	{"AND", IndirectY, 0x31},

	{"ORA", Immediate, 0x09},
	{"ORA", ZeroPage, 0x05},
	{"ORA", ZeroPageX, 0x15},
	{"ORA", Absolute, 0x0d},
	{"ORA", AbsoluteX, 0x1d},
	{"ORA", AbsoluteY, 0x19},
	{"ORA", IndirectX, 0x01},
	{"ORA", IndirectY, 0x11},

	{"EOR", Immediate, 0x49},
	{"EOR", ZeroPage, 0x45},
	{"EOR", ZeroPageX, 0x55},
	{"EOR", Absolute, 0x4d},
	{"EOR", AbsoluteX, 0x5d},
	{"EOR", AbsoluteY, 0x59},
	{"EOR", IndirectX, 0x41},
	{"EOR", IndirectY, 0x51},

	{"INC", ZeroPage, 0xe6},
	{"INC", ZeroPageX, 0xf6},
	{"INC", Absolute, 0xee},
	{"INC", AbsoluteX, 0xfe},

	{"DEC", ZeroPage, 0xc6},
	{"DEC", ZeroPageX, 0xd6},
	{"DEC", Absolute, 0xce},
	{"DEC", AbsoluteX, 0xde},

	{"INX", Implied, 0xe8},
	{"INY", Implied, 0xc8},

	{"DEX", Implied, 0xca},
	{"DEY", Implied, 0x88},

	{"JMP", Absolute, 0x4c},
	{"JMP", Indirect, 0x6c},

	{"JSR", Absolute, 0x20},
	{"RTS", Implied, 0x60},

	{"RTI", Implied, 0x40},

	{"NOP", Implied, 0xea},

	{"TAX", Implied, 0xaa},
	{"TXA", Implied, 0x8a},
	{"TAY", Implied, 0xa8},
	{"TYA", Implied, 0x98},
	{"TXS", Implied, 0x9a},
	{"TSX", Implied, 0xba},

	{"PHA", Implied, 0x48},
	{"PLA", Implied, 0x68},
	{"PHP", Implied, 0x08},
	{"PLP", Implied, 0x28},

	{"ASL", Implied, 0x0a},
	{"ASL", ZeroPage, 0x06},
	{"ASL", ZeroPageX, 0x16},
	{"ASL", Absolute, 0x0e},
	{"ASL", AbsoluteX, 0x1e},

	{"LSR", Implied, 0x4a},
	{"LSR", ZeroPage, 0x46},
	{"LSR", ZeroPageX, 0x56},
	{"LSR", Absolute, 0x4e},
	{"LSR", AbsoluteX, 0x5e},

	{"ROL", Implied, 0x2a},
	{"ROL", ZeroPage, 0x26},
	{"ROL", ZeroPageX, 0x36},
	{"ROL", Absolute, 0x2e},
	{"ROL", AbsoluteX, 0x3e},

	{"ROR", Implied, 0x6a},
	{"ROR", ZeroPage, 0x66},
	{"ROR", ZeroPageX, 0x76},
	{"ROR", Absolute, 0x6e},
	{"ROR", AbsoluteX, 0x7e},
}

// Mnemonics whose implied form operates on the accumulator, and so also
// accept "A" as an explicit operand.
var accumulatorOps = map[string]bool{
	"ASL": true,
	"LSR": true,
	"ROL": true,
	"ROR": true,
}

type opcodeKey struct {
	name string
	mode Mode
}

// A capability records which table rows a mnemonic has.
type capability struct {
	modes    []Mode
	branch   bool // the only label-bearing row is LabelRelative
	implied  bool // accepts no operand
	operands bool // accepts at least one operand form
}

var (
	opcodes      map[opcodeKey]*Opcode
	capabilities map[string]*capability
	mnemonics    []string
)

func init() {
	opcodes = make(map[opcodeKey]*Opcode, len(data))
	capabilities = make(map[string]*capability)

	used := make(map[byte]string, len(data))
	for _, d := range data {
		if prev, ok := used[d.opcode]; ok {
			panic(fmt.Sprintf("opcode $%02X assigned to both %s and %s", d.opcode, prev, d.name))
		}
		used[d.opcode] = d.name

		key := opcodeKey{d.name, d.mode}
		if _, ok := opcodes[key]; ok {
			panic(fmt.Sprintf("duplicate opcode row %s %s", d.name, d.mode))
		}
		opcodes[key] = &Opcode{
			Mnemonic: d.name,
			Mode:     d.mode,
			Byte:     d.opcode,
			Size:     d.mode.Size(),
		}

		c := capabilities[d.name]
		if c == nil {
			c = &capability{}
			capabilities[d.name] = c
			mnemonics = append(mnemonics, d.name)
		}
		c.modes = append(c.modes, d.mode)
		switch d.mode {
		case Implied:
			c.implied = true
		case LabelRelative:
			c.branch = true
			c.operands = true
		default:
			c.operands = true
		}
	}

	sort.Strings(mnemonics)
}

// IsMnemonic returns true if the string names a 6502 instruction. The
// comparison is case-insensitive.
func IsMnemonic(s string) bool {
	_, ok := capabilities[strings.ToUpper(s)]
	return ok
}

// IsBranch returns true if the mnemonic is a relative branch instruction.
func IsBranch(mnemonic string) bool {
	c, ok := capabilities[strings.ToUpper(mnemonic)]
	return ok && c.branch
}

// Mnemonics returns the sorted list of all instruction mnemonics.
func Mnemonics() []string {
	return append([]string(nil), mnemonics...)
}

// Lookup returns the opcode table row for a mnemonic and addressing mode.
// No context rules are applied: label modes other than LabelRelative have
// no rows of their own. See Resolve.
func Lookup(mnemonic string, mode Mode) (Opcode, bool) {
	op, ok := opcodes[opcodeKey{strings.ToUpper(mnemonic), mode}]
	if !ok {
		return Opcode{}, false
	}
	return *op, true
}

// Resolve applies the context rules that disambiguate label operands and
// returns the effective addressing mode together with the opcode row used
// to encode it. A bare label following a branch mnemonic becomes
// LabelRelative; otherwise it is LabelAbsolute and uses the Absolute row.
// LabelIndirect uses the Indirect row.
func Resolve(mnemonic string, mode Mode) (Mode, Opcode, bool) {
	name := strings.ToUpper(mnemonic)
	c, ok := capabilities[name]
	if !ok {
		return mode, Opcode{}, false
	}

	if mode == LabelAbsolute && c.branch {
		mode = LabelRelative
	}

	op, ok := opcodes[opcodeKey{name, mode.tableMode()}]
	if !ok {
		return mode, Opcode{}, false
	}
	return mode, *op, true
}

// Opcodes returns every row of the opcode table, ordered by mnemonic and
// then by addressing mode.
func Opcodes() []Opcode {
	list := make([]Opcode, 0, len(opcodes))
	for _, op := range opcodes {
		list = append(list, *op)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Mnemonic != list[j].Mnemonic {
			return list[i].Mnemonic < list[j].Mnemonic
		}
		return list[i].Mode < list[j].Mode
	})
	return list
}

// OpcodesFor returns the table rows of a single mnemonic.
func OpcodesFor(mnemonic string) []Opcode {
	c, ok := capabilities[strings.ToUpper(mnemonic)]
	if !ok {
		return nil
	}
	list := make([]Opcode, 0, len(c.modes))
	for _, m := range c.modes {
		list = append(list, *opcodes[opcodeKey{strings.ToUpper(mnemonic), m}])
	}
	return list
}
