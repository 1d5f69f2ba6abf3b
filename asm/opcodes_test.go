// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "testing"

func TestOpcodeTable(t *testing.T) {
	list := Opcodes()
	if len(list) != 151 {
		t.Errorf("opcode table has %d rows, expected 151", len(list))
	}
	if n := len(Mnemonics()); n != 56 {
		t.Errorf("opcode table has %d mnemonics, expected 56", n)
	}

	seen := make(map[byte]Opcode)
	for _, op := range list {
		if prev, ok := seen[op.Byte]; ok {
			t.Errorf("$%02X used by %s %s and %s %s", op.Byte, prev.Mnemonic, prev.Mode, op.Mnemonic, op.Mode)
		}
		seen[op.Byte] = op

		got, ok := Lookup(op.Mnemonic, op.Mode)
		if !ok || got != op {
			t.Errorf("Lookup(%s, %s) = %+v, %v", op.Mnemonic, op.Mode, got, ok)
		}
		if op.Size != op.Mode.Size() {
			t.Errorf("%s %s has size %d", op.Mnemonic, op.Mode, op.Size)
		}
	}
}

var modeOperand = map[Mode]string{
	Implied:       "",
	Immediate:     "#$12",
	ZeroPage:      "$12",
	ZeroPageX:     "$12,X",
	ZeroPageY:     "$12,Y",
	Absolute:      "$1234",
	AbsoluteX:     "$1234,X",
	AbsoluteY:     "$1234,Y",
	IndirectX:     "($12,X)",
	IndirectY:     "($12),Y",
	Indirect:      "($1234)",
	LabelRelative: "target",
}

func TestOpcodeEncodeRoundTrip(t *testing.T) {
	for _, op := range Opcodes() {
		operand, ok := modeOperand[op.Mode]
		if !ok {
			t.Errorf("no operand for %s %s", op.Mnemonic, op.Mode)
			continue
		}

		p, err := Encode(op.Mnemonic, operand)
		if err != nil {
			t.Errorf("Encode(%s, %q): %v", op.Mnemonic, operand, err)
			continue
		}
		if p.Opcode != op.Byte || p.Size != op.Size || p.Mode != op.Mode {
			t.Errorf("Encode(%s, %q) = $%02X %s size %d, expected $%02X %s size %d",
				op.Mnemonic, operand, p.Opcode, p.Mode, p.Size, op.Byte, op.Mode, op.Size)
		}

		back, ok := Lookup(p.Mnemonic, p.Mode)
		if !ok || back.Byte != op.Byte || back.Size != op.Size {
			t.Errorf("Lookup(%s, %s) after Encode = %+v, %v", p.Mnemonic, p.Mode, back, ok)
		}
	}
}

func TestOpcodeLookup(t *testing.T) {
	tests := []struct {
		mnemonic string
		mode     Mode
		opcode   byte
		ok       bool
	}{
		{"ADC", Immediate, 0x69, true},
		{"adc", Absolute, 0x6d, true},
		{"ADC", IndirectX, 0x61, true},
		{"NOP", Implied, 0xea, true},
		{"JMP", Indirect, 0x6c, true},
		{"LDX", ZeroPageY, 0xb6, true},
		{"BNE", LabelRelative, 0xd0, true},
		{"ASL", Implied, 0x0a, true},
		{"STA", Immediate, 0, false},
		{"JMP", LabelAbsolute, 0, false},
		{"BNE", ZeroPage, 0, false},
		{"XYZ", Implied, 0, false},
	}
	for _, tt := range tests {
		op, ok := Lookup(tt.mnemonic, tt.mode)
		if ok != tt.ok || op.Byte != tt.opcode {
			t.Errorf("Lookup(%s, %s) = $%02X %v, expected $%02X %v",
				tt.mnemonic, tt.mode, op.Byte, ok, tt.opcode, tt.ok)
		}
	}
}

func TestResolveContext(t *testing.T) {
	tests := []struct {
		mnemonic string
		mode     Mode
		effMode  Mode
		opcode   byte
		ok       bool
	}{
		{"BNE", LabelAbsolute, LabelRelative, 0xd0, true},
		{"bcc", LabelAbsolute, LabelRelative, 0x90, true},
		{"JMP", LabelAbsolute, LabelAbsolute, 0x4c, true},
		{"LDA", LabelAbsolute, LabelAbsolute, 0xad, true},
		{"JMP", LabelIndirect, LabelIndirect, 0x6c, true},
		{"JSR", LabelAbsolute, LabelAbsolute, 0x20, true},
		{"LDA", LabelIndirect, LabelIndirect, 0, false},
		{"BNE", LabelIndirect, LabelIndirect, 0, false},
		{"RTS", LabelAbsolute, LabelAbsolute, 0, false},
	}
	for _, tt := range tests {
		mode, op, ok := Resolve(tt.mnemonic, tt.mode)
		if ok != tt.ok || op.Byte != tt.opcode || (ok && mode != tt.effMode) {
			t.Errorf("Resolve(%s, %s) = %s $%02X %v", tt.mnemonic, tt.mode, mode, op.Byte, ok)
		}
	}
}

func TestMnemonics(t *testing.T) {
	for _, name := range []string{"adc", "BRK", "Txs"} {
		if !IsMnemonic(name) {
			t.Errorf("%q should be a mnemonic", name)
		}
	}
	for _, name := range []string{"", "LOOP", "A", ".db", "BRA", "STZ"} {
		if IsMnemonic(name) {
			t.Errorf("%q should not be a mnemonic", name)
		}
	}

	branches := 0
	for _, m := range Mnemonics() {
		if IsBranch(m) {
			branches++
		}
	}
	if branches != 8 {
		t.Errorf("found %d branch mnemonics, expected 8", branches)
	}

	if n := len(OpcodesFor("LDA")); n != 8 {
		t.Errorf("LDA has %d forms, expected 8", n)
	}
	if OpcodesFor("LOOP") != nil {
		t.Error("OpcodesFor returned rows for a non-mnemonic")
	}
}
