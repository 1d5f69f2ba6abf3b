// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"regexp"
	"strings"
)

// Mode describes the operand shape of an instruction.
type Mode byte

// All addressing modes recognized by the assembler.
const (
	Invalid       Mode = iota // operand matches no known shape
	Implied                   // no operand
	Immediate                 // #$HH
	ZeroPage                  // $HH
	ZeroPageX                 // $HH,X
	ZeroPageY                 // $HH,Y
	Absolute                  // $HHHH
	AbsoluteX                 // $HHHH,X
	AbsoluteY                 // $HHHH,Y
	IndirectX                 // ($HH,X)
	IndirectY                 // ($HH),Y
	Indirect                  // ($HHHH)
	LabelAbsolute             // label
	LabelIndirect             // (label)
	LabelRelative             // label, branch target
)

var modeName = []string{
	"???",
	"IMP",
	"IMM",
	"ZPG",
	"ZPX",
	"ZPY",
	"ABS",
	"ABX",
	"ABY",
	"IDX",
	"IDY",
	"IND",
	"LAB",
	"LIN",
	"REL",
}

var modeFormat = []string{
	"%s",      // ???
	"%s",      // IMP
	"#$%s",    // IMM
	"$%s",     // ZPG
	"$%s,X",   // ZPX
	"$%s,Y",   // ZPY
	"$%s",     // ABS
	"$%s,X",   // ABX
	"$%s,Y",   // ABY
	"($%s,X)", // IDX
	"($%s),Y", // IDY
	"($%s)",   // IND
	"$%s",     // LAB
	"($%s)",   // LIN
	"$%s",     // REL
}

func (m Mode) String() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return modeName[Invalid]
}

// Size returns the number of bytes occupied by an instruction encoded with
// this addressing mode, including the opcode byte. Invalid returns 0.
func (m Mode) Size() int {
	switch m {
	case Implied:
		return 1
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, IndirectX, IndirectY, LabelRelative:
		return 2
	case Absolute, AbsoluteX, AbsoluteY, Indirect, LabelAbsolute, LabelIndirect:
		return 3
	default:
		return 0
	}
}

// IsLabel returns true if the mode's operand is a label name whose value
// is supplied by the symbol table.
func (m Mode) IsLabel() bool {
	switch m {
	case LabelAbsolute, LabelIndirect, LabelRelative:
		return true
	default:
		return false
	}
}

// IsRelative returns true if the operand is encoded as a signed 8-bit
// displacement from the following instruction.
func (m Mode) IsRelative() bool {
	return m == LabelRelative
}

// tableMode returns the opcode table row used to encode the mode. Label
// modes share the rows of their numeric counterparts.
func (m Mode) tableMode() Mode {
	switch m {
	case LabelAbsolute:
		return Absolute
	case LabelIndirect:
		return Indirect
	default:
		return m
	}
}

type modePattern struct {
	mode Mode
	re   *regexp.Regexp
}

// Numeric operand grammars, tried in order against the lower-cased operand.
// Each pattern captures the hex digits.
var numericPatterns = []modePattern{
	{Immediate, regexp.MustCompile(`^#\$([0-9a-f]{1,2})$`)},
	{ZeroPage, regexp.MustCompile(`^\$([0-9a-f]{1,2})$`)},
	{ZeroPageX, regexp.MustCompile(`^\$([0-9a-f]{1,2}),x$`)},
	{ZeroPageY, regexp.MustCompile(`^\$([0-9a-f]{1,2}),y$`)},
	{Absolute, regexp.MustCompile(`^\$([0-9a-f]{3,4})$`)},
	{AbsoluteX, regexp.MustCompile(`^\$([0-9a-f]{3,4}),x$`)},
	{AbsoluteY, regexp.MustCompile(`^\$([0-9a-f]{3,4}),y$`)},
	{IndirectX, regexp.MustCompile(`^\(\$([0-9a-f]{1,2}),x\)$`)},
	{IndirectY, regexp.MustCompile(`^\(\$([0-9a-f]{1,2})\),y$`)},
	{Indirect, regexp.MustCompile(`^\(\$([0-9a-f]{3,4})\)$`)},
}

// Label operand grammars, tried against the operand with its case intact.
var labelPatterns = []modePattern{
	{LabelIndirect, regexp.MustCompile(`^\(([A-Za-z0-9_]+)\)$`)},
	{LabelAbsolute, regexp.MustCompile(`^[A-Za-z0-9_]+$`)},
}

var labelDef = regexp.MustCompile(`^[A-Za-z0-9_]+:?$`)

// Classify determines the addressing mode of an operand string. Numeric
// forms are always tried before label forms, so a malformed number is
// reported as Invalid instead of being mistaken for a label. A bare label
// is reported as LabelAbsolute; whether it is really a branch target
// depends on the mnemonic (see Resolve).
func Classify(operand string) Mode {
	mode, _ := classify(operand)
	return mode
}

// classify returns the addressing mode together with the operand's value
// text: the hex digits for numeric modes, the label name for label modes.
func classify(operand string) (Mode, string) {
	if operand == "" {
		return Implied, ""
	}

	lower := strings.ToLower(operand)
	for _, p := range numericPatterns {
		if m := p.re.FindStringSubmatch(lower); m != nil {
			return p.mode, m[1]
		}
	}

	for _, p := range labelPatterns {
		if m := p.re.FindStringSubmatch(operand); m != nil {
			if len(m) > 1 {
				return p.mode, m[1]
			}
			return p.mode, m[0]
		}
	}

	return Invalid, ""
}

// isLabelDefinition returns true if the token has the shape of a label
// definition: an identifier, optionally followed by a colon.
func isLabelDefinition(s string) bool {
	return labelDef.MatchString(s)
}

// isLabelName returns true if the string is a valid label reference.
func isLabelName(s string) bool {
	return s != "" && labelDef.MatchString(s) && !strings.HasSuffix(s, ":")
}
