// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass 6502 assembler.
//
// The assembler is fed one source line at a time. During the first pass it
// sizes every instruction and records the address of every label; during
// the second pass it resolves label references and branch displacements
// and emits machine code to a Sink. Instruction sizes depend only on the
// shape of the operand, never on a label's value, so both passes agree on
// every address.
package asm

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/golang/glog"
)

// Pass identifies the state of an Assembler.
type Pass byte

// Assembler states, in the order they are entered.
const (
	Pass1 Pass = iota + 1 // building the symbol table
	Pass2                 // emitting machine code
	Done                  // output finalized
)

func (p Pass) String() string {
	switch p {
	case Pass1:
		return "pass 1"
	case Pass2:
		return "pass 2"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("Pass(%d)", byte(p))
	}
}

// Option type used by New and Assemble.
type Option uint

// Options for the assembler.
const (
	Verbose Option = 1 << iota // listing and diagnostics written to out
)

// A Symbol is a label and the address assigned to it.
type Symbol struct {
	Name    string
	Address uint16
}

type directiveData struct {
	fn    func(a *Assembler, t Token, args []Token, param int)
	param int
}

// Directives are matched case-insensitively.
var directives = map[string]directiveData{
	".db":   {fn: (*Assembler).parseData, param: 1},
	".byte": {fn: (*Assembler).parseData, param: 1},
	".dw":   {fn: (*Assembler).parseData, param: 2},
	".word": {fn: (*Assembler).parseData, param: 2},
}

// An Assembler holds the complete state of one assembly run. Lines must be
// fed in order: every line through Pass1, then PrepareNextPass, then every
// line through Pass2, then Finish. Independent Assemblers share nothing.
type Assembler struct {
	pass        Pass              // current state
	origin      uint16            // load address of the program
	offset      uint16            // the program counter
	line        int               // 1-based number of the next line
	started     bool              // at least one line was assembled
	success     bool              // no error has been recorded
	lineOK      bool              // the current line has no error
	symbols     map[string]uint16 // label -> address
	diagnostics []Diagnostic      // surfaced errors and warnings
	sourceLines []SourceLine      // address -> line mappings, pass 2
	sink        Sink              // receives machine code
	out         io.Writer         // used for verbose output
	verbose     bool              // verbose output
}

// New creates an assembler in Pass1 with an origin of $0000. Machine code
// is sent to sink; if sink is nil the code is kept in a Buffer that is
// discarded. Verbose output is written to out, or to standard output if
// out is nil.
func New(sink Sink, out io.Writer, options Option) *Assembler {
	if sink == nil {
		sink = &Buffer{}
	}
	if out == nil {
		out = os.Stdout
	}

	a := &Assembler{
		pass:    Pass1,
		line:    1,
		success: true,
		symbols: make(map[string]uint16),
		sink:    sink,
		out:     out,
		verbose: (options & Verbose) != 0,
	}
	a.logSection("Pass 1")
	return a
}

// SetProgramStart sets the address at which the program will be loaded.
// It must be called before the first line is assembled.
func (a *Assembler) SetProgramStart(addr uint16) error {
	if a.started || a.pass != Pass1 {
		return fmt.Errorf("%w: program start set after assembly began", ErrPassOrder)
	}
	a.origin = addr
	a.offset = addr
	return nil
}

// AssembleLine assembles a single line of source code. pass must match
// the assembler's current state, and no line is accepted once the
// assembler is Done. The return value reports whether the
// line was free of errors; during Pass1 errors are not recorded, and
// errors that depend on label values are not detected.
func (a *Assembler) AssembleLine(line string, pass Pass) bool {
	if pass != a.pass || pass == Done {
		a.record(Diagnostic{
			Line: a.line,
			Kind: InternalError,
			Msg:  fmt.Sprintf("internal error: line submitted for %s during %s", pass, a.pass),
		})
		return false
	}

	a.started = true
	a.lineOK = true
	a.parseLine(Tokenize(line))
	a.line++
	return a.lineOK
}

// PrepareNextPass ends the first pass. The program counter returns to the
// origin and line numbering restarts at 1; the symbol table and success
// flag are kept. The load address is written to the sink.
func (a *Assembler) PrepareNextPass() error {
	if a.pass != Pass1 {
		return fmt.Errorf("%w: cannot start pass 2 during %s", ErrPassOrder, a.pass)
	}

	glog.V(1).Infof("asm: pass 1 complete, %d lines, %d symbols, end $%04X",
		a.line-1, len(a.symbols), a.offset)

	a.pass = Pass2
	a.offset = a.origin
	a.line = 1
	a.logSection("Pass 2")

	if err := a.sink.WriteLoadAddress(a.origin); err != nil {
		a.outputError(err)
		return fmt.Errorf("asm: writing load address: %w", err)
	}
	return nil
}

// RestartPass rewinds the program counter and line number without leaving
// the first pass. Labels recorded again keep the symbol table consistent;
// each one is reported as redefined.
func (a *Assembler) RestartPass() error {
	if a.pass != Pass1 {
		return fmt.Errorf("%w: cannot restart during %s", ErrPassOrder, a.pass)
	}
	a.offset = a.origin
	a.line = 1
	return nil
}

// Finish ends the second pass and flushes the sink.
func (a *Assembler) Finish() error {
	if a.pass != Pass2 {
		return fmt.Errorf("%w: cannot finish during %s", ErrPassOrder, a.pass)
	}

	glog.V(1).Infof("asm: pass 2 complete, %d lines, end $%04X, success=%v",
		a.line-1, a.offset, a.success)

	a.pass = Done
	if err := a.sink.Flush(); err != nil {
		a.outputError(err)
		return fmt.Errorf("asm: flushing output: %w", err)
	}
	return nil
}

// Pass returns the assembler's current state.
func (a *Assembler) Pass() Pass {
	return a.pass
}

// Origin returns the program's load address.
func (a *Assembler) Origin() uint16 {
	return a.origin
}

// Offset returns the current program counter.
func (a *Assembler) Offset() uint16 {
	return a.offset
}

// Line returns the number of the next line to be assembled.
func (a *Assembler) Line() int {
	return a.line
}

// Successful returns true if no error has been recorded.
func (a *Assembler) Successful() bool {
	return a.success
}

// Diagnostics returns all surfaced errors and warnings in the order they
// were recorded.
func (a *Assembler) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), a.diagnostics...)
}

// Symbols returns the symbol table sorted by label name.
func (a *Assembler) Symbols() []Symbol {
	list := make([]Symbol, 0, len(a.symbols))
	for name, addr := range a.symbols {
		list = append(list, Symbol{Name: name, Address: addr})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// SymbolAddress returns the address of a label.
func (a *Assembler) SymbolAddress(name string) (uint16, bool) {
	addr, ok := a.symbols[name]
	return addr, ok
}

// SourceLines returns the address of every line that emitted machine
// code during the second pass.
func (a *Assembler) SourceLines() []SourceLine {
	return append([]SourceLine(nil), a.sourceLines...)
}

// Parse a single tokenized line of assembly code.
func (a *Assembler) parseLine(tokens []Token) {
	t := tokens[0]
	if t.IsEmpty() {
		return
	}

	if !IsMnemonic(t.Text) && isLabelDefinition(t.Text) {
		a.storeLabel(t)
		tokens = tokens[1:]
		t = tokens[0]
	}

	switch {
	case t.IsEmpty():
		return
	case IsMnemonic(t.Text):
		a.parseInstruction(t, tokens[1:])
	case strings.HasPrefix(t.Text, "."):
		d, ok := directives[strings.ToLower(t.Text)]
		if !ok {
			a.report(t.Column, IllegalCombination, "unknown directive '%s'", t.Text)
			return
		}
		d.fn(a, t, tokens[1:], d.param)
	default:
		a.report(t.Column, IllegalCombination, "unknown instruction '%s'", t.Text)
	}
}

// Store a label into the symbol table. Labels are recorded only during
// the first pass.
func (a *Assembler) storeLabel(t Token) {
	if a.pass != Pass1 {
		return
	}

	name := strings.TrimSuffix(t.Text, ":")
	if prev, found := a.symbols[name]; found {
		a.report(t.Column, LabelRedefinition,
			"label '%s' redefined (was $%04X, now $%04X)", name, prev, a.offset)
	}
	a.symbols[name] = a.offset

	glog.V(2).Infof("asm: line %d: label %s = $%04X", a.line, name, a.offset)
}

// Assemble a 6502 mnemonic and its operand.
func (a *Assembler) parseInstruction(mnemonic Token, args []Token) {
	operand := args[0]
	if len(args) > 1 && !args[1].IsEmpty() {
		a.report(args[1].Column, IllegalCombination,
			"illegal combination of opcode and operands: unexpected '%s'", args[1].Text)
		return
	}

	p, err := Encode(mnemonic.Text, operand.Text)
	if err != nil {
		col := operand.Column
		if operand.IsEmpty() {
			col = mnemonic.Column
		}
		a.report(col, errorKind(err), "%s", err.Error())
		return
	}

	pc := a.offset
	a.offset += uint16(p.Size)

	glog.V(2).Infof("asm: %s line %d: %s %s size %d at $%04X",
		a.pass, a.line, p.Mnemonic, p.Mode, p.Size, pc)

	if a.pass != Pass2 {
		return
	}

	if p.Label != "" {
		target, ok := a.symbols[p.Label]
		if !ok {
			a.report(operand.Column, UnknownLabel, "unknown label '%s'", p.Label)
			target = 0
			if p.Relative {
				target = pc + uint16(p.Size)
			}
		}
		if err := p.Resolve(target, pc); err != nil {
			a.report(operand.Column, errorKind(err), "%s", err.Error())
			return
		}
	}

	if p.PageBoundaryBug() {
		a.report(operand.Column, IndirectPageBoundary,
			"indirect jump through $%04X reads its high byte from $%04X",
			p.Value, p.Value&0xff00)
	}

	code := p.Bytes()
	a.emit(pc, code)
	a.log("%04X-   %-8s    %s   %s", pc, byteString(code), p.Mnemonic, p.operandString())
}

// Parse a data directive. Each comma-separated item occupies param bytes.
// Byte items must be hex numbers; word items may also be labels.
func (a *Assembler) parseData(t Token, args []Token, param int) {
	var s strings.Builder
	for _, arg := range args {
		s.WriteString(arg.Text)
	}

	if s.Len() == 0 {
		a.report(t.Column, IllegalCombination, "%s requires at least one value", t.Text)
		return
	}

	items := strings.Split(s.String(), ",")
	values := make([]uint16, len(items))
	labels := make([]string, len(items))
	for i, item := range items {
		mode, text := classify(item)
		switch {
		case mode == ZeroPage:
		case mode == Absolute && param == 2:
		case mode == LabelAbsolute && param == 2:
			labels[i] = text
			continue
		default:
			a.report(args[0].Column, IllegalCombination, "invalid %s value '%s'", t.Text, item)
			return
		}

		v, err := parseHex(text)
		if err != nil {
			a.report(args[0].Column, InternalError,
				"internal error: value '%s' did not parse: %v", item, err)
			return
		}
		values[i] = v
	}

	pc := a.offset
	a.offset += uint16(len(items) * param)

	if a.pass != Pass2 {
		return
	}

	code := make([]byte, 0, len(items)*param)
	for i := range items {
		if labels[i] != "" {
			addr, ok := a.symbols[labels[i]]
			if !ok {
				a.report(args[0].Column, UnknownLabel, "unknown label '%s'", labels[i])
			}
			values[i] = addr
		}
		code = append(code, toBytes(param, values[i])...)
	}

	a.emit(pc, code)
	a.logBytes(pc, code)
}

// Send machine code to the sink and remember where it came from.
func (a *Assembler) emit(addr uint16, code []byte) {
	a.sourceLines = append(a.sourceLines, SourceLine{Address: addr, Line: a.line})
	if err := a.sink.Append(code); err != nil {
		a.outputError(err)
	}
}

// Report a diagnostic for the current line. During the first pass only
// label redefinitions are surfaced.
func (a *Assembler) report(column int, kind Kind, format string, args ...any) {
	if !kind.IsWarning() {
		a.lineOK = false
	}
	if a.pass == Pass1 && kind != LabelRedefinition {
		return
	}

	a.record(Diagnostic{
		Line:   a.line,
		Column: column,
		Kind:   kind,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// Append a diagnostic to the assembler's error state.
func (a *Assembler) record(d Diagnostic) {
	a.diagnostics = append(a.diagnostics, d)
	if !d.Kind.IsWarning() {
		a.success = false
		a.lineOK = false
	}

	if a.verbose {
		fmt.Fprintln(a.out, d.String())
	}
}

// Record a failure of the sink.
func (a *Assembler) outputError(err error) {
	a.record(Diagnostic{
		Line: a.line,
		Kind: InternalError,
		Msg:  fmt.Sprintf("internal error: output: %v", err),
	})
}

// In verbose mode, log a string to the output.
func (a *Assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a series of bytes with starting address.
func (a *Assembler) logBytes(addr uint16, b []byte) {
	if a.verbose {
		for i, n := 0, len(b); i < n; i += 3 {
			j := min(i+3, n)
			a.log("%04X-*  %s", int(addr)+i, byteString(b[i:j]))
		}
	}
}

// In verbose mode, log a section header to the output.
func (a *Assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
