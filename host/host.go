// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive shell around the 6502 assembler.
//
// Within the shell it is possible to build up a program one source line at
// a time, assemble it, inspect the resulting machine code and symbol table,
// browse the opcode table, assemble files from disk, and save the machine
// code as a load file.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/cmd"
	"github.com/beevik/prefixtree/v2"
	"github.com/k0kubun/pp/v3"
)

var errQuit = errors.New("exiting program")

var mnemonicTree = prefixtree.New[string]()

func init() {
	for _, m := range asm.Mnemonics() {
		mnemonicTree.Add(strings.ToLower(m), m)
	}
}

// A Host is an interactive assembler shell. It holds a source buffer, the
// result of the most recent assembly, and the shell's settings.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	settings    *settings
	source      []string          // the source buffer
	assembly    *asm.Assembly     // result of the last successful assembly
	printer     *pp.PrettyPrinter // used to display symbol tables
}

// New creates a new assembler shell.
func New() *Host {
	h := &Host{
		settings: newSettings(),
		printer:  pp.New(),
	}
	h.printer.SetColoringEnabled(false)
	return h
}

// RunCommands accepts shell commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the next command to be entered. RunCommands returns
// true if the quit command was executed.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) bool {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	h.printer.SetColoringEnabled(interactive)
	defer h.flush()

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			return false
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		sel, err := cmds.Lookup(line)
		switch {
		case err == cmd.ErrNotFound:
			h.println("Command not found.")
			continue
		case err == cmd.ErrAmbiguous:
			h.println("Command is ambiguous.")
			continue
		case err != nil:
			h.printf("ERROR: %v.\n", err)
			continue
		}

		c, ok := commandOf(sel)
		if !ok {
			h.displayCommands(line)
			continue
		}

		if err := c.handler(h, sel); err != nil {
			return errors.Is(err, errQuit)
		}
	}
}

func commandOf(sel cmd.Selection) (*command, bool) {
	if sel.Command == nil {
		return nil, false
	}
	c, ok := sel.Command.Data.(*command)
	return c, ok
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) options() asm.Option {
	var options asm.Option
	if h.settings.Verbose {
		options |= asm.Verbose
	}
	return options
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.displayCommands("")
		return nil
	}

	path := strings.Join(c.Args, " ")
	s, err := cmds.Lookup(path)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	cc, ok := commandOf(s)
	if !ok {
		h.displayCommands(path)
		return nil
	}

	h.printf("Syntax: %s\n\n", cc.usage)
	h.printf("Description:\n%s\n\n", indentWrap(3, cc.description))
	return nil
}

func (h *Host) cmdLine(c cmd.Selection) error {
	h.source = append(h.source, strings.Join(c.Args, " "))
	return nil
}

func (h *Host) cmdList(c cmd.Selection) error {
	if len(h.source) == 0 {
		h.println("Source buffer is empty.")
		return nil
	}
	for i, line := range h.source {
		fmt.Fprintf(h.output, "%4d  %s\n", i+1, line)
	}
	h.flush()
	return nil
}

func (h *Host) cmdClear(c cmd.Selection) error {
	h.source = nil
	h.println("Source buffer cleared.")
	return nil
}

func (h *Host) cmdAssembleBuffer(c cmd.Selection) error {
	if len(h.source) == 0 {
		h.println("Source buffer is empty.")
		return nil
	}
	h.assemble(h.source)
	return nil
}

func (h *Host) cmdAssembleFile(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	assembly, err := asm.AssembleFile(filename, h.settings.Origin, h.options(), h.output)
	if err != nil {
		h.printf("Failed to assemble '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	h.assembly = assembly
	h.flush()
	return nil
}

func (h *Host) cmdAssembleInteractive(c cmd.Selection) error {
	h.println("Enter assembly language instructions.")
	h.println("Type .END to finish.")

	var lines []string
	for {
		if h.interactive {
			h.printf("%04d: ", len(lines)+1)
		}

		line, err := h.getLine()
		if err != nil || strings.EqualFold(strings.TrimSpace(line), ".end") {
			break
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		h.println("Nothing to assemble.")
		return nil
	}
	h.assemble(lines)
	return nil
}

// Run both passes over a program and report the result.
func (h *Host) assemble(lines []string) {
	assembly, _, err := asm.AssembleLines(lines, h.settings.Origin, h.output, h.options())
	h.flush()

	if !h.settings.Verbose {
		for _, d := range assembly.Diagnostics {
			h.println(d.String())
		}
	}

	if err != nil {
		if errors.Is(err, asm.ErrAssembly) {
			h.printf("Assembly failed with %d error(s).\n", len(assembly.Errors))
		} else {
			h.printf("ERROR: %v.\n", err)
		}
		return
	}

	h.assembly = assembly
	h.printf("Assembled %d lines to %d bytes at $%04X.\n",
		len(lines), len(assembly.Code), assembly.Origin)
	h.dumpCode(assembly.Origin, assembly.Code)
}

func (h *Host) cmdOpcodes(c cmd.Selection) error {
	if len(c.Args) == 0 {
		for _, op := range asm.Opcodes() {
			fmt.Fprintf(h.output, "    %s  %-3s  $%02X  %d\n", op.Mnemonic, op.Mode, op.Byte, op.Size)
		}
		h.flush()
		return nil
	}

	name, err := mnemonicTree.FindValue(strings.ToLower(c.Args[0]))
	if err != nil {
		var matches []string
		prefix := strings.ToUpper(c.Args[0])
		for _, m := range asm.Mnemonics() {
			if strings.HasPrefix(m, prefix) {
				matches = append(matches, m)
			}
		}
		if len(matches) == 0 {
			h.printf("Instruction '%s' not found.\n", c.Args[0])
		} else {
			h.printf("Instruction '%s' is ambiguous: %s\n", c.Args[0], strings.Join(matches, " "))
		}
		return nil
	}

	for _, op := range asm.OpcodesFor(name) {
		fmt.Fprintf(h.output, "    %s  %-3s  $%02X  %d\n", op.Mnemonic, op.Mode, op.Byte, op.Size)
	}
	h.flush()
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errQuit
}

func (h *Host) cmdSave(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}
	if h.assembly == nil {
		h.println("Nothing to save. Assemble a program first.")
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		h.printf("Failed to create '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	defer file.Close()

	n, err := h.assembly.WriteTo(file)
	if err != nil {
		h.printf("Failed to save '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	h.printf("Saved %d bytes to '%s'.\n", n, filepath.Base(filename))
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c)

	default:
		key, value := c.Args[0], strings.Join(c.Args[1:], " ")
		name, kind, err := h.settings.Field(key)
		if err != nil {
			h.printf("Setting '%s' not found.\n", key)
			return nil
		}

		var v any
		switch kind {
		case reflect.Bool:
			v, err = stringToBool(value)
		default:
			v, err = parseNumber(value, h.settings.HexMode)
		}
		if err == nil {
			err = h.settings.Set(name, v)
		}
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}

		h.printf("Setting '%s' updated.\n", name)
	}
	return nil
}

func (h *Host) cmdSymbols(c cmd.Selection) error {
	if h.assembly == nil {
		h.println("No symbols. Assemble a program first.")
		return nil
	}
	if len(h.assembly.Symbols) == 0 {
		h.println("No symbols defined.")
		return nil
	}

	h.printer.Fprintln(h.output, h.assembly.Symbols)
	h.flush()
	return nil
}

// Display machine code as rows of hex bytes followed by their printable
// characters.
func (h *Host) dumpCode(addr uint16, code []byte) {
	n := max(h.settings.ListingBytes, 1)
	for i := 0; i < len(code); i += n {
		row := code[i:min(i+n, len(code))]

		buf := []byte("    -")
		addrToBuf(addr+uint16(i), buf[0:4])
		chars := make([]byte, len(row))
		for j, v := range row {
			b := []byte{' ', 0, 0}
			byteToBuf(v, b[1:])
			buf = append(buf, b...)
			chars[j] = toPrintableChar(v)
		}
		fmt.Fprintf(h.output, "%-*s  %s\n", 5+3*n, buf, chars)
	}
	h.flush()
}

func (h *Host) displayUsage(c cmd.Selection) {
	if cc, ok := commandOf(c); ok && cc.usage != "" {
		h.printf("Syntax: %s\n", cc.usage)
	} else {
		h.println("<no help text>")
	}
}

// Display every command whose path starts with a prefix.
func (h *Host) displayCommands(prefix string) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		h.println("Commands:")
	} else {
		h.printf("%s commands:\n", prefix)
	}
	for _, c := range commands {
		if strings.HasPrefix(c.path, prefix) {
			fmt.Fprintf(h.output, "    %-22s %s\n", c.path, c.brief)
		}
	}
	h.flush()
}
