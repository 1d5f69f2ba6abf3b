// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

// A command describes a single shell command. A pointer to it is stored as
// the data of the matching node in the command tree.
type command struct {
	path        string // full command path, e.g. "assemble file"
	brief       string
	description string
	usage       string
	handler     func(*Host, cmd.Selection) error
}

var (
	cmds     *cmd.Tree
	commands []*command
)

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "asm6502"})
	add := func(t *cmd.Tree, prefix string, c *command, name string) {
		c.path = prefix + name
		commands = append(commands, c)
		t.AddCommand(cmd.CommandDescriptor{
			Name:        name,
			Brief:       c.brief,
			Description: c.description,
			Usage:       c.usage,
			Data:        c,
		})
	}

	add(root, "", &command{
		brief:       "Display help for a command",
		description: "Display help for a command.",
		usage:       "help [<command>]",
		handler:     (*Host).cmdHelp,
	}, "help")
	add(root, "", &command{
		brief: "Add a line to the source buffer",
		description: "Append a line of assembly source code to the end of" +
			" the source buffer. The buffer is assembled with the assemble" +
			" buffer command.",
		usage:   "line <source text>",
		handler: (*Host).cmdLine,
	}, "line")
	add(root, "", &command{
		brief:       "List the source buffer",
		description: "Display the contents of the source buffer with line numbers.",
		usage:       "list",
		handler:     (*Host).cmdList,
	}, "list")
	add(root, "", &command{
		brief:       "Clear the source buffer",
		description: "Remove all lines from the source buffer.",
		usage:       "clear",
		handler:     (*Host).cmdClear,
	}, "clear")

	// Assemble commands
	as := root.AddSubtree(cmd.TreeDescriptor{Name: "assemble", Brief: "Assemble commands"})
	add(as, "assemble ", &command{
		brief: "Assemble the source buffer",
		description: "Run both assembler passes over the source buffer," +
			" loading the result at the origin setting. Diagnostics are" +
			" displayed, followed by the machine code when assembly succeeds.",
		usage:   "assemble buffer",
		handler: (*Host).cmdAssembleBuffer,
	}, "buffer")
	add(as, "assemble ", &command{
		brief: "Assemble a file from disk and save the binary to disk",
		description: "Run the assembler on the specified file, producing a" +
			" load file (.bin) and source map file (.map) if successful.",
		usage:   "assemble file <filename>",
		handler: (*Host).cmdAssembleFile,
	}, "file")
	add(as, "assemble ", &command{
		brief: "Start interactive assembly mode",
		description: "Start interactive assembler mode. A new prompt will" +
			" appear, allowing you to enter assembly language instructions" +
			" interactively. Once you type .END, the instructions will be" +
			" assembled at the origin setting.",
		usage:   "assemble interactive",
		handler: (*Host).cmdAssembleInteractive,
	}, "interactive")

	add(root, "", &command{
		brief: "Display opcodes",
		description: "Display the opcode table. If a mnemonic or an" +
			" unambiguous prefix of one is given, only that instruction's" +
			" forms are shown.",
		usage:   "opcodes [<mnemonic>]",
		handler: (*Host).cmdOpcodes,
	}, "opcodes")
	add(root, "", &command{
		brief:       "Quit the program",
		description: "Quit the program.",
		usage:       "quit",
		handler:     (*Host).cmdQuit,
	}, "quit")
	add(root, "", &command{
		brief: "Save the last assembly",
		description: "Write the machine code produced by the last successful" +
			" assembly to a load file. The file starts with the two-byte" +
			" little-endian load address.",
		usage:   "save <filename>",
		handler: (*Host).cmdSave,
	}, "save")
	add(root, "", &command{
		brief: "Set a configuration variable",
		description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		usage:   "set [<var> <value>]",
		handler: (*Host).cmdSet,
	}, "set")
	add(root, "", &command{
		brief: "Display the symbol table",
		description: "Display every label defined by the last assembly and" +
			" the address assigned to it.",
		usage:   "symbols",
		handler: (*Host).cmdSymbols,
	}, "symbols")

	// Add command shortcuts.
	root.AddShortcut(".", "line")
	root.AddShortcut("a", "assemble buffer")
	root.AddShortcut("af", "assemble file")
	root.AddShortcut("ai", "assemble interactive")
	root.AddShortcut("l", "list")
	root.AddShortcut("sy", "symbols")
	root.AddShortcut("?", "help")

	cmds = root
}
