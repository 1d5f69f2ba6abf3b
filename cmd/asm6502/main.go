// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command asm6502 assembles 6502 source files and runs the interactive
// assembler shell.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/term"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "asm6502",
	Short: "A two-pass 6502 assembler",
	Long: `Asm6502 translates 6502 assembly language into machine code.

Each source line holds an optional label, an optional instruction
mnemonic with its operand, and an optional comment introduced by ';'.
Operands are written in hexadecimal with a '$' prefix. The output is a
load file: the two-byte little-endian load address followed by the
machine code.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog reads its settings from the standard flag set.
		return flag.CommandLine.Parse(nil)
	},
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

// Parse a load address. A '$' or "0x" prefix is optional; the number is
// always hexadecimal.
func parseAddress(s string) (uint16, error) {
	t := strings.TrimPrefix(s, "$")
	t = strings.TrimPrefix(strings.TrimPrefix(t, "0x"), "0X")
	v, err := strconv.ParseUint(t, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address '%s'", s)
	}
	return uint16(v), nil
}

// Report whether w writes to a terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
