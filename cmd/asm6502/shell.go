// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/beevik/asm6502/host"
	"github.com/beevik/term"
	"github.com/spf13/cobra"
)

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell [script...]",
	Short: "Run the interactive assembler shell",
	Long: `Shell runs the commands contained in each script file, then reads
commands from standard input. Type help at the prompt for a list of
commands.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		h := host.New()
		out := cmd.OutOrStdout()

		// Run commands contained in command-line files.
		for _, filename := range args {
			file, err := os.Open(filename)
			if err != nil {
				return err
			}
			quit := h.RunCommands(file, out, false)
			file.Close()
			if quit {
				return nil
			}
		}

		// Run commands interactively.
		h.RunCommands(os.Stdin, out, term.IsTerminal(int(os.Stdin.Fd())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
