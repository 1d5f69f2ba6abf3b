// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/beevik/asm6502/asm"
	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type buildOptions struct {
	origin  string
	verbose bool
	symbols bool
	jobs    int
}

var buildOpts buildOptions

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build sourceFile...",
	Short: "Assemble source files into load files",
	Long: `Build assembles each source file and, when assembly succeeds,
writes a load file (.bin) and a source map (.map) next to it. Files are
assembled concurrently; their diagnostics are reported in command-line
order. The command fails if any file fails to assemble.`,

	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.OutOrStdout(), args, buildOpts)
	},
}

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols sourceFile...",
	Short: "Display the symbol tables of source files",
	Long: `Symbols assembles each source file without writing any output
and displays the address assigned to every label.`,

	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSymbols(cmd.OutOrStdout(), args, buildOpts.origin)
	},
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildOpts.origin, "origin", "o", "$1000", "load address, in hexadecimal")
	f.BoolVar(&buildOpts.verbose, "verbose", false, "display an assembly listing")
	f.BoolVarP(&buildOpts.symbols, "symbols", "s", false, "display the symbol table of each file")
	f.IntVarP(&buildOpts.jobs, "jobs", "j", runtime.NumCPU(), "number of files to assemble at once")
	rootCmd.AddCommand(buildCmd)

	symbolsCmd.Flags().StringVarP(&buildOpts.origin, "origin", "o", "$1000", "load address, in hexadecimal")
	rootCmd.AddCommand(symbolsCmd)
}

type buildResult struct {
	assembly *asm.Assembly
	out      bytes.Buffer
	err      error
}

func runBuild(w io.Writer, files []string, opts buildOptions) error {
	origin, err := parseAddress(opts.origin)
	if err != nil {
		return err
	}

	var options asm.Option
	if opts.verbose {
		options |= asm.Verbose
	}

	results := make([]buildResult, len(files))

	var g errgroup.Group
	g.SetLimit(max(opts.jobs, 1))
	for i, file := range files {
		g.Go(func() error {
			r := &results[i]
			r.assembly, r.err = asm.AssembleFile(file, origin, options, &r.out)
			switch {
			case r.err == nil:
				glog.Infof("%s: %d bytes at $%04X", file, len(r.assembly.Code), origin)
			case errors.Is(r.err, asm.ErrAssembly):
				glog.Errorf("%s: %v", file, r.err)
			default:
				return fmt.Errorf("%s: %w", file, r.err)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	printer := pp.New()
	printer.SetColoringEnabled(isTerminal(w))

	failed := 0
	for i := range results {
		r := &results[i]
		io.Copy(w, &r.out)
		if r.err != nil {
			failed++
			continue
		}
		if opts.symbols {
			printer.Fprintln(w, r.assembly.Symbols)
		}
	}

	if waitErr != nil {
		return waitErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to assemble", failed, len(files))
	}
	return nil
}

func runSymbols(w io.Writer, files []string, originFlag string) error {
	origin, err := parseAddress(originFlag)
	if err != nil {
		return err
	}

	printer := pp.New()
	printer.SetColoringEnabled(isTerminal(w))

	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		assembly, _, err := asm.Assemble(f, file, origin, w, 0)
		f.Close()

		for _, d := range assembly.Diagnostics {
			fmt.Fprintf(w, "%s: %s\n", file, d)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		fmt.Fprintf(w, "%s:\n", file)
		printer.Fprintln(w, assembly.Symbols)
	}
	return nil
}
