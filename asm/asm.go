// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"
)

// DefaultOrigin is the load address used when none is specified.
const DefaultOrigin = 0x1000

// Assembly contains the assembled machine code and other data associated
// with the machine code.
type Assembly struct {
	Origin      uint16       // Load address
	Code        []byte       // Assembled machine code
	Symbols     []Symbol     // Label addresses, sorted by name
	Diagnostics []Diagnostic // Errors and warnings, in source order
	Errors      []string     // Errors encountered during assembly
	Warnings    []string     // Warnings encountered during assembly
}

// WriteTo saves the assembly as a load file: the little-endian load
// address followed by the machine code.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	b := Buffer{Origin: a.Origin, Code: a.Code}
	return b.WriteTo(w)
}

// AssembleFile reads a file containing 6502 assembly code, assembles it,
// and produces a load file (.bin) and a source map file (.map) next to it.
func AssembleFile(path string, origin uint16, options Option, out io.Writer) (*Assembly, error) {
	if out == nil {
		out = os.Stdout
	}

	inFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer inFile.Close()

	assembly, sourceMap, err := Assemble(inFile, path, origin, out, options)
	for _, w := range assembly.Warnings {
		fmt.Fprintf(out, "%s: %s\n", filepath.Base(path), w)
	}
	if err != nil {
		for _, e := range assembly.Errors {
			fmt.Fprintf(out, "%s: %s\n", filepath.Base(path), e)
		}
		return assembly, err
	}

	ext := filepath.Ext(path)
	prefix := path[:len(path)-len(ext)]
	binPath := prefix + ".bin"
	if err := writeFile(binPath, assembly); err != nil {
		return assembly, err
	}

	mapPath := prefix + ".map"
	if err := writeFile(mapPath, sourceMap); err != nil {
		return assembly, err
	}

	fmt.Fprintf(out, "Assembled '%s' to produce '%s' and '%s'.\n",
		filepath.Base(path),
		filepath.Base(binPath),
		filepath.Base(mapPath))
	return assembly, nil
}

func writeFile(path string, w io.WriterTo) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	_, err = w.WriteTo(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Assemble reads data from the provided stream and assembles it into 6502
// machine code loaded at origin. If any error diagnostic is recorded, the
// returned error wraps ErrAssembly; the assembly still holds every
// diagnostic and whatever code was emitted.
func Assemble(r io.Reader, filename string, origin uint16, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return &Assembly{Origin: origin}, nil, err
	}

	glog.V(1).Infof("asm: assembling %s, %d lines at $%04X", filename, len(lines), origin)

	assembly, sourceLines, err := AssembleLines(lines, origin, out, options)

	sourceMap := &SourceMap{
		Origin:  assembly.Origin,
		Size:    uint32(len(assembly.Code)),
		CRC:     crc32.ChecksumIEEE(assembly.Code),
		Files:   []string{filename},
		Lines:   sourceLines,
		Symbols: assembly.Symbols,
	}
	sourceMap.sortLines()

	if err != nil {
		glog.Errorf("asm: %s: %d errors", filename, len(assembly.Errors))
	}
	return assembly, sourceMap, err
}

// AssembleLines runs both passes over an in-memory program.
func AssembleLines(lines []string, origin uint16, out io.Writer, options Option) (*Assembly, []SourceLine, error) {
	buf := &Buffer{}
	a := New(buf, out, options)
	if err := a.SetProgramStart(origin); err != nil {
		return &Assembly{Origin: origin}, nil, err
	}

	for _, line := range lines {
		a.AssembleLine(line, Pass1)
	}
	if err := a.PrepareNextPass(); err != nil {
		return &Assembly{Origin: origin}, nil, err
	}
	for _, line := range lines {
		a.AssembleLine(line, Pass2)
	}
	if err := a.Finish(); err != nil {
		return &Assembly{Origin: origin}, nil, err
	}

	assembly := &Assembly{
		Origin:      buf.Origin,
		Code:        buf.Code,
		Symbols:     a.Symbols(),
		Diagnostics: a.Diagnostics(),
	}
	for _, d := range assembly.Diagnostics {
		if d.Kind.IsWarning() {
			assembly.Warnings = append(assembly.Warnings, d.String())
		} else {
			assembly.Errors = append(assembly.Errors, d.String())
		}
	}

	if !a.Successful() {
		return assembly, a.SourceLines(), fmt.Errorf("%w: %d errors", ErrAssembly, len(assembly.Errors))
	}
	return assembly, a.SourceLines(), nil
}
