// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// assembly code addresses.
type SourceMap struct {
	Origin  uint16
	Size    uint32
	CRC     uint32
	Files   []string
	Lines   []SourceLine
	Symbols []Symbol
}

// A SourceLine represents a mapping between a machine code address and
// the source code line used to generate it.
type SourceLine struct {
	Address   uint16 // Machine code address
	FileIndex int    // Source code file index
	Line      int    // Source code line number
}

func (s *SourceMap) sortLines() {
	sort.SliceStable(s.Lines, func(i, j int) bool {
		return s.Lines[i].Address < s.Lines[j].Address
	})
}

// Search searches the source map for a mapping with the requested address.
func (s *SourceMap) Search(addr uint16) (filename string, line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		l := s.Lines[i]
		if l.FileIndex < len(s.Files) {
			filename = s.Files[l.FileIndex]
		}
		return filename, l.Line
	}
	return "", -1
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
