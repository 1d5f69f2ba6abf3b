// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"io"
)

// A Sink receives the machine code produced during the second pass. The
// load address is written once, before any code.
type Sink interface {
	WriteLoadAddress(addr uint16) error
	Append(b []byte) error
	Flush() error
}

// A BinarySink writes a load file: the 2-byte little-endian load address
// followed by the raw machine code, with no other header or padding.
type BinarySink struct {
	w *bufio.Writer
	n int64
}

// NewBinarySink creates a sink that writes a load file to w.
func NewBinarySink(w io.Writer) *BinarySink {
	return &BinarySink{w: bufio.NewWriter(w)}
}

// WriteLoadAddress writes the load file header.
func (s *BinarySink) WriteLoadAddress(addr uint16) error {
	nn, err := s.w.Write(toBytes(2, addr))
	s.n += int64(nn)
	return err
}

// Append writes machine code bytes.
func (s *BinarySink) Append(b []byte) error {
	nn, err := s.w.Write(b)
	s.n += int64(nn)
	return err
}

// Flush flushes buffered data to the underlying writer.
func (s *BinarySink) Flush() error {
	return s.w.Flush()
}

// Written returns the total number of bytes written, header included.
func (s *BinarySink) Written() int64 {
	return s.n
}

// A Buffer is a Sink that keeps the load address and machine code in
// memory.
type Buffer struct {
	Origin uint16 // load address
	Code   []byte // machine code in emission order
}

// WriteLoadAddress records the load address.
func (b *Buffer) WriteLoadAddress(addr uint16) error {
	b.Origin = addr
	return nil
}

// Append appends machine code bytes to the buffer.
func (b *Buffer) Append(p []byte) error {
	b.Code = append(b.Code, p...)
	return nil
}

// Flush does nothing.
func (b *Buffer) Flush() error {
	return nil
}

// WriteTo writes the buffer as a load file into an output writer.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	s := NewBinarySink(w)
	if err = s.WriteLoadAddress(b.Origin); err == nil {
		if err = s.Append(b.Code); err == nil {
			err = s.Flush()
		}
	}
	return s.Written(), err
}
