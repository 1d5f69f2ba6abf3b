// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

var hex = "0123456789ABCDEF"

// lowByte returns the least significant byte of a 16-bit value.
func lowByte(v uint16) byte {
	return byte(v % 256)
}

// highByte returns the most significant byte of a 16-bit value.
func highByte(v uint16) byte {
	return byte(v / 256)
}

// Return a little-endian representation of the value using the requested
// number of bytes.
func toBytes(bytes int, value uint16) []byte {
	switch bytes {
	case 1:
		return []byte{lowByte(value)}
	default:
		return []byte{lowByte(value), highByte(value)}
	}
}

// Return a hexadecimal string representation of a byte slice.
func byteString(b []byte) string {
	if len(b) < 1 {
		return ""
	}

	s := make([]byte, len(b)*3-1)
	i, j := 0, 0
	for n := len(b) - 1; i < n; i, j = i+1, j+3 {
		s[j+0] = hex[(b[i] >> 4)]
		s[j+1] = hex[(b[i] & 0x0f)]
		s[j+2] = ' '
	}
	s[j+0] = hex[(b[i] >> 4)]
	s[j+1] = hex[(b[i] & 0x0f)]
	return string(s)
}
