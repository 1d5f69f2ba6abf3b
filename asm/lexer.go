// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"
	"unicode"
)

// A Token is a single whitespace-delimited unit of a source line. The
// final token of every line is empty.
type Token struct {
	Text   string // normalized token text
	Column int    // 0-based column of the token within the line
}

// IsEmpty returns true for the end-of-line token.
func (t Token) IsEmpty() bool {
	return t.Text == ""
}

// Upper returns the token text upper-cased, the form used for mnemonic
// and directive matching.
func (t Token) Upper() string {
	return strings.ToUpper(t.Text)
}

func (t Token) String() string {
	return t.Text
}

// Tokenize splits a source line into tokens. Whitespace other than the
// space character is treated as a space, runs of spaces separate tokens,
// and a ';' starts a comment that runs to the end of the line. The
// returned slice always ends with one empty token. Token text keeps its
// original case: mnemonics are compared through Token.Upper, and numeric
// operands are lower-cased when they are classified, so labels stay
// case-sensitive.
func Tokenize(line string) []Token {
	line = convertWhitespace(line)

	var tokens []Token
	for i := 0; i < len(line); {
		if line[i] == ' ' {
			i++
			continue
		}

		start := i
		for i < len(line) && line[i] != ' ' {
			i++
		}
		text := line[start:i]

		if c := strings.IndexByte(text, ';'); c >= 0 {
			if c > 0 {
				tokens = append(tokens, Token{Text: text[:c], Column: start})
			}
			break
		}

		tokens = append(tokens, Token{Text: text, Column: start})
	}

	return append(tokens, Token{Column: len(line)})
}

// Replace every whitespace character other than ' ' with a space.
func convertWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if r != ' ' && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}
