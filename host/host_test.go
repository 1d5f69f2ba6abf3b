// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func run(t *testing.T, h *Host, script string) (string, bool) {
	t.Helper()
	var out bytes.Buffer
	quit := h.RunCommands(strings.NewReader(script), &out, false)
	return out.String(), quit
}

func checkOutput(t *testing.T, out string, expected ...string) {
	t.Helper()
	for _, e := range expected {
		if !strings.Contains(out, e) {
			t.Errorf("output is missing %q:\n%s", e, out)
		}
	}
}

func TestBufferAssemble(t *testing.T) {
	h := New()
	out, quit := run(t, h, `
line start: LDA #$01
line RTS
list
assemble buffer
`)
	if quit {
		t.Error("script reported quit")
	}
	checkOutput(t, out,
		"   1  start: LDA #$01",
		"   2  RTS",
		"Assembled 2 lines to 3 bytes at $1000.",
		"1000- A9 01 60",
	)

	out, _ = run(t, h, "clear\nlist\n")
	checkOutput(t, out, "Source buffer cleared.", "Source buffer is empty.")
}

func TestBufferErrors(t *testing.T) {
	h := New()
	out, _ := run(t, h, "line LDA\nline JMP nowhere\nassemble buffer\nsave x.bin\n")
	checkOutput(t, out,
		"Error (line 1): ",
		"Error (line 2): unknown label 'nowhere'",
		"Assembly failed with 2 error(s).",
		"Nothing to save.",
	)
}

func TestSettings(t *testing.T) {
	h := New()
	out, _ := run(t, h, `
set or $0800
set verb on
line NOP
assemble buffer
set
set bogus 1
set origin zz
`)
	checkOutput(t, out,
		"Setting 'Origin' updated.",
		"Setting 'Verbose' updated.",
		"-- Pass 2 --",
		"0800-   EA",
		"at $0800",
		"Setting 'bogus' not found.",
		"invalid number 'zz'",
	)
	if h.settings.Origin != 0x0800 || !h.settings.Verbose {
		t.Errorf("settings not applied: %+v", h.settings)
	}

	out, _ = run(t, h, "set hexmode true\nset origin 300\nset listingbytes 10\n")
	checkOutput(t, out, "Setting 'HexMode' updated.")
	if h.settings.Origin != 0x0300 || h.settings.ListingBytes != 16 {
		t.Errorf("hex mode not applied: %+v", h.settings)
	}
}

func TestSymbols(t *testing.T) {
	h := New()
	out, _ := run(t, h, "symbols\nline loop: INX\nline BNE loop\nassemble buffer\nsy\n")
	checkOutput(t, out, "No symbols.", "1000- E8 D0 FD", "loop")
}

func TestOpcodes(t *testing.T) {
	h := New()
	out, _ := run(t, h, "opcodes lda\nopcodes bv\nopcodes xyz\nopcodes\n")
	checkOutput(t, out,
		"    LDA  IMM  $A9  2",
		"    LDA  IDY  $B1  2",
		"Instruction 'bv' is ambiguous: BVC BVS",
		"Instruction 'xyz' not found.",
		"    TYA  IMP  $98  1",
	)
}

func TestAssembleInteractive(t *testing.T) {
	h := New()
	out, _ := run(t, h, "assemble interactive\n\tLDA #$01 ; load\nloop:  BNE loop\n.end\nsymbols\n")
	checkOutput(t, out,
		"Type .END to finish.",
		"Assembled 2 lines to 4 bytes at $1000.",
		"1000- A9 01 D0 FE",
		"loop",
	)
}

func TestAssembleFileAndSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.asm")
	if err := os.WriteFile(src, []byte("\tLDX #$FF\n\tTXS\n\tRTS\n"), 0600); err != nil {
		t.Fatal(err)
	}

	h := New()
	save := filepath.Join(dir, "copy.bin")
	out, _ := run(t, h, "assemble file "+filepath.Join(dir, "prog")+"\nsave "+save+"\n")
	checkOutput(t, out, "Assembled 'prog.asm'", "Saved 6 bytes to 'copy.bin'.")

	for _, name := range []string{"prog.bin", "copy.bin"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(b, []byte{0x00, 0x10, 0xa2, 0xff, 0x9a, 0x60}) {
			t.Errorf("%s contains % X", name, b)
		}
	}
}

func TestHelpAndQuit(t *testing.T) {
	h := New()
	out, quit := run(t, h, "help\nhelp save\nbogus\nquit\nline NOP\n")
	if !quit {
		t.Error("quit not reported")
	}
	checkOutput(t, out,
		"Commands:",
		"assemble file",
		"Syntax: save <filename>",
		"Command not found.",
	)
	if len(h.source) != 0 {
		t.Error("commands ran after quit")
	}
}

func TestSettingsLookup(t *testing.T) {
	s := newSettings()
	name, kind, err := s.Field("HEX")
	if err != nil || name != "HexMode" || kind != reflect.Bool {
		t.Errorf("Field(HEX) = %s %s %v", name, kind, err)
	}
	if err := s.Set("list", uint16(8)); err != nil || s.ListingBytes != 8 {
		t.Errorf("Set(list) = %v, ListingBytes %d", err, s.ListingBytes)
	}
	if err := s.Set("verbose", uint16(1)); err == nil {
		t.Error("number accepted for a bool setting")
	}
	if err := s.Set("origin", true); err == nil {
		t.Error("bool accepted for a number setting")
	}

	var b bytes.Buffer
	s.Display(&b)
	checkOutput(t, b.String(), "Origin           $1000", "(hexadecimal input mode)")
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		s       string
		hexMode bool
		v       uint16
		ok      bool
	}{
		{"4096", false, 4096, true},
		{"$1000", false, 0x1000, true},
		{"0x1000", false, 0x1000, true},
		{"1000", true, 0x1000, true},
		{"ff", false, 0, false},
		{"65536", false, 0, false},
		{"", false, 0, false},
	}
	for _, tt := range tests {
		v, err := parseNumber(tt.s, tt.hexMode)
		if (err == nil) != tt.ok || v != tt.v {
			t.Errorf("parseNumber(%q, %v) = %d, %v", tt.s, tt.hexMode, v, err)
		}
	}
}

func TestIndentWrap(t *testing.T) {
	s := indentWrap(3, strings.Repeat("word ", 40))
	for _, line := range strings.Split(s, "\n") {
		if len(line) > 76 || !strings.HasPrefix(line, "   word") {
			t.Errorf("bad wrapped line %q", line)
		}
	}
}
