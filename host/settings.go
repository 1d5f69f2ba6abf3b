// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	Origin       uint16 `doc:"load address of assembled code"`
	Verbose      bool   `doc:"display a listing while assembling"`
	ListingBytes int    `doc:"bytes per row of machine code output"`
	HexMode      bool   `doc:"hexadecimal input mode"`
}

func newSettings() *settings {
	return &settings{
		Origin:       asm.DefaultOrigin,
		Verbose:      false,
		ListingBytes: 16,
		HexMode:      false,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

// Display writes every setting and its documentation.
func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var s string
		switch f.kind {
		case reflect.Uint16:
			s = fmt.Sprintf("    %-16s $%04X", f.name, uint16(v.Uint()))
		default:
			s = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", s, f.doc)
	}
}

// Field returns the canonical name and kind of the setting matching an
// unambiguous prefix of its name.
func (s *settings) Field(key string) (string, reflect.Kind, error) {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return "", reflect.Invalid, err
	}
	return f.name, f.kind, nil
}

// Set assigns a value to the setting matching an unambiguous prefix of its
// name. The value must be convertible to the setting's type.
func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if (f.kind == reflect.Bool) != (vIn.Kind() == reflect.Bool) ||
		!vIn.Type().ConvertibleTo(f.typ) {
		return errors.New("invalid type")
	}
	vInConverted := vIn.Convert(f.typ)

	vOut := reflect.ValueOf(s).Elem().Field(f.index)
	vOut.Set(vInConverted)

	return nil
}
