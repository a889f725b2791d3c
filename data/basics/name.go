// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package basics

import (
	"fmt"
	"strings"
)

// Name is a 64-bit identifier for accounts, actions, tables and
// permissions. Its text form holds up to 13 characters from nameCharmap:
// the first 12 carry 5 bits each and the 13th carries the remaining 4.
type Name uint64

const (
	nameCharmap    = ".12345abcdefghijklmnopqrstuvwxyz"
	maxNameLength  = 13
	lastCharSymbol = 0x0f
)

func charToSymbol(c byte) (uint64, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 6, true
	case c >= '1' && c <= '5':
		return uint64(c-'1') + 1, true
	case c == '.':
		return 0, true
	}
	return 0, false
}

// NameFromString parses the text form of a name. It rejects characters
// outside the charmap, names longer than 13 characters, a 13th character
// that does not fit into 4 bits, and trailing dots (which would not survive
// a round trip).
func NameFromString(s string) (Name, error) {
	if len(s) > maxNameLength {
		return 0, fmt.Errorf("name %q is longer than %d characters", s, maxNameLength)
	}
	var value uint64
	for i := 0; i < len(s); i++ {
		sym, ok := charToSymbol(s[i])
		if !ok {
			return 0, fmt.Errorf("name %q contains invalid character %q", s, s[i])
		}
		if i < maxNameLength-1 {
			value |= (sym & 0x1f) << (64 - 5*(i+1))
		} else {
			if sym > lastCharSymbol {
				return 0, fmt.Errorf("thirteenth character of name %q must be one of [.1-5a-j]", s)
			}
			value |= sym & lastCharSymbol
		}
	}
	n := Name(value)
	if n.String() != s {
		return 0, fmt.Errorf("name %q is not in normalized form", s)
	}
	return n, nil
}

// MustName is NameFromString for constants; it panics on invalid input.
func MustName(s string) Name {
	n, err := NameFromString(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the text form of the name with trailing dots removed.
func (n Name) String() string {
	var out [maxNameLength]byte
	tmp := uint64(n)
	for i := 0; i < maxNameLength; i++ {
		if i == 0 {
			out[maxNameLength-1-i] = nameCharmap[tmp&lastCharSymbol]
			tmp >>= 4
		} else {
			out[maxNameLength-1-i] = nameCharmap[tmp&0x1f]
			tmp >>= 5
		}
	}
	return strings.TrimRight(string(out[:]), ".")
}

// IsEmpty returns true for the zero name.
func (n Name) IsEmpty() bool {
	return n == 0
}

// MarshalText returns the text form, so JSON carries readable names while
// msgpack keeps the raw uint64.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText parses the text form.
func (n *Name) UnmarshalText(text []byte) (err error) {
	*n, err = NameFromString(string(text))
	return
}
