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

// Package serr provides errors that carry structured attributes. Attributes
// let the executor annotate a failure with the transaction, action and
// receiver it happened in without losing the typed cause underneath.
package serr

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/exp/slog"
)

// Error is a message plus key/value attributes, optionally wrapping a cause.
type Error struct {
	Msg     string
	Attrs   map[string]any
	Wrapped error
}

// New creates a new structured error object using the supplied message and attributes.
func New(msg string, pairs ...any) *Error {
	e := &Error{Msg: msg, Attrs: make(map[string]any, len(pairs)/2)}
	e.add(pairs...)
	return e
}

func (e *Error) add(pairs ...any) {
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		e.Attrs[key] = pairs[i+1]
	}
}

// Error returns the message followed by the attributes in key order, in
// slog text form.
func (e *Error) Error() string {
	if len(e.Attrs) == 0 {
		return e.Msg
	}
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// drop time and level, keep only msg and our attributes
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	})
	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, e.Attrs[k])
	}
	slog.New(h).Info(e.Msg, args...)
	return strings.TrimSpace(buf.String())
}

// Unwrap returns the inner error, if it exists.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Wrap returns a structured error with msg that wraps err. The message of
// err is kept visible unless msg is given.
func Wrap(err error, msg string, pairs ...any) *Error {
	if msg == "" && err != nil {
		msg = err.Error()
	} else if err != nil {
		msg = msg + ": " + err.Error()
	}
	e := New(msg, pairs...)
	e.Wrapped = err
	return e
}

// Extend adds attributes to err. A structured error anywhere in the chain
// is extended in place; any other error is wrapped.
func Extend(err error, pairs ...any) error {
	if err == nil {
		return New("", pairs...)
	}
	var se *Error
	if errors.As(err, &se) {
		se.add(pairs...)
		return err
	}
	return Wrap(err, "", pairs...)
}

// Attr looks up an attribute on the first structured error in err's chain.
func Attr(err error, key string) (any, bool) {
	var se *Error
	if !errors.As(err, &se) {
		return nil, false
	}
	v, ok := se.Attrs[key]
	return v, ok
}
