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

// Package store defines the ordered key/value storage the ledger persists
// committed state into. Drivers live in the pebbledbdriver and sqlitedriver
// subpackages and must order keys bytewise.
package store

import (
	"errors"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// Write is one mutation of a Commit batch.
type Write struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// ScanFn is called for every key in a Scan range, in ascending order.
// Returning ErrStopScan ends the scan without an error.
type ScanFn func(key, value []byte) error

// ErrStopScan can be returned by a ScanFn to end the scan early.
var ErrStopScan = errors.New("stop scan")

// Store is the persistent state of the ledger.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// First returns the smallest key in [start, end) with its value.
	// A nil end means no upper bound.
	First(start, end []byte) (key, value []byte, found bool, err error)

	// Scan calls fn for every key in [start, end), in ascending order.
	Scan(start, end []byte, fn ScanFn) error

	// Commit applies all writes atomically.
	Commit(writes []Write) error

	Close() error
}

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, or nil when no such key exists.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
