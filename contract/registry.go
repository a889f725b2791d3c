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

package contract

import (
	"fmt"
	"sort"

	"github.com/algorand/go-deadlock"
)

// Factory builds a fresh instance of a contract.
type Factory func() Contract

var registry = struct {
	mu        deadlock.Mutex
	factories map[string]Factory
}{factories: make(map[string]Factory)}

// RegisterCode makes a contract deployable under code. Contract packages
// call it from init.
func RegisterCode(code string, factory Factory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.factories[code]; ok {
		panic(fmt.Sprintf("contract code %q registered twice", code))
	}
	registry.factories[code] = factory
}

// Lookup instantiates the contract registered under code.
func Lookup(code string) (Contract, bool) {
	registry.mu.Lock()
	factory, ok := registry.factories[code]
	registry.mu.Unlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// Codes lists the registered code names.
func Codes() []string {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	codes := make([]string, 0, len(registry.factories))
	for code := range registry.factories {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
