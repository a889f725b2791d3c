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
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/protocol"
)

// Row is a table row, keyed by its primary key.
type Row interface {
	PrimaryKey() uint64
}

// Table is a typed view over one (scope, table) of the running contract.
// Rows are stored msgpack-encoded.
type Table[T Row] struct {
	ctx   Context
	scope basics.Name
	name  basics.Name
}

// NewTable returns the table name within scope of ctx.Self().
func NewTable[T Row](ctx Context, scope, name basics.Name) *Table[T] {
	return &Table[T]{ctx: ctx, scope: scope, name: name}
}

// Name returns the table name.
func (t *Table[T]) Name() basics.Name {
	return t.name
}

// Scope returns the table scope.
func (t *Table[T]) Scope() basics.Name {
	return t.scope
}

// Find looks up the row at pk.
func (t *Table[T]) Find(pk uint64) (row T, found bool, err error) {
	_, data, found, err := t.ctx.Find(t.scope, t.name, pk)
	if err != nil || !found {
		return row, false, err
	}
	err = protocol.Decode(data, &row)
	return row, err == nil, err
}

// Emplace inserts row, billing payer for its storage.
func (t *Table[T]) Emplace(payer basics.Name, row T) error {
	return t.ctx.Store(t.scope, t.name, row.PrimaryKey(), payer, protocol.Encode(&row))
}

// Modify overwrites the existing row with the same primary key, billing payer.
func (t *Table[T]) Modify(payer basics.Name, row T) error {
	return t.ctx.Update(t.scope, t.name, row.PrimaryKey(), payer, protocol.Encode(&row))
}

// Erase removes the row at pk.
func (t *Table[T]) Erase(pk uint64) error {
	return t.ctx.Remove(t.scope, t.name, pk)
}

// Begin returns the row with the smallest primary key, if any.
func (t *Table[T]) Begin() (row T, found bool, err error) {
	return t.LowerBound(0)
}

// LowerBound returns the first row whose primary key is >= pk.
func (t *Table[T]) LowerBound(pk uint64) (row T, found bool, err error) {
	at, ok, err := t.ctx.LowerBound(t.scope, t.name, pk)
	if err != nil || !ok {
		return row, false, err
	}
	return t.Find(at)
}

// AvailablePrimaryKey returns a primary key no row of the table has used.
func (t *Table[T]) AvailablePrimaryKey() (uint64, error) {
	return t.ctx.NextPrimaryKey(t.scope, t.name)
}
