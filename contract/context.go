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

// Package contract defines what a contract sees of the host while one of
// its actions runs, plus the typed helpers contracts are written with:
// tables of rows and a dispatcher from action names to handlers.
package contract

import (
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/transactions"
)

// Context is the set of host capabilities offered to a running action.
// Every call may charge compute; any error returned by it should be
// returned by the handler unchanged, which fails the whole transaction.
type Context interface {
	// Self is the account whose contract code is running.
	Self() basics.Name
	// Receiver is the account the action was addressed to. Without
	// notifications it is always Self.
	Receiver() basics.Name
	// Action is the action being applied, arguments still packed.
	Action() transactions.Action

	// RequireAuth fails with an AuthorizationError unless actor authorized the action.
	RequireAuth(actor basics.Name) error
	// HasAuth reports whether actor authorized the action.
	HasAuth(actor basics.Name) bool

	// Checkpoint charges one unit of loop progress against the compute
	// budget and fails once the budget or the caller's deadline is exhausted.
	Checkpoint() error

	// SendInline queues an action to run after this one returns. Its
	// authorizations must all be held by Self.
	SendInline(act transactions.Action) error

	// Find returns the row at pk in Self's table, and the account paying for it.
	Find(scope, table basics.Name, pk uint64) (payer basics.Name, data []byte, found bool, err error)
	// Store inserts a new row billed to payer; pk must be free.
	Store(scope, table basics.Name, pk uint64, payer basics.Name, data []byte) error
	// Update replaces an existing row, moving the bill to payer.
	Update(scope, table basics.Name, pk uint64, payer basics.Name, data []byte) error
	// Remove deletes an existing row and refunds its payer.
	Remove(scope, table basics.Name, pk uint64) error
	// LowerBound returns the smallest primary key >= pk present in the table.
	LowerBound(scope, table basics.Name, pk uint64) (found uint64, ok bool, err error)
	// NextPrimaryKey hands out the next unused id of the table. Ids are
	// never handed out twice, even after the rows using them are removed.
	NextPrimaryKey(scope, table basics.Name) (uint64, error)
}

// Contract is code deployed to an account.
type Contract interface {
	// Apply runs the handler for ctx.Action().
	Apply(ctx Context) error

	// PackJSON converts a JSON array of arguments into the packed action data.
	PackJSON(action basics.Name, args []byte) ([]byte, error)
	// UnpackJSON renders packed action data as a JSON array.
	UnpackJSON(action basics.Name, data []byte) ([]byte, error)

	// DecodeRow decodes a row of one of the contract's tables.
	DecodeRow(table basics.Name, data []byte) (interface{}, error)

	// Actions lists the actions the contract accepts.
	Actions() []basics.Name
}
