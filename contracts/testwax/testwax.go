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

// Package testwax is a fixture contract for exercising a host. Its actions
// upsert keyed records, call back into a logging action, fail on request,
// loop until the compute budget runs out, and allocate or release filler
// rows to probe storage accounting.
package testwax

import (
	"fmt"
	"strconv"

	"github.com/algorand/testwax/contract"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/protocol"
)

// Code is the name the contract is registered under.
const Code = "testwax"

// Filler is the text of every ramblast row.
const Filler = "uuuuuuuuuuuuuuuuussssssssssssssseeeeeeeeeeeeeeeee uuuuuuuuuuuuuuppppppppppppppppppp rrrrrrrrrrrrrrrrraaaaaaaaaaaaaaaaaaaaaaammmmmmmmmmmmmm"

// UpdateFailMessage is the assertion message of update when asked to fail.
const UpdateFailMessage = "update fail requested by caller"

// Table names.
var (
	MessagesTable = basics.MustName("messages")
	RAMBlastTable = basics.MustName("ramblast")
)

// Action names.
var (
	ActUpdate     = basics.MustName("update")
	ActCalllog    = basics.MustName("calllog")
	ActLog        = basics.MustName("log")
	ActLoop       = basics.MustName("loop")
	ActUseram     = basics.MustName("useram")
	ActReleaseram = basics.MustName("releaseram")
)

// Message is the latest message of one updater, kept in the contract's own scope.
type Message struct {
	_struct struct{} `codec:",toarray"`

	Updater basics.Name
	Message string
}

// PrimaryKey implements contract.Row.
func (m Message) PrimaryKey() uint64 { return uint64(m.Updater) }

// RAMBlast is a filler row, kept in the caller's scope.
type RAMBlast struct {
	_struct struct{} `codec:",toarray"`

	ID      uint64
	Message string
}

// PrimaryKey implements contract.Row.
func (r RAMBlast) PrimaryKey() uint64 { return r.ID }

// UpdateArgs are the arguments of update.
type UpdateArgs struct {
	_struct struct{} `codec:",toarray"`

	Updater basics.Name
	Message string
	Fail    bool
}

// CalllogArgs are the arguments of calllog.
type CalllogArgs struct {
	_struct struct{} `codec:",toarray"`

	Logger  basics.Name
	Message string
}

// LogArgs are the arguments of log.
type LogArgs struct {
	_struct struct{} `codec:",toarray"`

	Message string
}

// LoopArgs are the arguments of loop. A Count of -1 loops until the
// compute budget is exhausted.
type LoopArgs struct {
	_struct struct{} `codec:",toarray"`

	Looper basics.Name
	Count  int64
}

// UseramArgs are the arguments of useram.
type UseramArgs struct {
	_struct struct{} `codec:",toarray"`

	Caller basics.Name
	Count  uint64
}

// ReleaseramArgs are the arguments of releaseram.
type ReleaseramArgs struct {
	_struct struct{} `codec:",toarray"`

	Caller basics.Name
	Count  uint64
}

// Contract is the testwax contract.
type Contract struct {
	*contract.Dispatcher
}

// New returns the contract with all of its actions registered.
func New() *Contract {
	d := contract.NewDispatcher()
	contract.Register(d, "update", update)
	contract.Register(d, "calllog", calllog)
	contract.Register(d, "log", logMessage)
	contract.Register(d, "loop", loop)
	contract.Register(d, "useram", useram)
	contract.Register(d, "releaseram", releaseram)
	return &Contract{Dispatcher: d}
}

func init() {
	contract.RegisterCode(Code, func() contract.Contract { return New() })
}

// DecodeRow implements contract.Contract.
func (c *Contract) DecodeRow(table basics.Name, data []byte) (interface{}, error) {
	switch table {
	case MessagesTable:
		var m Message
		err := protocol.Decode(data, &m)
		return m, err
	case RAMBlastTable:
		var r RAMBlast
		err := protocol.Decode(data, &r)
		return r, err
	default:
		return nil, fmt.Errorf("testwax has no table %s", table)
	}
}

func messages(ctx contract.Context) *contract.Table[Message] {
	return contract.NewTable[Message](ctx, ctx.Self(), MessagesTable)
}

func ramblast(ctx contract.Context, caller basics.Name) *contract.Table[RAMBlast] {
	return contract.NewTable[RAMBlast](ctx, caller, RAMBlastTable)
}

// upsertMessage stores message as the latest message of updater, billed
// to updater. The fail check runs before anything is written.
func upsertMessage(ctx contract.Context, updater basics.Name, message string, fail bool) error {
	if err := ctx.RequireAuth(updater); err != nil {
		return err
	}
	if err := contract.Check(!fail, UpdateFailMessage); err != nil {
		return err
	}

	tbl := messages(ctx)
	row := Message{Updater: updater, Message: message}
	_, found, err := tbl.Find(row.PrimaryKey())
	if err != nil {
		return err
	}
	if found {
		return tbl.Modify(updater, row)
	}
	return tbl.Emplace(updater, row)
}

func update(ctx contract.Context, args *UpdateArgs) error {
	if err := upsertMessage(ctx, args.Updater, args.Message, args.Fail); err != nil {
		return err
	}
	return calllog(ctx, &CalllogArgs{Logger: ctx.Self(), Message: args.Message})
}

func calllog(ctx contract.Context, args *CalllogArgs) error {
	self := basics.PermissionLevel{Actor: ctx.Self(), Permission: basics.ActivePermission}
	return ctx.SendInline(transactions.MakeAction(args.Logger, ActLog, &LogArgs{Message: args.Message}, self))
}

func logMessage(ctx contract.Context, args *LogArgs) error {
	return nil
}

func loop(ctx contract.Context, args *LoopArgs) error {
	if err := contract.Check(args.Count >= -1, "loop count must be -1 or at least 0"); err != nil {
		return err
	}
	for i := int64(0); i < args.Count || args.Count == -1; i++ {
		if err := ctx.Checkpoint(); err != nil {
			return err
		}
		if err := upsertMessage(ctx, args.Looper, "loop"+strconv.FormatInt(i, 10), false); err != nil {
			return err
		}
	}
	return nil
}

func useram(ctx contract.Context, args *UseramArgs) error {
	tbl := ramblast(ctx, args.Caller)
	for i := uint64(0); i < args.Count; i++ {
		if err := ctx.Checkpoint(); err != nil {
			return err
		}
		id, err := tbl.AvailablePrimaryKey()
		if err != nil {
			return err
		}
		if err := tbl.Emplace(args.Caller, RAMBlast{ID: id, Message: Filler}); err != nil {
			return err
		}
	}
	return nil
}

func releaseram(ctx contract.Context, args *ReleaseramArgs) error {
	tbl := ramblast(ctx, args.Caller)
	for i := uint64(0); i < args.Count; i++ {
		if err := ctx.Checkpoint(); err != nil {
			return err
		}
		row, found, err := tbl.Begin()
		if err != nil {
			return err
		}
		if !found {
			break
		}
		if err := tbl.Erase(row.ID); err != nil {
			return err
		}
	}
	return nil
}
