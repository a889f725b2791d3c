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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger/ledgercore"
	"github.com/algorand/testwax/protocol"
	"github.com/algorand/testwax/test/partitiontest"
)

type note struct {
	_struct struct{} `codec:",toarray"`

	ID   uint64
	Text string
}

func (n note) PrimaryKey() uint64 { return n.ID }

type addArgs struct {
	_struct struct{} `codec:",toarray"`

	Owner basics.Name
	Text  string
}

var (
	self  = basics.MustName("notes")
	alice = basics.MustName("alice")
	tNote = basics.MustName("note")
)

func makeNotesDispatcher() *Dispatcher {
	d := NewDispatcher()
	Register(d, "add", func(ctx Context, args *addArgs) error {
		if err := ctx.RequireAuth(args.Owner); err != nil {
			return err
		}
		if err := Check(args.Text != "", "empty note"); err != nil {
			return err
		}
		notes := NewTable[note](ctx, args.Owner, tNote)
		id, err := notes.AvailablePrimaryKey()
		if err != nil {
			return err
		}
		return notes.Emplace(args.Owner, note{ID: id, Text: args.Text})
	})
	Register(d, "noop", func(ctx Context, args *struct {
		_struct struct{} `codec:",toarray"`
	}) error {
		return nil
	})
	return d
}

func TestDispatcherApply(t *testing.T) {
	partitiontest.PartitionTest(t)

	d := makeNotesDispatcher()
	require.Equal(t, []basics.Name{basics.MustName("add"), basics.MustName("noop")}, d.Actions())

	act := transactions.MakeAction(self, basics.MustName("add"), &addArgs{Owner: alice, Text: "first"},
		basics.PermissionLevel{Actor: alice, Permission: basics.ActivePermission})
	ctx := makeMockContext(self, act)
	require.NoError(t, d.Apply(ctx))
	require.NoError(t, d.Apply(ctx))

	notes := NewTable[note](ctx, alice, tNote)
	first, found, err := notes.Begin()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(0), first.ID)
	require.Equal(t, "first", first.Text)

	second, found, err := notes.LowerBound(first.ID + 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(1), second.ID)

	payer, _, found, err := ctx.Find(alice, tNote, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, alice, payer)
}

func TestDispatcherErrors(t *testing.T) {
	partitiontest.PartitionTest(t)

	d := makeNotesDispatcher()

	var unknown *ledgercore.UnknownActionError
	act := transactions.Action{Account: self, Name: basics.MustName("missing")}
	require.ErrorAs(t, d.Apply(makeMockContext(self, act)), &unknown)
	require.Equal(t, self, unknown.Contract)

	var badData *ledgercore.ActionDataError
	act = transactions.Action{Account: self, Name: basics.MustName("add"), Data: []byte{0xc1}}
	require.ErrorAs(t, d.Apply(makeMockContext(self, act)), &badData)

	var auth *ledgercore.AuthorizationError
	act = transactions.MakeAction(self, basics.MustName("add"), &addArgs{Owner: alice, Text: "x"})
	require.ErrorAs(t, d.Apply(makeMockContext(self, act)), &auth)
	require.Equal(t, alice, auth.Actor)

	var asrt *ledgercore.AssertionError
	act = transactions.MakeAction(self, basics.MustName("add"), &addArgs{Owner: alice},
		basics.PermissionLevel{Actor: alice, Permission: basics.ActivePermission})
	require.ErrorAs(t, d.Apply(makeMockContext(self, act)), &asrt)
	require.Equal(t, "empty note", asrt.Msg)
}

func TestDispatcherJSON(t *testing.T) {
	partitiontest.PartitionTest(t)

	d := makeNotesDispatcher()
	data, err := d.PackJSON(basics.MustName("add"), []byte(`["alice", "from json"]`))
	require.NoError(t, err)

	var args addArgs
	require.NoError(t, protocol.Decode(data, &args))
	require.Equal(t, alice, args.Owner)
	require.Equal(t, "from json", args.Text)

	js, err := d.UnpackJSON(basics.MustName("add"), data)
	require.NoError(t, err)
	require.JSONEq(t, `["alice", "from json"]`, string(js))

	_, err = d.PackJSON(basics.MustName("add"), []byte(`{"owner": 1}`))
	require.Error(t, err)

	_, err = d.PackJSON(basics.MustName("nope"), []byte(`[]`))
	require.Error(t, err)
}

func TestTableModifyErase(t *testing.T) {
	partitiontest.PartitionTest(t)

	ctx := makeMockContext(self, transactions.Action{})
	notes := NewTable[note](ctx, self, tNote)
	require.Equal(t, tNote, notes.Name())
	require.Equal(t, self, notes.Scope())

	require.NoError(t, notes.Emplace(self, note{ID: 7, Text: "a"}))
	require.Error(t, notes.Emplace(self, note{ID: 7, Text: "dup"}))

	require.NoError(t, notes.Modify(alice, note{ID: 7, Text: "b"}))
	row, found, err := notes.Find(7)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b", row.Text)
	payer, _, _, _ := ctx.Find(self, tNote, 7)
	require.Equal(t, alice, payer)

	require.NoError(t, notes.Erase(7))
	_, found, err = notes.Find(7)
	require.NoError(t, err)
	require.False(t, found)
	_, found, err = notes.Begin()
	require.NoError(t, err)
	require.False(t, found)
}

func TestCheck(t *testing.T) {
	partitiontest.PartitionTest(t)

	require.NoError(t, Check(true, "fine"))
	err := Check(false, "update fail requested by caller")
	var asrt *ledgercore.AssertionError
	require.ErrorAs(t, err, &asrt)
	require.Equal(t, "update fail requested by caller", asrt.Msg)
}

type stubContract struct{ *Dispatcher }

func (stubContract) DecodeRow(table basics.Name, data []byte) (interface{}, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	partitiontest.PartitionTest(t)

	RegisterCode("contract-test-stub", func() Contract { return stubContract{makeNotesDispatcher()} })
	c, ok := Lookup("contract-test-stub")
	require.True(t, ok)
	require.Len(t, c.Actions(), 2)
	require.Contains(t, Codes(), "contract-test-stub")

	_, ok = Lookup("contract-test-missing")
	require.False(t, ok)

	require.Panics(t, func() {
		RegisterCode("contract-test-stub", func() Contract { return stubContract{NewDispatcher()} })
	})
}
