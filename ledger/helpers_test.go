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

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/contract"
	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/bookkeeping"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger/store"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/protocol"
)

// kv is a small contract exercising every host capability.
const kvCode = "ledgertest.kv"

var (
	kvAccount = basics.MustName("kv")
	kvTable   = basics.MustName("rows")
	alice     = basics.MustName("alice")
	bob       = basics.MustName("bob")
	nokey     = basics.MustName("nokey")
	tiny      = basics.MustName("tiny")
	plain     = basics.MustName("plain")
)

type kvRow struct {
	_struct struct{} `codec:",toarray"`

	PK    uint64
	Value string
}

func (r kvRow) PrimaryKey() uint64 { return r.PK }

type putArgs struct {
	_struct struct{} `codec:",toarray"`

	Scope basics.Name
	PK    uint64
	Payer basics.Name
	Value string
}

type eraseArgs struct {
	_struct struct{} `codec:",toarray"`

	Scope basics.Name
	PK    uint64
}

type popArgs struct {
	_struct struct{} `codec:",toarray"`

	Scope basics.Name
	Count uint64
}

type nextArgs struct {
	_struct struct{} `codec:",toarray"`

	Scope basics.Name
	Payer basics.Name
}

type failArgs struct {
	_struct struct{} `codec:",toarray"`

	Msg string
}

type sendArgs struct {
	_struct struct{} `codec:",toarray"`

	Hops  int
	Actor basics.Name
	Fail  bool
}

type spinArgs struct {
	_struct struct{} `codec:",toarray"`

	Count int64
}

type kvContract struct {
	*contract.Dispatcher
}

func (kvContract) DecodeRow(table basics.Name, data []byte) (interface{}, error) {
	var row kvRow
	err := protocol.Decode(data, &row)
	return row, err
}

func rows(ctx contract.Context, scope basics.Name) *contract.Table[kvRow] {
	return contract.NewTable[kvRow](ctx, scope, kvTable)
}

func newKVContract() contract.Contract {
	d := contract.NewDispatcher()
	contract.Register(d, "put", func(ctx contract.Context, args *putArgs) error {
		tbl := rows(ctx, args.Scope)
		row := kvRow{PK: args.PK, Value: args.Value}
		_, found, err := tbl.Find(args.PK)
		if err != nil {
			return err
		}
		if found {
			return tbl.Modify(args.Payer, row)
		}
		return tbl.Emplace(args.Payer, row)
	})
	contract.Register(d, "erase", func(ctx contract.Context, args *eraseArgs) error {
		return rows(ctx, args.Scope).Erase(args.PK)
	})
	contract.Register(d, "pop", func(ctx contract.Context, args *popArgs) error {
		tbl := rows(ctx, args.Scope)
		for i := uint64(0); i < args.Count; i++ {
			row, found, err := tbl.Begin()
			if err != nil || !found {
				return err
			}
			if err := tbl.Erase(row.PK); err != nil {
				return err
			}
		}
		return nil
	})
	contract.Register(d, "next", func(ctx contract.Context, args *nextArgs) error {
		tbl := rows(ctx, args.Scope)
		pk, err := tbl.AvailablePrimaryKey()
		if err != nil {
			return err
		}
		return tbl.Emplace(args.Payer, kvRow{PK: pk, Value: "next"})
	})
	contract.Register(d, "fail", func(ctx contract.Context, args *failArgs) error {
		return contract.Check(false, args.Msg)
	})
	contract.Register(d, "send", func(ctx contract.Context, args *sendArgs) error {
		if args.Hops == 0 {
			return contract.Check(!args.Fail, "end of chain")
		}
		next := sendArgs{Hops: args.Hops - 1, Actor: args.Actor, Fail: args.Fail}
		return ctx.SendInline(transactions.MakeAction(ctx.Self(), basics.MustName("send"), &next,
			basics.PermissionLevel{Actor: args.Actor, Permission: basics.ActivePermission}))
	})
	contract.Register(d, "spin", func(ctx contract.Context, args *spinArgs) error {
		for i := int64(0); i < args.Count || args.Count == -1; i++ {
			if err := ctx.Checkpoint(); err != nil {
				return err
			}
		}
		return nil
	})
	contract.Register(d, "boom", func(ctx contract.Context, args *failArgs) error {
		panic(args.Msg)
	})
	return kvContract{Dispatcher: d}
}

func init() {
	contract.RegisterCode(kvCode, newKVContract)
}

func seedFor(i int) crypto.Seed {
	var s crypto.Seed
	s[0] = byte(i + 1)
	return s
}

type testLedger struct {
	*Ledger
	t    *testing.T
	st   store.Store
	keys map[basics.Name]*crypto.SignatureSecrets
	now  time.Time
}

func testGenesis(keys map[basics.Name]*crypto.SignatureSecrets) bookkeeping.Genesis {
	g := bookkeeping.Genesis{
		ChainName: "ledgertest",
		Timestamp: 1700000000,
		Deployments: []bookkeeping.GenesisDeployment{
			{Account: kvAccount, Code: kvCode},
		},
	}
	for i, name := range []basics.Name{kvAccount, alice, bob, tiny, plain} {
		sk := crypto.GenerateSignatureSecrets(seedFor(i))
		keys[name] = sk
		acct := bookkeeping.GenesisAccount{Name: name, PublicKey: sk.PublicKey}
		if name == tiny {
			acct.RAMQuota = 200
		}
		g.Accounts = append(g.Accounts, acct)
	}
	g.Accounts = append(g.Accounts, bookkeeping.GenesisAccount{Name: nokey})
	return g
}

func testParams() config.ExecParams {
	params := config.DefaultExecParams()
	params.MaxTxnComputeUnits = 5000
	return params
}

func memStore(t *testing.T, engine string) store.Store {
	st, err := OpenStore(engine, t.TempDir(), true, logging.TestingLog(t))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func makeTestLedgerWith(t *testing.T, st store.Store, params config.ExecParams) *testLedger {
	keys := make(map[basics.Name]*crypto.SignatureSecrets)
	l, err := Open(st, testGenesis(keys), params, logging.TestingLog(t))
	require.NoError(t, err)

	tl := &testLedger{Ledger: l, t: t, st: st, keys: keys, now: time.Now()}
	l.SetClock(func() time.Time { return tl.now })
	return tl
}

func makeTestLedger(t *testing.T) *testLedger {
	return makeTestLedgerWith(t, memStore(t, config.StorageEnginePebble), testParams())
}

func auth(actors ...basics.Name) []basics.PermissionLevel {
	pls := make([]basics.PermissionLevel, len(actors))
	for i, actor := range actors {
		pls[i] = basics.PermissionLevel{Actor: actor, Permission: basics.ActivePermission}
	}
	return pls
}

func kvAction(name string, args interface{}, actors ...basics.Name) transactions.Action {
	return transactions.MakeAction(kvAccount, basics.MustName(name), args, auth(actors...)...)
}

// sign signs txn with the key of every actor its actions claim.
func (tl *testLedger) sign(txn transactions.Transaction) transactions.SignedTxn {
	stxn := transactions.SignedTxn{Txn: txn}
	for _, act := range txn.Actions {
		for _, pl := range act.Authorization {
			if sk, ok := tl.keys[pl.Actor]; ok {
				stxn.AddSignature(sk)
			}
		}
	}
	return stxn
}

func (tl *testLedger) txn(actions ...transactions.Action) transactions.Transaction {
	return transactions.MakeTransaction(tl.ChainID(), tl.now, time.Minute, actions...)
}

func (tl *testLedger) push(actions ...transactions.Action) (Receipt, error) {
	return tl.Apply(context.Background(), tl.sign(tl.txn(actions...)))
}

func (tl *testLedger) mustPush(actions ...transactions.Action) Receipt {
	receipt, err := tl.push(actions...)
	require.NoError(tl.t, err)
	return receipt
}

func (tl *testLedger) values(scope basics.Name) map[uint64]string {
	rs, err := tl.Rows(kvAccount, scope, kvTable)
	require.NoError(tl.t, err)
	res := make(map[uint64]string, len(rs))
	for _, r := range rs {
		var row kvRow
		require.NoError(tl.t, protocol.Decode(r.Data, &row))
		require.Equal(tl.t, r.PK, row.PK)
		res[r.PK] = row.Value
	}
	return res
}

func (tl *testLedger) ram(account basics.Name) uint64 {
	usage, err := tl.RAMUsage(account)
	require.NoError(tl.t, err)
	return usage
}

// rowBytes is what a kv row is billed.
func rowBytes(pk uint64, value string) uint64 {
	return uint64(len(protocol.Encode(&kvRow{PK: pk, Value: value}))) + config.DefaultExecParams().RowOverhead
}
