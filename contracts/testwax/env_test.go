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

package testwax

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/bookkeeping"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/protocol"
)

var (
	self   = basics.MustName("testwax")
	logger = basics.MustName("logger")
	alice  = basics.MustName("alice")
	bob    = basics.MustName("bob")
	carol  = basics.MustName("carol")
	idle   = basics.MustName("idle")
)

type env struct {
	t    require.TestingT
	l    *ledger.Ledger
	keys map[basics.Name]*crypto.SignatureSecrets
}

func testGenesis(keys map[basics.Name]*crypto.SignatureSecrets) bookkeeping.Genesis {
	g := bookkeeping.Genesis{
		ChainName: "testwax-test",
		Timestamp: 1700000000,
		Deployments: []bookkeeping.GenesisDeployment{
			{Account: self, Code: Code},
			{Account: logger, Code: Code},
		},
	}
	for i, name := range []basics.Name{self, logger, alice, bob, carol, idle} {
		var seed crypto.Seed
		seed[0] = byte(i + 1)
		sk := crypto.GenerateSignatureSecrets(seed)
		keys[name] = sk
		g.Accounts = append(g.Accounts, bookkeeping.GenesisAccount{Name: name, PublicKey: sk.PublicKey})
	}
	return g
}

// newEnv opens a ledger on an in-memory store. The returned func closes it.
func newEnv(t require.TestingT, dir string, params config.ExecParams) (*env, func()) {
	log := logging.NewLogger()
	log.SetLevel(logging.Warn)
	st, err := ledger.OpenStore(config.StorageEnginePebble, dir, true, log)
	require.NoError(t, err)

	keys := make(map[basics.Name]*crypto.SignatureSecrets)
	l, err := ledger.Open(st, testGenesis(keys), params, log)
	require.NoError(t, err)
	return &env{t: t, l: l, keys: keys}, func() { l.Close() }
}

func action(name basics.Name, args interface{}, actors ...basics.Name) transactions.Action {
	auth := make([]basics.PermissionLevel, len(actors))
	for i, actor := range actors {
		auth[i] = basics.PermissionLevel{Actor: actor, Permission: basics.ActivePermission}
	}
	return transactions.MakeAction(self, name, args, auth...)
}

func (e *env) push(actions ...transactions.Action) (ledger.Receipt, error) {
	txn := transactions.MakeTransaction(e.l.ChainID(), time.Now(), time.Minute, actions...)
	stxn := transactions.SignedTxn{Txn: txn}
	for _, act := range actions {
		for _, pl := range act.Authorization {
			stxn.AddSignature(e.keys[pl.Actor])
		}
	}
	return e.l.Apply(context.Background(), stxn)
}

func (e *env) update(updater basics.Name, message string, fail bool, actors ...basics.Name) (ledger.Receipt, error) {
	if len(actors) == 0 {
		actors = []basics.Name{updater}
	}
	return e.push(action(ActUpdate, &UpdateArgs{Updater: updater, Message: message, Fail: fail}, actors...))
}

// messages returns the messages table as updater -> message.
func (e *env) messages() map[basics.Name]string {
	rows, err := e.l.Rows(self, self, MessagesTable)
	require.NoError(e.t, err)
	res := make(map[basics.Name]string, len(rows))
	for _, row := range rows {
		var m Message
		require.NoError(e.t, protocol.Decode(row.Data, &m))
		require.Equal(e.t, row.PK, m.PrimaryKey())
		require.Equal(e.t, m.Updater, row.Payer)
		res[m.Updater] = m.Message
	}
	return res
}

// ramblastIDs returns the ids of the filler rows in caller's scope.
func (e *env) ramblastIDs(caller basics.Name) []uint64 {
	rows, err := e.l.Rows(self, caller, RAMBlastTable)
	require.NoError(e.t, err)
	ids := []uint64{}
	for _, row := range rows {
		var r RAMBlast
		require.NoError(e.t, protocol.Decode(row.Data, &r))
		require.Equal(e.t, Filler, r.Message)
		require.Equal(e.t, caller, row.Payer)
		ids = append(ids, r.ID)
	}
	return ids
}

func mustEnv(t *testing.T) *env {
	e, closeFn := newEnv(t, t.TempDir(), config.DefaultExecParams())
	t.Cleanup(closeFn)
	return e
}
