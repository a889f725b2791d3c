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

package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/contracts/testwax"
	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/daemon/waxd/api"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/bookkeeping"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/node"
	"github.com/algorand/testwax/test/partitiontest"
)

var (
	waxAccount = basics.MustName("testwax")
	alice      = basics.MustName("alice")
	bob        = basics.MustName("bob")
)

func testInitOptions() initOptions {
	var counter byte
	return initOptions{
		chainName: "clitest",
		accounts:  []basics.Name{waxAccount, alice, bob},
		deploys:   []bookkeeping.GenesisDeployment{{Account: waxAccount, Code: testwax.Code}},
		cfg:       config.GetDefaultLocal(),
		now:       time.Unix(1700000000, 0),
		seedSource: func() (s crypto.Seed, err error) {
			counter++
			s[0] = counter
			return
		},
	}
}

func TestInitDataDir(t *testing.T) {
	partitiontest.PartitionTest(t)

	dir := filepath.Join(t.TempDir(), "chain")
	g, err := initDataDir(dir, testInitOptions())
	require.NoError(t, err)
	require.Len(t, g.Accounts, 3)

	loaded, err := bookkeeping.LoadGenesisFromFile(filepath.Join(dir, config.GenesisJSONFile))
	require.NoError(t, err)
	require.Equal(t, g.ID(), loaded.ID())

	keys, err := loadKeys(dir)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	for _, acct := range g.Accounts {
		require.Equal(t, acct.PublicKey, keys[acct.Name].PublicKey)
	}
	info, err := os.Stat(keysPath(dir))
	require.NoError(t, err)
	require.Zero(t, info.Mode().Perm()&0077)

	_, err = config.LoadConfigFromDisk(dir)
	require.NoError(t, err)

	_, err = initDataDir(dir, testInitOptions())
	require.Error(t, err)

	lines := accountLines(g, keys)
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "alice"))
	require.Contains(t, lines[2], "[testwax]")
	require.Contains(t, lines[2], "[signer]")
}

func TestInitRejectsBadGenesis(t *testing.T) {
	partitiontest.PartitionTest(t)

	opts := testInitOptions()
	opts.deploys = []bookkeeping.GenesisDeployment{{Account: basics.MustName("nobody"), Code: testwax.Code}}
	_, err := initDataDir(t.TempDir(), opts)
	require.Error(t, err)
}

func TestParseDeploy(t *testing.T) {
	partitiontest.PartitionTest(t)

	dep, err := parseDeploy("logger=testwax")
	require.NoError(t, err)
	require.Equal(t, bookkeeping.GenesisDeployment{Account: basics.MustName("logger"), Code: testwax.Code}, dep)

	for _, bad := range []string{"logger", "Logger=testwax", "logger=nosuchcode"} {
		_, err := parseDeploy(bad)
		require.Error(t, err, bad)
	}
}

func TestLoadKeysErrors(t *testing.T) {
	partitiontest.PartitionTest(t)

	dir := t.TempDir()
	_, err := loadKeys(dir)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(keysPath(dir), []byte(`{"alice": "c2hvcnQ="}`), 0600))
	_, err = loadKeys(dir)
	require.ErrorContains(t, err, "has 5 bytes")

	require.NoError(t, os.WriteFile(keysPath(dir), []byte(`{"Alice": ""}`), 0600))
	_, err = loadKeys(dir)
	require.Error(t, err)
}

func openTestNode(t *testing.T) (*node.WaxNode, keyring) {
	dir := t.TempDir()
	_, err := initDataDir(dir, testInitOptions())
	require.NoError(t, err)
	keys, err := loadKeys(dir)
	require.NoError(t, err)
	n, err := node.Open(dir, logging.TestingLog(t))
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })
	return n, keys
}

func TestPushLocal(t *testing.T) {
	partitiontest.PartitionTest(t)

	n, keys := openTestNode(t)
	client := localClient{n: n}
	status, err := client.Status()
	require.NoError(t, err)

	stxn, err := buildTransaction(status, keys, waxAccount, testwax.ActUpdate, `["alice","hi",false]`, []string{"alice"}, time.Now(), time.Minute)
	require.NoError(t, err)
	receipt, err := client.Send(context.Background(), stxn)
	require.NoError(t, err)

	lines := describeTraces(status, receipt)
	require.Len(t, lines, 2)
	require.Equal(t, `#0 testwax::update ["alice","hi",false] cpu=`, lines[0][:len(`#0 testwax::update ["alice","hi",false] cpu=`)])
	require.True(t, strings.HasPrefix(lines[1], `  #1 testwax::log ["hi"]`), lines[1])

	table, err := client.Table(waxAccount, waxAccount, testwax.MessagesTable)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	ram, err := client.RAM(alice)
	require.NoError(t, err)
	require.NotZero(t, ram.Usage)

	_, err = client.Send(context.Background(), stxn)
	require.Equal(t, "duplicate", rejectionReason(err))

	stxn, err = buildTransaction(status, keys, waxAccount, testwax.ActUpdate, `["alice","x",true]`, []string{"alice@active"}, time.Now(), time.Minute)
	require.NoError(t, err)
	_, err = client.Send(context.Background(), stxn)
	require.Equal(t, "assertion", rejectionReason(err))
}

func TestBuildTransactionErrors(t *testing.T) {
	partitiontest.PartitionTest(t)

	n, keys := openTestNode(t)
	status, err := n.Status()
	require.NoError(t, err)
	now := time.Now()

	_, err = buildTransaction(status, keys, waxAccount, testwax.ActUpdate, `["alice","hi",false]`, nil, now, time.Minute)
	require.EqualError(t, err, errorNoAuthorization)

	_, err = buildTransaction(status, keys, alice, testwax.ActUpdate, `["alice","hi",false]`, []string{"alice"}, now, time.Minute)
	require.Error(t, err)

	_, err = buildTransaction(status, keys, waxAccount, testwax.ActUpdate, `{"not":"an array"}`, []string{"alice"}, now, time.Minute)
	require.Error(t, err)

	_, err = buildTransaction(status, keys, waxAccount, testwax.ActUpdate, `["alice","hi",false]`, []string{"carol"}, now, time.Minute)
	require.ErrorContains(t, err, "No key for carol")

	_, err = buildTransaction(status, keys, waxAccount, testwax.ActUpdate, `["alice","hi",false]`, []string{"Alice"}, now, time.Minute)
	require.Error(t, err)
}

func TestRestClient(t *testing.T) {
	partitiontest.PartitionTest(t)

	n, keys := openTestNode(t)
	srv := httptest.NewServer(api.NewRouter(logging.TestingLog(t), n, make(chan struct{}), "secret", false))
	defer srv.Close()

	client := makeRestClient(strings.TrimPrefix(srv.URL, "http://"), "secret")
	defer client.Close()

	status, err := client.Status()
	require.NoError(t, err)
	require.Equal(t, "clitest", status.ChainName)
	require.Equal(t, n.Ledger().ChainID(), status.ChainID)

	stxn, err := buildTransaction(status, keys, waxAccount, testwax.ActUseram, `["bob",2]`, []string{"bob"}, time.Now(), time.Minute)
	require.NoError(t, err)
	receipt, err := client.Send(context.Background(), stxn)
	require.NoError(t, err)
	require.Equal(t, stxn.ID(), receipt.Txid)

	table, err := client.Table(waxAccount, bob, testwax.RAMBlastTable)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	ram, err := client.RAM(bob)
	require.NoError(t, err)
	require.Equal(t, bob, ram.Account)
	require.NotZero(t, ram.Usage)

	_, err = client.Send(context.Background(), stxn)
	var rerr *remoteError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, http.StatusConflict, rerr.status)
	require.Equal(t, "duplicate", rejectionReason(err))

	_, err = makeRestClient(srv.URL, "wrong").Status()
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, http.StatusUnauthorized, rerr.status)
}
