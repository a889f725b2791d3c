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

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/algorand/testwax/config"
	"github.com/algorand/testwax/contracts/testwax"
	"github.com/algorand/testwax/crypto"
	"github.com/algorand/testwax/daemon/waxd/api/middlewares"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/bookkeeping"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger"
	"github.com/algorand/testwax/logging"
	"github.com/algorand/testwax/node"
	"github.com/algorand/testwax/protocol"
	"github.com/algorand/testwax/test/partitiontest"
)

const testToken = "0123456789abcdef"

var (
	waxAccount = basics.MustName("testwax")
	alice      = basics.MustName("alice")
)

type apiFixture struct {
	t        *testing.T
	e        *echo.Echo
	n        *node.WaxNode
	keys     map[basics.Name]*crypto.SignatureSecrets
	shutdown chan struct{}
}

func makeFixture(t *testing.T) *apiFixture {
	keys := make(map[basics.Name]*crypto.SignatureSecrets)
	g := bookkeeping.Genesis{
		ChainName:   "apitest",
		Timestamp:   1700000000,
		Deployments: []bookkeeping.GenesisDeployment{{Account: waxAccount, Code: testwax.Code}},
	}
	for i, name := range []basics.Name{waxAccount, alice} {
		var seed crypto.Seed
		seed[0] = byte(i + 11)
		keys[name] = crypto.GenerateSignatureSecrets(seed)
		g.Accounts = append(g.Accounts, bookkeeping.GenesisAccount{Name: name, PublicKey: keys[name].PublicKey})
	}

	cfg := config.GetDefaultLocal()
	cfg.InMemory = true
	log := logging.TestingLog(t)
	n, err := node.MakeNode(log, t.TempDir(), cfg, g)
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })

	shutdown := make(chan struct{})
	return &apiFixture{
		t:        t,
		e:        NewRouter(log, n, shutdown, testToken, true),
		n:        n,
		keys:     keys,
		shutdown: shutdown,
	}
}

func (f *apiFixture) do(method, path string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(middlewares.TokenHeader, testToken)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) updateTxn(message string, fail bool, signers ...basics.Name) transactions.SignedTxn {
	act := transactions.MakeAction(waxAccount, testwax.ActUpdate,
		&testwax.UpdateArgs{Updater: alice, Message: message, Fail: fail},
		basics.PermissionLevel{Actor: alice, Permission: basics.ActivePermission})
	txn := transactions.MakeTransaction(f.n.Ledger().ChainID(), time.Now(), time.Minute, act)
	stxn := transactions.SignedTxn{Txn: txn}
	for _, s := range signers {
		stxn.AddSignature(f.keys[s])
	}
	return stxn
}

func (f *apiFixture) post(stxn transactions.SignedTxn) *httptest.ResponseRecorder {
	return f.do(http.MethodPost, "/v1/transactions", protocol.Encode(&stxn),
		map[string]string{echo.HeaderContentType: ContentTypeMsgpack})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	var resp ErrorResponse
	require.NoError(t, protocol.DecodeJSON(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealthAndAuth(t *testing.T) {
	partitiontest.PartitionTest(t)
	f := makeFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status node.StatusReport
	require.NoError(t, protocol.DecodeJSON(rec.Body.Bytes(), &status))
	require.Equal(t, "apitest", status.ChainName)
	require.Equal(t, f.n.Ledger().ChainID(), status.ChainID)

	rec = f.do(http.MethodGet, "/versions", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var v config.Version
	require.NoError(t, protocol.DecodeJSON(rec.Body.Bytes(), &v))
	require.Equal(t, config.VersionMinor, v.Minor)
}

func TestSendTransaction(t *testing.T) {
	partitiontest.PartitionTest(t)
	f := makeFixture(t)

	stxn := f.updateTxn("over http", false, alice)
	rec := f.post(stxn)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var receipt ledger.Receipt
	require.NoError(t, protocol.DecodeJSON(rec.Body.Bytes(), &receipt))
	require.Equal(t, stxn.ID(), receipt.Txid)
	require.Len(t, receipt.Traces, 2)

	rec = f.do(http.MethodGet, "/v1/tables/testwax/testwax/messages", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var table struct {
		Rows []interface{} `codec:"rows"`
	}
	require.NoError(t, protocol.DecodeJSON(rec.Body.Bytes(), &table))
	require.Len(t, table.Rows, 1)
	require.Contains(t, rec.Body.String(), "over http")

	rec = f.post(stxn)
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	require.Equal(t, "duplicate", resp.Reason)
	require.Equal(t, stxn.ID().String(), resp.Data["txid"])
}

func TestSendTransactionJSON(t *testing.T) {
	partitiontest.PartitionTest(t)
	f := makeFixture(t)

	stxn := f.updateTxn("json body", false, alice)
	rec := f.do(http.MethodPost, "/v1/transactions", protocol.EncodeJSON(&stxn),
		map[string]string{echo.HeaderContentType: echo.MIMEApplicationJSON})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var receipt ledger.Receipt
	require.NoError(t, protocol.DecodeJSON(rec.Body.Bytes(), &receipt))
	require.Equal(t, stxn.ID(), receipt.Txid)
}

func TestSendTransactionRejected(t *testing.T) {
	partitiontest.PartitionTest(t)
	f := makeFixture(t)

	rec := f.post(f.updateTxn("nope", true, alice))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	require.Equal(t, "assertion", resp.Reason)
	require.Equal(t, "0", resp.Data["index"])
	require.Contains(t, resp.Message, testwax.UpdateFailMessage)

	rec = f.post(f.updateTxn("unsigned", false))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "authorization", decodeError(t, rec).Reason)

	rec = f.do(http.MethodPost, "/v1/transactions", []byte{0x01, 0x02},
		map[string]string{echo.HeaderContentType: ContentTypeMsgpack})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.True(t, strings.HasPrefix(decodeError(t, rec).Message, errFailedToDecodeTransaction))

	rec = f.do(http.MethodPost, "/v1/transactions", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, errRESTPayloadZeroLength, decodeError(t, rec).Message)

	close(f.shutdown)
	rec = f.post(f.updateTxn("late", false, alice))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQueries(t *testing.T) {
	partitiontest.PartitionTest(t)
	f := makeFixture(t)

	rec := f.do(http.MethodGet, "/v1/accounts/alice/ram", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ram RAMResponse
	require.NoError(t, protocol.DecodeJSON(rec.Body.Bytes(), &ram))
	require.Equal(t, alice, ram.Account)
	require.Zero(t, ram.Usage)
	require.Equal(t, config.DefaultExecParams().RAMQuota, ram.Quota)

	require.Equal(t, http.StatusOK, f.post(f.updateTxn("billed", false, alice)).Code)
	rec = f.do(http.MethodGet, "/v1/accounts/alice/ram", nil, nil)
	require.NoError(t, protocol.DecodeJSON(rec.Body.Bytes(), &ram))
	require.NotZero(t, ram.Usage)

	rec = f.do(http.MethodGet, "/v1/accounts/zed/ram", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/v1/accounts/NotAName/ram", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/v1/tables/alice/alice/messages", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/v1/tables/testwax/alice/ramblast", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"rows": []}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "testwax_ledger_transactions_total")
}

// TestClosedNode covers requests still in flight when the server stops
// and closes the node under them.
func TestClosedNode(t *testing.T) {
	partitiontest.PartitionTest(t)
	f := makeFixture(t)
	stxn := f.updateTxn("late", false, alice)
	require.NoError(t, f.n.Close())

	rec := f.post(stxn)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "interrupted", decodeError(t, rec).Reason)

	for _, path := range []string{"/v1/status", "/v1/tables/testwax/testwax/messages", "/v1/accounts/alice/ram"} {
		rec = f.do(http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		require.Equal(t, errServiceShuttingDown, decodeError(t, rec).Message, path)
	}
}
