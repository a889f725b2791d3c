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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/algorand/testwax/daemon/waxd/api"
	"github.com/algorand/testwax/daemon/waxd/api/middlewares"
	"github.com/algorand/testwax/data/basics"
	"github.com/algorand/testwax/data/transactions"
	"github.com/algorand/testwax/ledger"
	"github.com/algorand/testwax/node"
	"github.com/algorand/testwax/protocol"
)

// waxClient is what the commands need from a chain, whether opened from
// the data directory or reached through a running waxd.
type waxClient interface {
	Status() (node.StatusReport, error)
	Send(ctx context.Context, stxn transactions.SignedTxn) (ledger.Receipt, error)
	Table(code, scope, table basics.Name) (api.TableResponse, error)
	RAM(account basics.Name) (api.RAMResponse, error)
	Close() error
}

// localClient opens the data directory itself; it fails while waxd holds it.
type localClient struct {
	n *node.WaxNode
}

func (c localClient) Status() (node.StatusReport, error) {
	return c.n.Status()
}

func (c localClient) Send(ctx context.Context, stxn transactions.SignedTxn) (ledger.Receipt, error) {
	return c.n.Apply(ctx, stxn)
}

func (c localClient) Table(code, scope, table basics.Name) (api.TableResponse, error) {
	rows, err := c.n.Rows(code, scope, table)
	if rows == nil {
		rows = []interface{}{}
	}
	return api.TableResponse{Rows: rows}, err
}

func (c localClient) RAM(account basics.Name) (api.RAMResponse, error) {
	usage, quota, err := c.n.RAMUsage(account)
	return api.RAMResponse{Account: account, Usage: usage, Quota: quota}, err
}

func (c localClient) Close() error {
	return c.n.Close()
}

// remoteError is a non-2xx answer from waxd.
type remoteError struct {
	status int
	resp   api.ErrorResponse
}

func (e *remoteError) Error() string {
	if e.resp.Reason != "" {
		return fmt.Sprintf("HTTP %d (%s): %s", e.status, e.resp.Reason, e.resp.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.status, e.resp.Message)
}

// restClient talks to waxd over its REST API.
type restClient struct {
	base   string
	token  string
	client *http.Client
}

func makeRestClient(address, token string) *restClient {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	return &restClient{
		base:   strings.TrimSuffix(address, "/"),
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *restClient) do(ctx context.Context, method, path string, body []byte, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if c.token != "" {
		req.Header.Set(middlewares.TokenHeader, c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		rerr := &remoteError{status: resp.StatusCode}
		if protocol.DecodeJSON(data, &rerr.resp) != nil || rerr.resp.Message == "" {
			rerr.resp.Message = strings.TrimSpace(string(data))
		}
		return rerr
	}
	return protocol.DecodeJSON(data, out)
}

func (c *restClient) Status() (s node.StatusReport, err error) {
	err = c.do(context.Background(), http.MethodGet, "/v1/status", nil, "", &s)
	return
}

func (c *restClient) Send(ctx context.Context, stxn transactions.SignedTxn) (r ledger.Receipt, err error) {
	err = c.do(ctx, http.MethodPost, "/v1/transactions", protocol.Encode(&stxn), api.ContentTypeMsgpack, &r)
	return
}

func (c *restClient) Table(code, scope, table basics.Name) (t api.TableResponse, err error) {
	path := fmt.Sprintf("/v1/tables/%s/%s/%s", url.PathEscape(code.String()), url.PathEscape(scope.String()), url.PathEscape(table.String()))
	err = c.do(context.Background(), http.MethodGet, path, nil, "", &t)
	return
}

func (c *restClient) RAM(account basics.Name) (r api.RAMResponse, err error) {
	err = c.do(context.Background(), http.MethodGet, "/v1/accounts/"+url.PathEscape(account.String())+"/ram", nil, "", &r)
	return
}

func (c *restClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// ensureClient returns a client for --endpoint when given, and for the data
// directory otherwise.
func ensureClient() waxClient {
	if endpoint != "" {
		return makeRestClient(endpoint, apiToken)
	}
	n, err := node.Open(ensureDataDir(), log)
	if err != nil {
		reportErrorf(errorOpeningNode, err)
	}
	return localClient{n: n}
}
